package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/tinylink/internal/identity"
)

// OwnerIDKey ключ контекста gin, под которым хранится идентификатор владельца.
const OwnerIDKey = "ownerID"

// IdentityMiddleware определяет личность посетителя один раз на запрос.
// Новая личность сразу отправляется посетителю в cookie, до выполнения обработчика.
func IdentityMiddleware(resolver *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := resolver.Resolve(c.Request)
		resolver.Attach(c.Writer, id)

		c.Set(OwnerIDKey, id.OwnerID)
		c.Next()
	}
}

// OwnerID возвращает идентификатор владельца, выставленный IdentityMiddleware.
func OwnerID(c *gin.Context) (string, bool) {
	ownerID := c.GetString(OwnerIDKey)
	return ownerID, ownerID != ""
}
