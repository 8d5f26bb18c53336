package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RedirectController переход по короткому коду. Личность посетителя не нужна.
type RedirectController struct {
	redirects Redirector
}

func NewRedirectController(redirects Redirector) *RedirectController {
	return &RedirectController{redirects: redirects}
}

// Redirect обрабатывает GET /:code и GET /api/:code.
// Клик учтен до отправки 302, поэтому следующий запрос статистики его уже видит.
func (c *RedirectController) Redirect(ctx *gin.Context) {
	target, err := c.redirects.Resolve(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, target)
}
