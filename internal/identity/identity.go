// Package identity выдает и распознает анонимную личность посетителя по cookie.
package identity

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultCookieName имя cookie с токеном личности по умолчанию.
	DefaultCookieName = "tinylink_user_id"
	// TokenLifetime время жизни cookie и JWT токена.
	TokenLifetime = 365 * 24 * time.Hour
)

// Identity личность, от имени которой выполняется запрос.
type Identity struct {
	OwnerID string
	// Issued true, если личность выдана в этом запросе и cookie нужно установить.
	Issued bool
}

// Codec превращает идентификатор владельца в значение cookie и обратно.
type Codec interface {
	Encode(ownerID string) (string, error)
	// Decode возвращает false, если токен не распознан.
	Decode(token string) (string, bool)
}

// Resolver определяет личность по запросу.
type Resolver struct {
	codec      Codec
	cookieName string
	secure     bool
	newID      func() string
	logger     *zap.Logger
}

type Options struct {
	CookieName string
	// Secure выставляет флаг Secure у cookie, включается вместе с HTTPS.
	Secure bool
	Logger *zap.Logger
}

// NewResolver создает резолвер с указанным кодеком токенов.
func NewResolver(codec Codec, opts Options) *Resolver {
	name := opts.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		codec:      codec,
		cookieName: name,
		secure:     opts.Secure,
		newID:      uuid.NewString,
		logger:     logger.With(zap.String("module", "identity")),
	}
}

// CookieName имя cookie, в которой хранится токен.
func (r *Resolver) CookieName() string {
	return r.cookieName
}

// Resolve возвращает личность из cookie или выдает новую. Никогда не завершается ошибкой.
func (r *Resolver) Resolve(req *http.Request) Identity {
	if cookie, err := req.Cookie(r.cookieName); err == nil {
		if ownerID, ok := r.codec.Decode(cookie.Value); ok {
			return Identity{OwnerID: ownerID}
		}
		r.logger.Debug("identity token is not recognized, issuing a new one")
	}
	return Identity{OwnerID: r.newID(), Issued: true}
}

// Attach устанавливает cookie, если личность была выдана в этом запросе.
//
// Если токен не удалось закодировать, cookie не ставится: запрос все равно
// выполняется от имени выданной личности, а следующий запрос получит новую.
func (r *Resolver) Attach(w http.ResponseWriter, id Identity) {
	if !id.Issued {
		return
	}
	token, err := r.codec.Encode(id.OwnerID)
	if err != nil {
		r.logger.Error("failed to encode identity token", zap.Error(err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     r.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenLifetime.Seconds()),
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
