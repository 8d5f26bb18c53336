package identity

import (
	"go.uber.org/zap"

	"github.com/fsdevblog/tinylink/internal/tokens"
)

// PlainCodec хранит идентификатор владельца в cookie как есть.
// Любое непустое значение распознается.
type PlainCodec struct{}

func (PlainCodec) Encode(ownerID string) (string, error) {
	return ownerID, nil
}

func (PlainCodec) Decode(token string) (string, bool) {
	return token, token != ""
}

// JWTCodec подписывает идентификатор владельца HS256 токеном.
// Просроченный или поддельный токен не распознается.
type JWTCodec struct {
	secret []byte
	logger *zap.Logger
}

func NewJWTCodec(secret []byte, logger *zap.Logger) *JWTCodec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTCodec{secret: secret, logger: logger}
}

func (c *JWTCodec) Encode(ownerID string) (string, error) {
	return tokens.GenerateOwnerJWT(ownerID, TokenLifetime, c.secret) //nolint:wrapcheck
}

func (c *JWTCodec) Decode(token string) (string, bool) {
	ownerID, err := tokens.ParseOwnerJWT(token, c.secret)
	if err != nil {
		c.logger.Debug("rejecting identity jwt", zap.Error(err))
		return "", false
	}
	return ownerID, true
}

// CodecFor выбирает кодек: JWT при заданном секрете, иначе PlainCodec.
func CodecFor(secret string, logger *zap.Logger) Codec {
	if secret == "" {
		return PlainCodec{}
	}
	return NewJWTCodec([]byte(secret), logger)
}
