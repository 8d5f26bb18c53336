package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// OwnerClaims данные JWT токена анонимного владельца ссылок.
type OwnerClaims struct {
	jwt.RegisteredClaims
	OwnerID string `json:"owner_id"`
}

// GenerateOwnerJWT создает подписанный HS256 токен владельца.
//
// Параметры:
//   - ownerID: идентификатор владельца
//   - expire: срок действия токена
//   - key: ключ для подписи токена
//
// Возвращает:
//   - string: сгенерированный JWT токен
//   - error: ошибка генерации токена
func GenerateOwnerJWT(ownerID string, expire time.Duration, key []byte) (string, error) {
	now := time.Now()
	claims := OwnerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
		OwnerID: ownerID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing owner jwt token: %w", err)
	}
	return signed, nil
}

// ParseOwnerJWT проверяет токен владельца и возвращает идентификатор из него.
//
// Параметры:
//   - tokenString: JWT токен в виде строки
//   - key: ключ для проверки подписи
//
// Возвращает:
//   - string: идентификатор владельца
//   - error: ErrTokenExpired если истек срок действия, ErrInvalidToken при прочих ошибках проверки
func ParseOwnerJWT(tokenString string, key []byte) (string, error) {
	claims := new(OwnerClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !token.Valid || claims.OwnerID == "" {
		return "", ErrInvalidToken
	}
	return claims.OwnerID, nil
}
