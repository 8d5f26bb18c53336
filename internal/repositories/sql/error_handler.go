package sql

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/fsdevblog/tinylink/internal/repositories"
)

// convertErrorType преобразует ошибку gorm в ошибку уровня репозитория, сохраняя исходный текст.
// Не все sqlite драйверы переводятся gorm в ErrDuplicatedKey, поэтому нарушение уникальности
// дополнительно распознается по тексту ошибки.
func convertErrorType(err error) error {
	if err == nil {
		return nil
	}

	var nativeErr error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		nativeErr = repositories.ErrDuplicateKey
	case errors.Is(err, gorm.ErrRecordNotFound):
		nativeErr = repositories.ErrNotFound
	default:
		nativeErr = repositories.ErrUnknown
	}
	return fmt.Errorf("%w: %s", nativeErr, err.Error())
}
