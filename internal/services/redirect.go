package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsdevblog/tinylink/internal/repositories"
	"github.com/fsdevblog/tinylink/internal/shortcode"
)

// RedirectService разрешает код в адрес перехода и учитывает клик.
type RedirectService struct {
	repo LinkRepository
}

func NewRedirectService(repo LinkRepository) *RedirectService {
	return &RedirectService{repo: repo}
}

// Resolve находит ссылку по коду, фиксирует переход и возвращает нормализованный адрес.
// Клик записан к моменту возврата. Владелец не проверяется.
func (s *RedirectService) Resolve(ctx context.Context, code string) (string, error) {
	if !shortcode.IsValid(code) {
		return "", fmt.Errorf("%w: `%s`", ErrNotFound, code)
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return "", s.convertErr(err, code)
	}

	if clickErr := s.repo.RecordClick(ctx, link.ID); clickErr != nil {
		// ссылку могли удалить между поиском и кликом
		return "", s.convertErr(clickErr, code)
	}
	return NormalizeURL(link.OriginalURL), nil
}

func (s *RedirectService) convertErr(err error, code string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: `%s`", ErrNotFound, code)
	}
	return fmt.Errorf("%w: %s", ErrUnknown, err.Error())
}

// NormalizeURL добавляет https:// к адресу без схемы http(s). Повторное применение ничего не меняет.
func NormalizeURL(raw string) string {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}
