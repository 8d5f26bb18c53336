package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/tinylink/internal/models"
	"github.com/fsdevblog/tinylink/internal/repositories"
	"github.com/fsdevblog/tinylink/internal/shortcode"
)

// MaxGenerateAttempts количество попыток подобрать свободный случайный код.
const MaxGenerateAttempts = 10

// CodeLookup часть хранилища, нужная аллокатору для проверки занятости кода.
type CodeLookup interface {
	GetByCode(ctx context.Context, code string) (*models.Link, error)
}

// CodeAllocator выдает код для новой ссылки.
//
// Проверка занятости здесь лишь быстрый путь к понятной ошибке: между проверкой и вставкой код
// может занять конкурентный запрос, поэтому окончательно уникальность гарантирует Insert хранилища.
type CodeAllocator struct {
	repo     CodeLookup
	generate func() (string, error)
}

func NewCodeAllocator(repo CodeLookup) *CodeAllocator {
	return &CodeAllocator{
		repo:     repo,
		generate: shortcode.Generate,
	}
}

// Allocate возвращает код для новой ссылки.
//
// Если candidate задан, он проверяется на соответствие грамматике (ErrInvalidFormat)
// и на занятость (ErrCodeConflict). Иначе генерируется случайный код: не более
// MaxGenerateAttempts попыток, после чего возвращается ErrAllocationExhausted.
func (a *CodeAllocator) Allocate(ctx context.Context, candidate *string) (string, error) {
	if candidate != nil {
		return a.validateCandidate(ctx, *candidate)
	}

	for range MaxGenerateAttempts {
		code, err := a.generate()
		if err != nil {
			return "", fmt.Errorf("%w: generate code: %s", ErrUnknown, err.Error())
		}
		taken, err := a.isTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrAllocationExhausted
}

func (a *CodeAllocator) validateCandidate(ctx context.Context, code string) (string, error) {
	if !shortcode.IsValid(code) {
		return "", fmt.Errorf("%w: `%s`", ErrInvalidFormat, code)
	}
	taken, err := a.isTaken(ctx, code)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("%w: `%s`", ErrCodeConflict, code)
	}
	return code, nil
}

func (a *CodeAllocator) isTaken(ctx context.Context, code string) (bool, error) {
	_, err := a.repo.GetByCode(ctx, code)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%w: check code `%s`: %s", ErrUnknown, code, err.Error())
	}
}
