package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/fsdevblog/tinylink/internal/models"
	"github.com/fsdevblog/tinylink/internal/repositories"
)

// LinkService управляет ссылками от имени их владельца.
type LinkService struct {
	repo      LinkRepository
	allocator *CodeAllocator
	now       func() time.Time
}

// NewLinkService создает сервис ссылок.
//
// Параметры:
//   - repo: хранилище ссылок
//
// Возвращает:
//   - *LinkService: сервис с аллокатором кодов поверх того же хранилища
func NewLinkService(repo LinkRepository) *LinkService {
	return &LinkService{
		repo:      repo,
		allocator: NewCodeAllocator(repo),
		now:       time.Now,
	}
}

// Create создает ссылку владельца ownerID.
//
// Параметры:
//   - ownerID: идентификатор владельца
//   - rawURL: адрес назначения, должен быть абсолютным URL со схемой и хостом
//   - code: желаемый код или nil для генерации
//
// Возвращает:
//   - *models.Link: сохраненная ссылка
//   - error: ErrInvalidURL, ErrInvalidFormat, ErrCodeConflict, ErrAllocationExhausted или ErrUnknown
func (s *LinkService) Create(ctx context.Context, ownerID, rawURL string, code *string) (*models.Link, error) {
	if !isValidURL(rawURL) {
		return nil, fmt.Errorf("%w: `%s`", ErrInvalidURL, rawURL)
	}

	allocated, err := s.allocator.Allocate(ctx, code)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("%w: generate id: %s", ErrUnknown, err.Error())
	}

	link := &models.Link{
		ID:          id.String(),
		Code:        allocated,
		OriginalURL: rawURL,
		ClickCount:  0,
		CreatedAt:   s.now().UTC(),
		LastClicked: nil,
		OwnerID:     ownerID,
	}
	if insertErr := s.repo.Insert(ctx, link); insertErr != nil {
		if errors.Is(insertErr, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: `%s`", ErrCodeConflict, allocated)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknown, insertErr.Error())
	}
	return link, nil
}

// List возвращает ссылки владельца, новые первыми.
func (s *LinkService) List(ctx context.Context, ownerID string) ([]models.Link, error) {
	links, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknown, err.Error())
	}
	return links, nil
}

// Get возвращает ссылку владельца. Отсутствующая и чужая ссылки дают ErrNotFoundOrForbidden.
func (s *LinkService) Get(ctx context.Context, ownerID, code string) (*models.Link, error) {
	link, err := s.repo.GetByCodeAndOwner(ctx, code, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: `%s`", ErrNotFoundOrForbidden, code)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknown, err.Error())
	}
	return link, nil
}

// Delete удаляет ссылку владельца.
func (s *LinkService) Delete(ctx context.Context, ownerID, code string) error {
	deleted, err := s.repo.DeleteByCodeAndOwner(ctx, code, ownerID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknown, err.Error())
	}
	if !deleted {
		return fmt.Errorf("%w: `%s`", ErrNotFoundOrForbidden, code)
	}
	return nil
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Scheme != "" && u.Host != ""
}
