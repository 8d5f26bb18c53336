package services

import (
	"context"

	"github.com/fsdevblog/tinylink/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock.go -package=mocks

// LinkRepository описывает хранилище ссылок.
type LinkRepository interface {
	// Insert сохраняет ссылку. Занятый код возвращает repositories.ErrDuplicateKey,
	// проверка и вставка должны быть одной атомарной операцией.
	Insert(ctx context.Context, link *models.Link) error
	// GetByCode находит ссылку по коду или возвращает repositories.ErrNotFound.
	GetByCode(ctx context.Context, code string) (*models.Link, error)
	// GetByCodeAndOwner находит ссылку владельца. Чужая ссылка неотличима от отсутствующей.
	GetByCodeAndOwner(ctx context.Context, code, ownerID string) (*models.Link, error)
	// ListByOwner возвращает ссылки владельца, новые первыми.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error)
	// DeleteByCodeAndOwner удаляет ссылку владельца, true если строка была удалена.
	DeleteByCodeAndOwner(ctx context.Context, code, ownerID string) (bool, error)
	// RecordClick атомарно увеличивает click_count и выставляет last_clicked.
	RecordClick(ctx context.Context, id string) error
}
