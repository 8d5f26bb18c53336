package memstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/fsdevblog/tinylink/internal/db"
	"github.com/fsdevblog/tinylink/internal/db/memory"
	"github.com/fsdevblog/tinylink/internal/models"
	"github.com/fsdevblog/tinylink/internal/repositories"
)

// errNotOwned внутренний сигнал для отмены memory.Update.
var errNotOwned = errors.New("record id mismatch")

// LinkRepo представляет собой репозиторий для работы со ссылками в памяти.
type LinkRepo struct {
	s   *db.MemoryStorage
	now func() time.Time
}

// NewLinkRepo создает новый экземпляр репозитория ссылок.
//
// Параметры:
//   - store: экземпляр хранилища в памяти
//
// Возвращает:
//   - *LinkRepo: инициализированный репозиторий
func NewLinkRepo(store *db.MemoryStorage) *LinkRepo {
	return &LinkRepo{
		s:   store,
		now: time.Now,
	}
}

// Insert сохраняет новую ссылку. Если код занят, возвращает repositories.ErrDuplicateKey.
func (l *LinkRepo) Insert(ctx context.Context, link *models.Link) error {
	if err := memory.Set[models.Link](ctx, link.Code, link, l.s.MStorage); err != nil {
		return fmt.Errorf("failed to insert link with code %s: %w", link.Code, convertErrorType(err))
	}
	return nil
}

// GetByCode получает ссылку по коду.
func (l *LinkRepo) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	link, err := memory.Get[models.Link](ctx, code, l.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to get link by code %s: %w", code, convertErrorType(err))
	}
	return link, nil
}

// GetByCodeAndOwner получает ссылку по коду только если она принадлежит ownerID.
// Чужая ссылка неотличима от отсутствующей.
func (l *LinkRepo) GetByCodeAndOwner(ctx context.Context, code, ownerID string) (*models.Link, error) {
	link, err := l.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != ownerID {
		return nil, fmt.Errorf("failed to get link by code %s: %w", code, repositories.ErrNotFound)
	}
	return link, nil
}

// ListByOwner возвращает ссылки владельца, начиная с самых новых.
func (l *LinkRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	links, err := memory.FilterAll[models.Link](ctx, l.s.MStorage, func(val models.Link) bool {
		return val.OwnerID == ownerID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list links by owner %s: %w", ownerID, convertErrorType(err))
	}
	slices.SortFunc(links, func(a, b models.Link) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return links, nil
}

// DeleteByCodeAndOwner удаляет ссылку, если она принадлежит ownerID.
func (l *LinkRepo) DeleteByCodeAndOwner(ctx context.Context, code, ownerID string) (bool, error) {
	deleted, err := memory.DeleteFunc[models.Link](ctx, code, l.s.MStorage, func(val models.Link) bool {
		return val.OwnerID == ownerID
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete link by code %s: %w", code, convertErrorType(err))
	}
	return deleted, nil
}

// RecordClick увеличивает счетчик переходов и обновляет время последнего перехода.
// Чтение и запись выполняются под одной блокировкой хранилища.
func (l *LinkRepo) RecordClick(ctx context.Context, id string) error {
	found, err := memory.FilterAll[models.Link](ctx, l.s.MStorage, func(val models.Link) bool {
		return val.ID == id
	})
	if err != nil {
		return fmt.Errorf("failed to find link by id %s: %w", id, convertErrorType(err))
	}
	if len(found) == 0 {
		return fmt.Errorf("failed to record click for id %s: %w", id, repositories.ErrNotFound)
	}

	err = memory.Update[models.Link](ctx, found[0].Code, l.s.MStorage, func(val *models.Link) error {
		// Между поиском и обновлением код мог быть удален и занят другой ссылкой.
		if val.ID != id {
			return errNotOwned
		}
		now := l.now().UTC()
		val.ClickCount++
		val.LastClicked = &now
		return nil
	})
	if errors.Is(err, errNotOwned) {
		return fmt.Errorf("failed to record click for id %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to record click for id %s: %w", id, convertErrorType(err))
	}
	return nil
}
