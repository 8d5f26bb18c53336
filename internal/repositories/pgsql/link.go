package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fsdevblog/tinylink/internal/models"
	"github.com/fsdevblog/tinylink/internal/repositories"
)

// Строки, созданные до появления owner_id, имеют NULL владельца и не принадлежат никому.
const selectColumns = `id, code, original_url, click_count, created_at, last_clicked, COALESCE(owner_id, '')`

// LinkRepo репозиторий ссылок поверх пула pgx.
type LinkRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewLinkRepo создает новый экземпляр репозитория.
//
// Параметры:
//   - pool: пул подключений к PostgreSQL
//   - logger: логгер
//
// Возвращает:
//   - *LinkRepo: инициализированный репозиторий
func NewLinkRepo(pool *pgxpool.Pool, logger *zap.Logger) *LinkRepo {
	return &LinkRepo{
		pool:   pool,
		logger: logger.With(zap.String("module", "repository/pgsql/link")),
	}
}

// Insert вставляет ссылку. Конкурентные вставки одного кода разрешает уникальный индекс idx_links_code.
func (l *LinkRepo) Insert(ctx context.Context, link *models.Link) error {
	const query = `
		INSERT INTO links (id, code, original_url, click_count, created_at, last_clicked, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := l.pool.Exec(ctx, query,
		link.ID,
		link.Code,
		link.OriginalURL,
		link.ClickCount,
		link.CreatedAt,
		link.LastClicked,
		link.OwnerID,
	)
	if err != nil {
		converted := convertErrType(err)
		if !errors.Is(converted, repositories.ErrDuplicateKey) {
			l.logger.Error("error while inserting link", zap.String("code", link.Code), zap.Error(err))
		}
		return fmt.Errorf("insert link with code %s: %w", link.Code, converted)
	}
	return nil
}

// GetByCode ищет ссылку по коду.
func (l *LinkRepo) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	query := `SELECT ` + selectColumns + ` FROM links WHERE code = $1`

	link, err := scanLink(l.pool.QueryRow(ctx, query, code))
	if err != nil {
		return nil, l.lookupErr(err, fmt.Sprintf("get link by code %s", code))
	}
	return link, nil
}

// GetByCodeAndOwner ищет ссылку по коду среди ссылок владельца.
func (l *LinkRepo) GetByCodeAndOwner(ctx context.Context, code, ownerID string) (*models.Link, error) {
	query := `SELECT ` + selectColumns + ` FROM links WHERE code = $1 AND owner_id = $2`

	link, err := scanLink(l.pool.QueryRow(ctx, query, code, ownerID))
	if err != nil {
		return nil, l.lookupErr(err, fmt.Sprintf("get link by code %s and owner", code))
	}
	return link, nil
}

// ListByOwner возвращает ссылки владельца от новых к старым.
func (l *LinkRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	query := `SELECT ` + selectColumns + ` FROM links WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := l.pool.Query(ctx, query, ownerID)
	if err != nil {
		l.logger.Error("error while listing links", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("list links by owner %s: %w", ownerID, convertErrType(err))
	}
	defer rows.Close()

	links := make([]models.Link, 0)
	for rows.Next() {
		link, scanErr := scanLink(rows)
		if scanErr != nil {
			l.logger.Error("error while scanning link row", zap.Error(scanErr))
			return nil, fmt.Errorf("scan link: %w", convertErrType(scanErr))
		}
		links = append(links, *link)
	}
	if err = rows.Err(); err != nil {
		l.logger.Error("error iterating link rows", zap.Error(err))
		return nil, fmt.Errorf("iterate links: %w", convertErrType(err))
	}
	return links, nil
}

// DeleteByCodeAndOwner удаляет ссылку владельца. Возвращает true, если строка была удалена.
func (l *LinkRepo) DeleteByCodeAndOwner(ctx context.Context, code, ownerID string) (bool, error) {
	const query = `DELETE FROM links WHERE code = $1 AND owner_id = $2`

	tag, err := l.pool.Exec(ctx, query, code, ownerID)
	if err != nil {
		l.logger.Error("error while deleting link", zap.String("code", code), zap.Error(err))
		return false, fmt.Errorf("delete link by code %s: %w", code, convertErrType(err))
	}
	return tag.RowsAffected() > 0, nil
}

// RecordClick атомарно увеличивает счетчик и выставляет время последнего перехода.
func (l *LinkRepo) RecordClick(ctx context.Context, id string) error {
	const query = `
		UPDATE links
		SET click_count = click_count + 1,
		    last_clicked = NOW()
		WHERE id = $1`

	tag, err := l.pool.Exec(ctx, query, id)
	if err != nil {
		l.logger.Error("error while updating click count", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("record click for id %s: %w", id, convertErrType(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record click for id %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

// Ping проверяет соединение с базой.
func (l *LinkRepo) Ping(ctx context.Context) error {
	return l.pool.Ping(ctx) //nolint:wrapcheck
}

func (l *LinkRepo) lookupErr(err error, msg string) error {
	converted := convertErrType(err)
	if !errors.Is(converted, repositories.ErrNotFound) {
		l.logger.Error("error while finding link", zap.Error(err))
	}
	return fmt.Errorf("%s: %w", msg, converted)
}

func scanLink(row pgx.Row) (*models.Link, error) {
	var link models.Link
	err := row.Scan(
		&link.ID,
		&link.Code,
		&link.OriginalURL,
		&link.ClickCount,
		&link.CreatedAt,
		&link.LastClicked,
		&link.OwnerID,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	link.CreatedAt = link.CreatedAt.UTC()
	if link.LastClicked != nil {
		t := link.LastClicked.UTC()
		link.LastClicked = &t
	}
	return &link, nil
}
