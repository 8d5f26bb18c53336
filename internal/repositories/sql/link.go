package sql

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fsdevblog/tinylink/internal/models"
	"github.com/fsdevblog/tinylink/internal/repositories"
)

type LinkRepo struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewLinkRepo(db *gorm.DB, logger *zap.Logger) *LinkRepo {
	return &LinkRepo{
		db:     db,
		logger: logger.With(zap.String("module", "repository/sql/link")),
		now:    time.Now,
	}
}

func (l *LinkRepo) Insert(ctx context.Context, link *models.Link) error {
	if err := l.db.WithContext(ctx).Create(link).Error; err != nil {
		converted := convertErrorType(err)
		if !errors.Is(converted, repositories.ErrDuplicateKey) {
			l.logger.Error("failed to insert link", zap.String("code", link.Code), zap.Error(err))
		}
		return errors.Wrapf(converted, "insert link with code %s", link.Code)
	}
	return nil
}

func (l *LinkRepo) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	var link models.Link
	if err := l.db.WithContext(ctx).Where("code = ?", code).Take(&link).Error; err != nil {
		return nil, l.lookupErr(err, "get link by code %s", code)
	}
	return &link, nil
}

func (l *LinkRepo) GetByCodeAndOwner(ctx context.Context, code, ownerID string) (*models.Link, error) {
	var link models.Link
	err := l.db.WithContext(ctx).
		Where("code = ? AND owner_id = ?", code, ownerID).
		Take(&link).Error
	if err != nil {
		return nil, l.lookupErr(err, "get link by code %s and owner", code)
	}
	return &link, nil
}

func (l *LinkRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	links := make([]models.Link, 0)
	err := l.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&links).Error
	if err != nil {
		l.logger.Error("failed to list links", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, errors.Wrapf(convertErrorType(err), "list links by owner %s", ownerID)
	}
	return links, nil
}

func (l *LinkRepo) DeleteByCodeAndOwner(ctx context.Context, code, ownerID string) (bool, error) {
	res := l.db.WithContext(ctx).
		Where("code = ? AND owner_id = ?", code, ownerID).
		Delete(&models.Link{})
	if res.Error != nil {
		l.logger.Error("failed to delete link", zap.String("code", code), zap.Error(res.Error))
		return false, errors.Wrapf(convertErrorType(res.Error), "delete link by code %s", code)
	}
	return res.RowsAffected > 0, nil
}

// RecordClick выполняет инкремент одним UPDATE, без чтения строки в приложение.
func (l *LinkRepo) RecordClick(ctx context.Context, id string) error {
	res := l.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"click_count":  gorm.Expr("click_count + ?", 1),
			"last_clicked": l.now().UTC(),
		})
	if res.Error != nil {
		l.logger.Error("failed to record click", zap.String("id", id), zap.Error(res.Error))
		return errors.Wrapf(convertErrorType(res.Error), "record click for id %s", id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(repositories.ErrNotFound, "record click for id %s", id)
	}
	return nil
}

// Ping проверяет соединение с базой.
func (l *LinkRepo) Ping(ctx context.Context) error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	return sqlDB.PingContext(ctx) //nolint:wrapcheck
}

func (l *LinkRepo) lookupErr(err error, format string, args ...any) error {
	converted := convertErrorType(err)
	if !errors.Is(converted, repositories.ErrNotFound) {
		l.logger.Error("failed to get link", zap.Error(err))
	}
	return errors.Wrapf(converted, format, args...)
}
