package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fsdevblog/tinylink/internal/db"
	"github.com/fsdevblog/tinylink/internal/repositories/memstore"
	"github.com/fsdevblog/tinylink/internal/repositories/pgsql"
	"github.com/fsdevblog/tinylink/internal/repositories/sql"
)

// Snapshotter хранилище, которое умеет сохранять свое состояние в файл и восстанавливать его.
type Snapshotter interface {
	Backup(ctx context.Context, path string) error
	Restore(ctx context.Context, path string) error
}

type Services struct {
	Links     *LinkService
	Redirects *RedirectService
	Ping      *PingService
	// Snapshots задан только для хранилища в памяти.
	Snapshots Snapshotter
}

// Factory собирает сервисы поверх подключения, созданного db.NewConnectionFactory.
//
// Параметры:
//   - conn: *pgxpool.Pool, *gorm.DB или *db.MemoryStorage
//   - logger: логгер для репозиториев
//
// Возвращает:
//   - *Services: набор сервисов
//   - error: ошибка, если тип подключения не поддерживается
func Factory(conn any, logger *zap.Logger) (*Services, error) {
	switch c := conn.(type) {
	case *pgxpool.Pool:
		repo := pgsql.NewLinkRepo(c, logger)
		return newServices(repo, repo, nil), nil
	case *gorm.DB:
		repo := sql.NewLinkRepo(c, logger)
		return newServices(repo, repo, nil), nil
	case *db.MemoryStorage:
		repo := memstore.NewLinkRepo(c)
		return newServices(repo, c, repo), nil
	case nil:
		return nil, errors.New("connection is nil")
	default:
		return nil, fmt.Errorf("unsupported connection type %T", conn)
	}
}

func newServices(repo LinkRepository, pinger Pinger, snapshots Snapshotter) *Services {
	return &Services{
		Links:     NewLinkService(repo),
		Redirects: NewRedirectService(repo),
		Ping:      NewPingService(pinger),
		Snapshots: snapshots,
	}
}
