package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

type StorageType string

const (
	StorageTypePostgres StorageType = "postgres"
	StorageTypeSQLite   StorageType = "sqlite"
	StorageTypeLibSQL   StorageType = "libsql"
	StorageTypeInMemory StorageType = "inMemory"
)

type FactoryConfig struct {
	StorageType StorageType
	PostgresDSN string
	SQLitePath  string
	LibSQLURL   string
}

// NewConnectionFactory создает подключение к хранилищу нужного типа и накатывает схему.
//
// Возвращает:
//   - *pgxpool.Pool для StorageTypePostgres
//   - *gorm.DB для StorageTypeSQLite и StorageTypeLibSQL
//   - *MemoryStorage для StorageTypeInMemory
func NewConnectionFactory(ctx context.Context, config FactoryConfig) (any, error) {
	switch config.StorageType {
	case StorageTypePostgres:
		if config.PostgresDSN == "" {
			return nil, errors.New("postgres dsn is empty")
		}
		pool, err := NewPostgresConnection(ctx, config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres connection: %w", err)
		}
		if migrateErr := migratePostgres(ctx, pool); migrateErr != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate schema: %w", migrateErr)
		}
		return pool, nil
	case StorageTypeSQLite:
		if config.SQLitePath == "" {
			return nil, errors.New("sqlite path is empty")
		}
		return NewSQLite(config.SQLitePath)
	case StorageTypeLibSQL:
		if config.LibSQLURL == "" {
			return nil, errors.New("libsql url is empty")
		}
		return NewLibSQL(config.LibSQLURL)
	case StorageTypeInMemory:
		return NewMemStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.StorageType)
	}
}

// CloseConnection закрывает подключение, созданное NewConnectionFactory.
func CloseConnection(conn any) error {
	switch c := conn.(type) {
	case *pgxpool.Pool:
		c.Close()
		return nil
	case *gorm.DB:
		sqlDB, err := c.DB()
		if err != nil {
			return fmt.Errorf("get sql.DB: %w", err)
		}
		return sqlDB.Close() //nolint:wrapcheck
	default:
		return nil
	}
}
