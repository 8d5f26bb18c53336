package db

import (
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // драйвер libsql (Turso)
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // pure Go драйвер sqlite

	"github.com/fsdevblog/tinylink/internal/models"
)

const (
	driverLibSQL  = "libsql"
	driverModernc = "sqlite"
)

// localPragmas общие настройки для локального файла sqlite: ожидание блокировки вместо
// мгновенной ошибки SQLITE_BUSY и WAL журнал.
const localPragmas = "_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"

// NewSQLite открывает файл sqlite через cgo драйвер gorm.
func NewSQLite(dbPath string) (*gorm.DB, error) {
	conn, connErr := openGorm(sqlite.Open(dbPath))
	if connErr != nil {
		return nil, fmt.Errorf("connect database with path %s error: %w", dbPath, connErr)
	}
	if migrateErr := migrateGorm(conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}

// NewLibSQL открывает базу через database/sql драйвер, выбранный по схеме адреса:
// libsql:// и wss:// уходят в удаленный libsql, остальное (file:...) в modernc sqlite.
func NewLibSQL(dbURL string) (*gorm.DB, error) {
	driverName := driverModernc
	dsn := dbURL
	if strings.HasPrefix(dbURL, "libsql://") || strings.HasPrefix(dbURL, "wss://") {
		driverName = driverLibSQL
	} else {
		dsn = withLocalPragmas(dbURL)
	}

	conn, connErr := openGorm(sqlite.New(sqlite.Config{DriverName: driverName, DSN: dsn}))
	if connErr != nil {
		return nil, fmt.Errorf("connect %s database error: %w", driverName, connErr)
	}

	if driverName == driverModernc {
		// Запись в локальный файл все равно сериализуется sqlite, одно соединение убирает SQLITE_BUSY.
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if migrateErr := migrateGorm(conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}

func withLocalPragmas(dsn string) string {
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + localPragmas
	}
	return dsn + "?" + localPragmas
}

func openGorm(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return db, nil
}

func migrateGorm(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Link{}); err != nil {
		return fmt.Errorf("migrating sql: %w", err)
	}
	return nil
}
