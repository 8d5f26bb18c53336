package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fsdevblog/tinylink/internal/config"
	"github.com/fsdevblog/tinylink/internal/controllers"
	"github.com/fsdevblog/tinylink/internal/db"
	"github.com/fsdevblog/tinylink/internal/identity"
	"github.com/fsdevblog/tinylink/internal/services"
	"github.com/fsdevblog/tinylink/internal/tlscert"
)

const (
	snapshotTimeout   = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type App struct {
	config   config.Config
	conn     any
	services *services.Services
	resolver *identity.Resolver
	Logger   *zap.Logger
}

// New открывает хранилище и собирает сервисы приложения.
//
// Параметры:
//   - ctx: контекст подключения к хранилищу
//   - conf: конфигурация приложения
//   - logger: логгер приложения
//
// Возвращает:
//   - *App: приложение, готовое к Run
//   - error: ошибка подключения к хранилищу
func New(ctx context.Context, conf config.Config, logger *zap.Logger) (*App, error) {
	storageType := StorageTypeFor(conf)
	conn, err := db.NewConnectionFactory(ctx, db.FactoryConfig{
		StorageType: storageType,
		PostgresDSN: conf.DatabaseDSN,
		SQLitePath:  conf.SQLitePath,
		LibSQLURL:   conf.LibSQLURL,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", storageType, err)
	}

	svc, err := services.Factory(conn, logger)
	if err != nil {
		_ = db.CloseConnection(conn)
		return nil, fmt.Errorf("init services: %w", err)
	}

	resolver := identity.NewResolver(identity.CodecFor(conf.VisitorJWTSecret, logger), identity.Options{
		CookieName: conf.IdentityCookieName,
		Secure:     conf.EnableHTTPS,
		Logger:     logger,
	})

	logger.Info("storage is ready", zap.String("storage", string(storageType)))
	return &App{
		config:   conf,
		conn:     conn,
		services: svc,
		resolver: resolver,
		Logger:   logger,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

// StorageTypeFor выбирает хранилище: PostgreSQL, затем libsql, затем sqlite, иначе память.
func StorageTypeFor(conf config.Config) db.StorageType {
	switch {
	case conf.DatabaseDSN != "":
		return db.StorageTypePostgres
	case conf.LibSQLURL != "":
		return db.StorageTypeLibSQL
	case conf.SQLitePath != "":
		return db.StorageTypeSQLite
	default:
		return db.StorageTypeInMemory
	}
}

// Handler http обработчик приложения.
func (a *App) Handler() http.Handler {
	return controllers.SetupRouter(controllers.RouterParams{
		Links:     a.services.Links,
		Redirects: a.services.Redirects,
		Ping:      a.services.Ping,
		Identity:  a.resolver,
		Logger:    a.Logger,
	})
}

// Run запускает web сервер и блокируется до отмены ctx или ошибки сервера.
// При остановке сохраняет снимок хранилища в памяти и закрывает подключение.
func (a *App) Run(ctx context.Context) error {
	defer a.closeStorage()

	if err := a.restoreSnapshot(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	server := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- a.serve(server)
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown command received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("graceful shutdown failed", zap.Error(err))
		}
	case serverErr = <-errChan:
		a.Logger.Error("server error", zap.Error(serverErr))
	}

	a.saveSnapshot()
	return serverErr
}

func (a *App) serve(server *http.Server) error {
	var err error
	if a.config.EnableHTTPS {
		generated, certErr := tlscert.EnsurePair(a.config.CertFilePath, a.config.KeyFilePath)
		if certErr != nil {
			return fmt.Errorf("prepare tls certificate: %w", certErr)
		}
		if generated {
			a.Logger.Info("self-signed certificate generated", zap.String("cert", a.config.CertFilePath))
		}
		a.Logger.Info("starting https server", zap.String("address", server.Addr))
		err = server.ListenAndServeTLS(a.config.CertFilePath, a.config.KeyFilePath)
	} else {
		a.Logger.Info("starting http server", zap.String("address", server.Addr))
		err = server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err //nolint:wrapcheck
}

func (a *App) restoreSnapshot() error {
	if a.services.Snapshots == nil || a.config.FileStoragePath == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if err := a.services.Snapshots.Restore(ctx, a.config.FileStoragePath); err != nil {
		return fmt.Errorf("restore snapshot from file `%s`: %w", a.config.FileStoragePath, err)
	}
	a.Logger.Info("snapshot restored", zap.String("path", a.config.FileStoragePath))
	return nil
}

func (a *App) saveSnapshot() {
	if a.services.Snapshots == nil || a.config.FileStoragePath == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if err := a.services.Snapshots.Backup(ctx, a.config.FileStoragePath); err != nil {
		a.Logger.Error("failed to save snapshot", zap.String("path", a.config.FileStoragePath), zap.Error(err))
		return
	}
	a.Logger.Info("snapshot saved", zap.String("path", a.config.FileStoragePath))
}

func (a *App) closeStorage() {
	if err := db.CloseConnection(a.conn); err != nil {
		a.Logger.Error("failed to close storage", zap.Error(err))
	}
}
