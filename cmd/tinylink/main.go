package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fsdevblog/tinylink/internal/app"
	"github.com/fsdevblog/tinylink/internal/bmeta"
	"github.com/fsdevblog/tinylink/internal/config"
	"github.com/fsdevblog/tinylink/internal/logs"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	appConf := config.MustLoadConfig()
	logger := logs.MustNew(logs.WithLevel(appConf.LogLevel))
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting tinylink", bmeta.New(buildVersion, buildDate, buildCommit).Fields()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := app.Must(app.New(ctx, *appConf, logger))
	a.Logger.Info("config loaded",
		zap.String("address", appConf.ServerAddress),
		zap.Bool("https", appConf.EnableHTTPS),
		zap.Bool("signed_identity", appConf.VisitorJWTSecret != ""),
		zap.String("snapshot", appConf.FileStoragePath),
	)
	if err := a.Run(ctx); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}
