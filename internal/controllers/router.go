package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fsdevblog/tinylink/internal/controllers/middlewares"
	"github.com/fsdevblog/tinylink/internal/identity"
)

type RouterParams struct {
	Links     LinkManager
	Redirects Redirector
	Ping      ConnectionChecker
	Identity  *identity.Resolver
	Logger    *zap.Logger
}

// SetupRouter собирает gin роутер приложения.
//
// Маршруты:
//   - GET /:code, GET /api/:code: переход по ссылке
//   - POST/GET /api/links, GET/DELETE /api/links/:code: управление своими ссылками
//   - GET /ping: проверка хранилища
func SetupRouter(params RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.LoggerMiddleware(params.Logger))
	r.Use(gin.Recovery())
	r.Use(middlewares.GzipMiddleware())

	redirectController := NewRedirectController(params.Redirects)
	linksController := NewLinksController(params.Links)

	if params.Ping != nil {
		r.GET("/ping", NewPingController(params.Ping).Ping)
	}
	r.GET("/:code", redirectController.Redirect)

	api := r.Group("/api")
	api.GET("/:code", redirectController.Redirect)

	links := api.Group("/links", middlewares.IdentityMiddleware(params.Identity))
	links.POST("", linksController.Create)
	links.GET("", linksController.List)
	links.GET("/:code", linksController.Get)
	links.DELETE("/:code", linksController.Delete)

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, errorResponse{Error: msgNotFound})
	})
	return r
}
