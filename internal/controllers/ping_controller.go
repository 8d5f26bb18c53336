package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingController проверяет доступность хранилища.
type PingController struct {
	conn ConnectionChecker
}

func NewPingController(conn ConnectionChecker) *PingController {
	return &PingController{conn: conn}
}

// Ping обрабатывает GET /ping: 200 "pong" или 500, если хранилище недоступно.
func (c *PingController) Ping(ctx *gin.Context) {
	if err := c.conn.CheckConnection(ctx.Request.Context()); err != nil {
		_ = ctx.Error(fmt.Errorf("ping: %w", err))
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: msgInternal})
		return
	}
	ctx.String(http.StatusOK, "pong")
}
