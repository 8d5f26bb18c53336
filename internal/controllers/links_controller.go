package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/tinylink/internal/controllers/middlewares"
	"github.com/fsdevblog/tinylink/internal/models"
)

var errNoOwner = errors.New("owner id is missing in request context")

// createLinkRequest тело POST /api/links.
type createLinkRequest struct {
	URL  string  `json:"url"`
	Code *string `json:"code"`
}

type deleteLinkResponse struct {
	Message string `json:"message"`
}

// LinksController обработчики /api/links. Все операции выполняются от имени
// владельца, определенного middlewares.IdentityMiddleware.
type LinksController struct {
	links LinkManager
}

func NewLinksController(links LinkManager) *LinksController {
	return &LinksController{links: links}
}

// Create обрабатывает POST /api/links.
//
// Ответы:
//   - 201 созданная ссылка
//   - 400 некорректное тело, URL или формат кода
//   - 409 код занят
//   - 500 не удалось подобрать код или ошибка хранилища
func (c *LinksController) Create(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	var req createLinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		_ = ctx.Error(fmt.Errorf("bind create link request: %w", err))
		ctx.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}
	// пустой код равнозначен его отсутствию
	if req.Code != nil && *req.Code == "" {
		req.Code = nil
	}

	link, err := c.links.Create(ctx.Request.Context(), ownerID, req.URL, req.Code)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, link)
}

// List обрабатывает GET /api/links. Пустой список отдается как [].
func (c *LinksController) List(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	links, err := c.links.List(ctx.Request.Context(), ownerID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if links == nil {
		links = make([]models.Link, 0)
	}
	ctx.JSON(http.StatusOK, links)
}

// Get обрабатывает GET /api/links/:code.
func (c *LinksController) Get(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	link, err := c.links.Get(ctx.Request.Context(), ownerID, ctx.Param("code"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, link)
}

// Delete обрабатывает DELETE /api/links/:code.
func (c *LinksController) Delete(ctx *gin.Context) {
	ownerID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	if err := c.links.Delete(ctx.Request.Context(), ownerID, ctx.Param("code")); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, deleteLinkResponse{Message: "Link deleted successfully"})
}

func (c *LinksController) ownerID(ctx *gin.Context) (string, bool) {
	ownerID, ok := middlewares.OwnerID(ctx)
	if !ok {
		abortWithError(ctx, errNoOwner)
	}
	return ownerID, ok
}
