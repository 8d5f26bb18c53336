package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/tinylink/internal/services"
)

// Тексты ошибок в ответах API.
const (
	msgInvalidURL       = "Invalid URL format"
	msgInvalidFormat    = "Code must be 6-8 lowercase alphanumeric characters"
	msgCodeConflict     = "Code already exists"
	msgExhausted        = "Failed to generate unique code"
	msgNotFoundOrForbid = "Link not found or you don't have permission to access it"
	msgNotFound         = "Link not found"
	msgInternal         = "Internal server error"
	msgInvalidBody      = "Invalid request body"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errorStatus сопоставляет ошибку сервисного слоя с HTTP статусом и текстом ответа.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidURL):
		return http.StatusBadRequest, msgInvalidURL
	case errors.Is(err, services.ErrInvalidFormat):
		return http.StatusBadRequest, msgInvalidFormat
	case errors.Is(err, services.ErrCodeConflict):
		return http.StatusConflict, msgCodeConflict
	case errors.Is(err, services.ErrAllocationExhausted):
		return http.StatusInternalServerError, msgExhausted
	case errors.Is(err, services.ErrNotFoundOrForbidden):
		return http.StatusNotFound, msgNotFoundOrForbid
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// abortWithError прикрепляет причину к контексту для логгера и отвечает JSON без внутренних деталей.
func abortWithError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	status, msg := errorStatus(err)
	ctx.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
