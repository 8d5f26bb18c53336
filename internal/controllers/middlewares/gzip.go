package middlewares

import (
	"compress/gzip"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// gzipWriter сжимает тело ответа, не трогая заголовки и статус.
type gzipWriter struct {
	gin.ResponseWriter
	writer *gzip.Writer
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	return g.writer.Write(data) //nolint:wrapcheck
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.writer.Write([]byte(s)) //nolint:wrapcheck
}

// GzipMiddleware распаковывает gzip тела POST/PUT/PATCH запросов и сжимает ответы
// клиентам, приславшим Accept-Encoding: gzip.
func GzipMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !readGzip(ctx) {
			return
		}
		if !strings.Contains(ctx.GetHeader("Accept-Encoding"), "gzip") {
			ctx.Next()
			return
		}

		ctx.Header("Content-Encoding", "gzip")
		ctx.Header("Vary", "Accept-Encoding")

		gzw := gzip.NewWriter(ctx.Writer)
		ctx.Writer = &gzipWriter{ResponseWriter: ctx.Writer, writer: gzw}
		defer func() {
			ctx.Writer.Header().Del("Content-Length")
			if closeErr := gzw.Close(); closeErr != nil {
				_ = ctx.Error(fmt.Errorf("close gzip writer: %w", closeErr))
			}
		}()
		ctx.Next()
	}
}

// readGzip подменяет сжатое тело запроса на распаковывающий reader.
// Возвращает false, если запрос прерван из-за некорректного gzip.
func readGzip(ctx *gin.Context) bool {
	if !slices.Contains([]string{http.MethodPost, http.MethodPut, http.MethodPatch}, ctx.Request.Method) {
		return true
	}
	if !strings.Contains(ctx.GetHeader("Content-Encoding"), "gzip") {
		return true
	}

	gzReader, err := gzip.NewReader(ctx.Request.Body)
	if err != nil {
		_ = ctx.Error(fmt.Errorf("read gzip: %w", err))
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid gzip body"})
		return false
	}
	ctx.Request.Body = gzReader
	ctx.Request.Header.Del("Content-Encoding")
	ctx.Request.ContentLength = -1
	return true
}
