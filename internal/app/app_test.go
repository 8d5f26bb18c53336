package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fsdevblog/tinylink/internal/config"
	"github.com/fsdevblog/tinylink/internal/db"
)

func TestStorageTypeFor(t *testing.T) {
	tests := []struct {
		name string
		conf config.Config
		want db.StorageType
	}{
		{name: "memory", conf: config.Config{}, want: db.StorageTypeInMemory},
		{name: "sqlite", conf: config.Config{SQLitePath: "a.db"}, want: db.StorageTypeSQLite},
		{name: "libsql wins over sqlite", conf: config.Config{SQLitePath: "a.db", LibSQLURL: "b.db"}, want: db.StorageTypeLibSQL},
		{name: "postgres wins", conf: config.Config{DatabaseDSN: "postgres://", LibSQLURL: "b.db"}, want: db.StorageTypePostgres},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StorageTypeFor(tt.conf))
		})
	}
}

func TestApp_SnapshotSurvivesRestart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	snapshot := filepath.Join(t.TempDir(), "links.json")
	conf := config.Config{
		ServerAddress:      "127.0.0.1:0",
		FileStoragePath:    snapshot,
		IdentityCookieName: "tinylink_user_id",
	}

	first, err := New(t.Context(), conf, zap.NewNop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(`{"url":"https://example.com","code":"keepme1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	first.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	runAndStop(t, first)
	require.FileExists(t, snapshot)

	second, err := New(t.Context(), conf, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, second.restoreSnapshot())

	w = httptest.NewRecorder()
	second.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/keepme1", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Location"))
}

func runAndStop(t *testing.T, a *App) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
