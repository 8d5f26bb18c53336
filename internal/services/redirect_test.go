package services

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/tinylink/internal/models"
	"github.com/fsdevblog/tinylink/internal/repositories"
	"github.com/fsdevblog/tinylink/internal/services/mocks"
)

func TestRedirectService_Resolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockLinkRepository(ctrl)
	service := NewRedirectService(repo)

	link := &models.Link{ID: "id-1", Code: "abc1234", OriginalURL: "example.com/page"}
	gomock.InOrder(
		repo.EXPECT().GetByCode(gomock.Any(), "abc1234").Return(link, nil),
		repo.EXPECT().RecordClick(gomock.Any(), "id-1").Return(nil),
	)

	target, err := service.Resolve(t.Context(), "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", target)
	assert.Equal(t, "example.com/page", link.OriginalURL)
}

func TestRedirectService_ResolveNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockLinkRepository(ctrl)
	service := NewRedirectService(repo)

	t.Run("malformed code skips store", func(t *testing.T) {
		_, err := service.Resolve(t.Context(), "favicon.ico")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown code", func(t *testing.T) {
		repo.EXPECT().GetByCode(gomock.Any(), "zzz9999").Return(nil, repositories.ErrNotFound)
		_, err := service.Resolve(t.Context(), "zzz9999")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleted before click", func(t *testing.T) {
		repo.EXPECT().GetByCode(gomock.Any(), "gone123").Return(&models.Link{ID: "id-2"}, nil)
		repo.EXPECT().RecordClick(gomock.Any(), "id-2").Return(repositories.ErrNotFound)
		_, err := service.Resolve(t.Context(), "gone123")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		repo.EXPECT().GetByCode(gomock.Any(), "err1234").Return(nil, repositories.ErrUnknown)
		_, err := service.Resolve(t.Context(), "err1234")
		require.ErrorIs(t, err, ErrUnknown)
	})
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "example.com", want: "https://example.com"},
		{in: "http://example.com", want: "http://example.com"},
		{in: "https://example.com/a?b=c", want: "https://example.com/a?b=c"},
		{in: "HTTP://EXAMPLE.COM", want: "HTTP://EXAMPLE.COM"},
		{in: "HtTpS://example.com", want: "HtTpS://example.com"},
		{in: "ftp://files.example.com", want: "https://ftp://files.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeURL(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeURL(got))
		})
	}
}
