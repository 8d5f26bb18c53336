package controllers

import (
	"context"

	"github.com/fsdevblog/tinylink/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocksctrl/store.go -package=mocksctrl

type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// LinkManager операции владельца над своими ссылками. ownerID всегда передается явно.
type LinkManager interface {
	// Create создает ссылку. code == nil означает генерацию кода.
	Create(ctx context.Context, ownerID, rawURL string, code *string) (*models.Link, error)
	List(ctx context.Context, ownerID string) ([]models.Link, error)
	Get(ctx context.Context, ownerID, code string) (*models.Link, error)
	Delete(ctx context.Context, ownerID, code string) error
}

// Redirector разрешает код в адрес перехода, учитывая клик.
type Redirector interface {
	Resolve(ctx context.Context, code string) (string, error)
}
