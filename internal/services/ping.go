package services

import (
	"context"
	"fmt"
	"time"
)

const defaultPingTimeout = 3 * time.Second

// Pinger хранилище, умеющее проверить свое соединение.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingService проверяет доступность хранилища ссылок.
type PingService struct {
	storage Pinger
	timeout time.Duration
}

func NewPingService(storage Pinger) *PingService {
	return &PingService{storage: storage, timeout: defaultPingTimeout}
}

// CheckConnection пингует хранилище, ограничивая ожидание таймаутом сервиса.
func (s *PingService) CheckConnection(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.storage.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping storage: %w", err)
	}
	return nil
}
