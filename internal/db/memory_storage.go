package db

import (
	"context"

	"github.com/fsdevblog/tinylink/internal/db/memory"
)

type MemoryStorage struct {
	*memory.MStorage
}

func NewMemStorage() *MemoryStorage {
	return &MemoryStorage{
		MStorage: memory.NewMemStorage(),
	}
}

// Ping всегда успешен: хранилище живет в памяти процесса.
func (m *MemoryStorage) Ping(_ context.Context) error {
	return nil
}
