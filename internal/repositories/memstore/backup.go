package memstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Backup сохраняет снапшот хранилища в файл path. Запись идет во временный файл
// рядом с path, который затем переименовывается, так что файл не бывает записан наполовину.
func (l *LinkRepo) Backup(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil { //nolint:mnd
		return fmt.Errorf("create backup directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp backup file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if snapErr := l.s.Snapshot(tmp); snapErr != nil {
		tmp.Close()
		return fmt.Errorf("write backup: %w", snapErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		return fmt.Errorf("close temp backup file: %w", closeErr)
	}
	if renameErr := os.Rename(tmp.Name(), path); renameErr != nil {
		return fmt.Errorf("replace backup file: %w", renameErr)
	}
	return nil
}

// Restore загружает снапшот из файла path. Отсутствующий или пустой файл не считается ошибкой.
func (l *LinkRepo) Restore(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	if restoreErr := l.s.Restore(f); restoreErr != nil {
		if errors.Is(restoreErr, io.EOF) {
			return nil
		}
		return fmt.Errorf("restore backup from `%s`: %w", path, restoreErr)
	}
	return nil
}
