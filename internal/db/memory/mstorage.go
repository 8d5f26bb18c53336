package memory

import (
	"context"
	"io"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// MStorage потокобезопасное key/value хранилище. Значения хранятся в виде json.
// Все операции чтение-изменение-запись выполняются под одной блокировкой на запись.
type MStorage struct {
	data map[string][]byte
	m    sync.RWMutex
}

func NewMemStorage() *MStorage {
	return &MStorage{
		data: make(map[string][]byte),
	}
}

func (m *MStorage) Len() int {
	m.m.RLock()
	defer m.m.RUnlock()

	return len(m.data)
}

// SetOptions настройки операции Set.
type SetOptions struct {
	Overwrite bool // Разрешает перезапись существующего ключа
}

// WithOverwrite разрешает перезапись существующего ключа.
func WithOverwrite() func(*SetOptions) {
	return func(o *SetOptions) {
		o.Overwrite = true
	}
}

func Get[T any](ctx context.Context, key string, m *MStorage) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	m.m.RLock()
	defer m.m.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	var result T
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
	}
	return &result, nil
}

// Set Сохраняет новую пару ключ/значение. Проверка уникальности и запись происходят атомарно,
// без опции WithOverwrite на существующий ключ вернется ошибка ErrDuplicateKey.
func Set[T any](ctx context.Context, key string, val *T, m *MStorage, opts ...func(*SetOptions)) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}
	var options SetOptions
	for _, opt := range opts {
		opt(&options)
	}

	bytes, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal json for object `%+v`", val)
	}

	m.m.Lock()
	defer m.m.Unlock()

	if _, exist := m.data[key]; exist && !options.Overwrite {
		return ErrDuplicateKey
	}
	m.data[key] = bytes
	return nil
}

// Update атомарно изменяет значение по ключу функцией fn.
// Если fn возвращает ошибку, значение остается прежним.
func Update[T any](ctx context.Context, key string, m *MStorage, fn func(*T) error) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	m.m.Lock()
	defer m.m.Unlock()

	raw, ok := m.data[key]
	if !ok {
		return ErrNotFound
	}
	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		return errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
	}
	if err := fn(&val); err != nil {
		return err
	}
	bytes, err := json.Marshal(&val)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal json for object `%+v`", val)
	}
	m.data[key] = bytes
	return nil
}

// DeleteFunc удаляет запись по ключу, если она удовлетворяет условию fn.
// Возвращает true, если запись была удалена.
func DeleteFunc[T any](ctx context.Context, key string, m *MStorage, fn func(T) bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err //nolint:wrapcheck
	}

	m.m.Lock()
	defer m.m.Unlock()

	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		return false, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
	}
	if !fn(val) {
		return false, nil
	}
	delete(m.data, key)
	return true, nil
}

// FilterAll возвращает все значения, удовлетворяющие условию fn.
func FilterAll[T any](ctx context.Context, m *MStorage, fn func(T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	m.m.RLock()
	defer m.m.RUnlock()

	var result = make([]T, 0)
	for key, raw := range m.data {
		var val T
		if err := json.Unmarshal(raw, &val); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
		}
		if fn(val) {
			result = append(result, val)
		}
	}
	return result, nil
}

// Snapshot записывает содержимое хранилища в w одним json объектом.
func (m *MStorage) Snapshot(w io.Writer) error {
	m.m.RLock()
	defer m.m.RUnlock()

	raw := make(map[string]json.RawMessage, len(m.data))
	for k, v := range m.data {
		raw[k] = v
	}
	if err := json.NewEncoder(w).Encode(raw); err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}
	return nil
}

// Restore заменяет содержимое хранилища данными снапшота из r.
func (m *MStorage) Restore(r io.Reader) error {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return errors.Wrap(err, "failed to decode snapshot")
	}

	data := make(map[string][]byte, len(raw))
	for k, v := range raw {
		data[k] = v
	}

	m.m.Lock()
	defer m.m.Unlock()
	m.data = data
	return nil
}
