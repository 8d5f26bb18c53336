// Package memstore предоставляет реализацию хранилища ссылок поверх in-memory хранилища.
//
// Записи хранятся по ключу Code, поэтому уникальность кода обеспечивается атомарной вставкой
// memory.Set. Все методы преобразуют ошибки хранилища в общие ошибки уровня репозитория
// с помощью convertErrorType:
//   - memory.ErrDuplicateKey -> repositories.ErrDuplicateKey
//   - memory.ErrNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package memstore
