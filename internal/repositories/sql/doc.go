// Package sql предоставляет реализацию хранилища ссылок поверх gorm (sqlite и libsql).
//
// Уникальность кода обеспечивается уникальным индексом таблицы links, а счетчик переходов
// обновляется одним UPDATE выражением. Ошибки gorm преобразуются в общие ошибки уровня
// репозитория с помощью convertErrorType:
//   - gorm.ErrDuplicatedKey, UNIQUE constraint failed -> repositories.ErrDuplicateKey
//   - gorm.ErrRecordNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package sql
