package pgsql

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fsdevblog/tinylink/internal/repositories"
)

const uniqueViolationCode = "23505"

func convertErrType(err error) error {
	if err == nil {
		return nil
	}

	var nativeErr error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode:
		nativeErr = repositories.ErrDuplicateKey
	case errors.Is(err, pgx.ErrNoRows):
		nativeErr = repositories.ErrNotFound
	default:
		nativeErr = repositories.ErrUnknown
	}
	return fmt.Errorf("%w: %s", nativeErr, err.Error())
}
