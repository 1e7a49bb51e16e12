package gormrepo

import (
	"errors"
	"fmt"

	"tradewinds/internal/app/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// mapWriteError turns a unique-key violation into ports.ErrConflict so a
// racing insert reads the same as a stale version.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ports.ErrConflict, pgErr.ConstraintName)
	}
	return err
}
