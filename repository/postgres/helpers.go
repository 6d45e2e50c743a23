package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/user-service/domain"
)

// uniqueViolation is the Postgres error code for unique-constraint conflicts.
// Check-then-act uniqueness checks in the use cases can race; the constraint
// is the final authority and its violation surfaces as the given conflict.
const uniqueViolation = "23505"

func translateUnique(err error, conflict *domain.Error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return conflict
	}
	return err
}
