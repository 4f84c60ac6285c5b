// Package store provides the persistence implementations: PostgreSQL as the
// authoritative store, Redis as a read cache and rate-limit backend, and
// in-memory variants for tests.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for unique-constraint failures.
const uniqueViolation = "23505"

// violatedConstraint returns the name of the violated unique constraint, or
// an empty string if the error is not a unique violation.
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}

	return ""
}
