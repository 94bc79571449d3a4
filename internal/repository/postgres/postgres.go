// Package postgres implements the domain repository interfaces on a
// pgx connection pool.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isPgUniqueViolation reports whether err is a unique constraint violation
func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// uniqueConstraint returns the violated constraint's name, or ""
func uniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}
