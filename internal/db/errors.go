package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports a unique_violation, optionally restricted to one
// of the given constraint names.
func IsUniqueViolation(err error, constraints ...string) bool {
	return pgCodeMatches(err, codeUniqueViolation, constraints)
}

func IsForeignKeyViolation(err error, constraints ...string) bool {
	return pgCodeMatches(err, codeForeignKeyViolation, constraints)
}

func pgCodeMatches(err error, code string, constraints []string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != code {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}
