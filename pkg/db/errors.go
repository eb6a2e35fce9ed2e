package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err came from a unique index. A non-empty
// constraint must also match the index name. Postgres errors from either
// driver are inspected; sqlite only exposes the message text.
func IsUniqueViolation(err error, constraint string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return true
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == uniqueViolation && matches(pgxErr.ConstraintName, constraint)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation && matches(pqErr.Constraint, constraint)
	}

	msg := err.Error()
	if constraint != "" {
		return strings.Contains(msg, constraint)
	}
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func matches(got, want string) bool {
	return want == "" || got == want
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
