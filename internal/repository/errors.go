package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrOrderNumberTaken signals a unique-constraint collision on the order
// number. The caller recomputes the sequence and retries.
var ErrOrderNumberTaken = errors.New("order number already taken")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func pgErrConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// isUniqueViolation reports whether err is a unique-constraint violation,
// optionally on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	if pgErrCode(err) != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErrConstraint(err) == constraint
}

func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == pgForeignKeyViolation
}

func isCheckViolation(err error) bool {
	return pgErrCode(err) == pgCheckViolation
}

// IsRetryable reports whether err is transaction contention the caller may
// retry (serialization failure or deadlock).
func IsRetryable(err error) bool {
	code := pgErrCode(err)
	return code == pgSerializationFail || code == pgDeadlockDetected
}
