package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgCodeCheckViolation   = "23514"
	pgCodeLockNotAvailable = "55P03"
	pgCodeDeadlock         = "40P01"
	pgCodeQueryCanceled    = "57014"
)

// IsCheckViolation reports whether err is a CHECK constraint failure, optionally for
// the named constraint.
func IsCheckViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgCodeCheckViolation {
			return false
		}
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}
	msg := err.Error()
	if !strings.Contains(msg, "CHECK constraint failed") && !strings.Contains(msg, "violates check constraint") {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

// IsLockFailure reports whether err came from a lock wait that timed out or was chosen
// as a deadlock victim.
func IsLockFailure(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeLockNotAvailable, pgCodeDeadlock, pgCodeQueryCanceled:
			return true
		}
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "lock timeout")
}
