package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsCheckViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23514", ConstraintName: "chk_products_quantity_non_negative"}
	wrapped := fmt.Errorf("update: %w", pgErr)

	if !IsCheckViolation(wrapped, "") {
		t.Fatal("expected check violation")
	}
	if !IsCheckViolation(wrapped, "chk_products_quantity_non_negative") {
		t.Fatal("expected named check violation")
	}
	if IsCheckViolation(wrapped, "other") {
		t.Fatal("unexpected match on other constraint")
	}
	if !IsCheckViolation(errors.New("CHECK constraint failed: chk_products_quantity_non_negative"), "") {
		t.Fatal("expected sqlite message to match")
	}
	if IsCheckViolation(nil, "") {
		t.Fatal("nil is not a violation")
	}
}

func TestIsLockFailure(t *testing.T) {
	for _, code := range []string{"55P03", "40P01", "57014"} {
		if !IsLockFailure(fmt.Errorf("lock: %w", &pgconn.PgError{Code: code})) {
			t.Fatalf("expected %s to be a lock failure", code)
		}
	}
	if IsLockFailure(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violation is not a lock failure")
	}
	if !IsLockFailure(errors.New("database is locked")) {
		t.Fatal("expected sqlite busy error to match")
	}
}
