package db

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_cards_round_word"}
	if !isUniqueViolation(dup) {
		t.Fatal("23505 not classified as unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("create card: %w", dup)) {
		t.Fatal("wrapped 23505 not classified as unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "40001"}) {
		t.Fatal("serialization failure classified as unique violation")
	}
	if isUniqueViolation(fmt.Errorf("plain failure")) {
		t.Fatal("non-pg error classified as unique violation")
	}
}
