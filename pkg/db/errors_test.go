package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "delivery_rules_supplier_zone_key"}

	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgErr), ""))
	assert.True(t, IsUniqueViolation(pgErr, "delivery_rules_supplier_zone_key"))
	assert.False(t, IsUniqueViolation(pgErr, "other_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: units.code"), ""))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey, ""))
	assert.False(t, IsUniqueViolation(nil, ""))

	pqErr := &pq.Error{Code: "23505", Constraint: "ux_delivery_rules_active_zone"}
	assert.True(t, IsUniqueViolation(fmt.Errorf("replace: %w", pqErr), "ux_delivery_rules_active_zone"))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23502"}, ""))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("load: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFound(errors.New("boom")))
}
