package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gsindri/kaupa-skil-sub004/pkg/db"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db/models"
	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
)

// DefaultZone is used for rules stored without a zone.
const DefaultZone = "default"

// TxRunner runs fn inside a database transaction. *db.Client satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ruleInvalidator interface {
	Invalidate(ctx context.Context, supplierIDs ...uuid.UUID) error
}

// RuleAdmin replaces supplier delivery rules and keeps cached lookups coherent.
type RuleAdmin struct {
	repo  *Repository
	tx    TxRunner
	cache ruleInvalidator
}

// NewRuleAdmin wires the repository and transaction runner. cache may be nil.
func NewRuleAdmin(repo *Repository, tx TxRunner, cache ruleInvalidator) (*RuleAdmin, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &RuleAdmin{repo: repo, tx: tx, cache: cache}, nil
}

// Replace stores row as the supplier's active rule for its zone. Older active
// rules in that zone are switched off in the same transaction, and the cached
// lookup is dropped before commit so a failed invalidation leaves nothing written.
func (a *RuleAdmin) Replace(ctx context.Context, row models.DeliveryRule) (Rule, error) {
	if row.SupplierID == uuid.Nil {
		return Rule{}, pkgerrors.New(pkgerrors.CodeValidation, "supplier_id is required")
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.Zone = strings.TrimSpace(row.Zone)
	if row.Zone == "" {
		row.Zone = DefaultZone
	}
	row.IsActive = true

	rule, err := ParseRule(row)
	if err != nil {
		return Rule{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery rule").
			WithDetails(map[string]any{"reason": err.Error()})
	}

	err = a.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := a.repo.WithTx(tx)
		if _, err := repo.DeactivateZone(ctx, row.SupplierID, row.Zone); err != nil {
			return err
		}
		if err := repo.Create(ctx, &row); err != nil {
			return err
		}
		if a.cache != nil {
			if err := a.cache.Invalidate(ctx, row.SupplierID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidate delivery rule cache")
			}
		}
		return nil
	})
	switch {
	case err == nil:
	case db.IsUniqueViolation(err, ""):
		return Rule{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "delivery rule changed concurrently")
	case pkgerrors.As(err) != nil:
		return Rule{}, err
	default:
		return Rule{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store delivery rule")
	}

	// A lookup between invalidation and commit may have cached the old row.
	if a.cache != nil {
		_ = a.cache.Invalidate(ctx, row.SupplierID)
	}
	return rule, nil
}
