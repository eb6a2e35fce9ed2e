package suppliers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
)

type historyStore interface {
	MarkOrdered(ctx context.Context, supplierID uuid.UUID) error
}

type profileInvalidator interface {
	Invalidate(ctx context.Context, supplierIDs ...uuid.UUID) error
}

// OrderHistory records a buyer's first order with a supplier, which silences
// the new_supplier_fee warning on later quotes.
type OrderHistory struct {
	store historyStore
	cache profileInvalidator
}

// NewOrderHistory wires the store. cache may be nil.
func NewOrderHistory(store historyStore, cache profileInvalidator) (*OrderHistory, error) {
	if store == nil {
		return nil, fmt.Errorf("supplier profile store required")
	}
	return &OrderHistory{store: store, cache: cache}, nil
}

func (h *OrderHistory) MarkOrdered(ctx context.Context, supplierID uuid.UUID) error {
	if supplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier_id is required")
	}
	if err := h.store.MarkOrdered(ctx, supplierID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order history")
	}
	if h.cache == nil {
		return nil
	}
	if err := h.cache.Invalidate(ctx, supplierID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalidate supplier profile")
	}
	return nil
}
