package delivery

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierGroup is the slice of a cart routed to one supplier.
type SupplierGroup struct {
	SupplierID    uuid.UUID
	SupplierName  string
	Items         []CartLineItem
	SubtotalExVat decimal.Decimal
	Quantity      int
}

// GroupBySupplier groups items per supplier, ordered by supplier id ascending.
// Item order inside a group follows the input.
func GroupBySupplier(items []CartLineItem) []SupplierGroup {
	index := make(map[uuid.UUID]int, len(items))
	groups := make([]SupplierGroup, 0)
	for _, item := range items {
		i, ok := index[item.SupplierID]
		if !ok {
			i = len(groups)
			index[item.SupplierID] = i
			groups = append(groups, SupplierGroup{SupplierID: item.SupplierID, SubtotalExVat: decimal.Zero})
		}
		g := &groups[i]
		if g.SupplierName == "" {
			g.SupplierName = item.SupplierName
		}
		g.Items = append(g.Items, item)
		g.SubtotalExVat = g.SubtotalExVat.Add(item.LineSubtotalExVat())
		g.Quantity += item.Quantity
	}
	SortBySupplier(groups, func(g SupplierGroup) uuid.UUID { return g.SupplierID })
	return groups
}

// SortBySupplier orders a slice by supplier id ascending, keeping ties stable.
func SortBySupplier[T any](values []T, key func(T) uuid.UUID) {
	sort.SliceStable(values, func(i, j int) bool {
		a, b := key(values[i]), key(values[j])
		return bytes.Compare(a[:], b[:]) < 0
	})
}

// CompareSupplierIDs orders supplier ids the same way SortBySupplier does.
func CompareSupplierIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
