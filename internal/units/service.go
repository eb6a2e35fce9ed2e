package units

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
)

// DefaultStaleness is how long a loaded engine is served before the tables are re-read.
const DefaultStaleness = 5 * time.Minute

// Catalog is the data source for unit and VAT tables.
type Catalog interface {
	ListUnits(ctx context.Context) ([]Unit, error)
	ListVatRules(ctx context.Context) ([]VatRule, error)
}

// Service hands out an Engine rebuilt from the catalog at most once per
// staleness window.
type Service struct {
	catalog   Catalog
	staleness time.Duration
	now       func() time.Time

	mu       sync.Mutex
	engine   *Engine
	loadedAt time.Time
}

// NewService wires the catalog. A nil clock defaults to time.Now.
func NewService(catalog Catalog, staleness time.Duration, now func() time.Time) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("unit catalog required")
	}
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	if now == nil {
		now = time.Now
	}
	return &Service{catalog: catalog, staleness: staleness, now: now}, nil
}

// Engine returns the current engine, reloading when the window has elapsed.
// A failed reload keeps serving the previous engine if there is one.
func (s *Service) Engine(ctx context.Context) (*Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.engine != nil && now.Sub(s.loadedAt) < s.staleness {
		return s.engine, nil
	}

	engine, err := s.load(ctx)
	if err != nil {
		if s.engine != nil {
			return s.engine, nil
		}
		return nil, err
	}
	s.engine = engine
	s.loadedAt = now
	return engine, nil
}

// Invalidate forces the next Engine call to reload.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.engine = nil
	s.mu.Unlock()
}

func (s *Service) load(ctx context.Context) (*Engine, error) {
	unitTable, err := s.catalog.ListUnits(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load units")
	}
	if len(unitTable) == 0 {
		unitTable = DefaultUnits()
	}
	vatRules, err := s.catalog.ListVatRules(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vat rules")
	}
	engine, err := NewEngine(unitTable, vatRules)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "invalid unit catalog")
	}
	return engine, nil
}
