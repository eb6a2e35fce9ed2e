package units

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	mu       sync.Mutex
	units    []Unit
	vat      []VatRule
	err      error
	unitHits int
}

func (s *stubCatalog) ListUnits(context.Context) ([]Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unitHits++
	if s.err != nil {
		return nil, s.err
	}
	return s.units, nil
}

func (s *stubCatalog) ListVatRules(context.Context) ([]VatRule, error) {
	return s.vat, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestServiceReloadsAfterStaleness(t *testing.T) {
	catalog := &stubCatalog{vat: []VatRule{{CategoryCode: "food", Rate: decimal.RequireFromString("0.11")}}}
	clock := &fakeClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	svc, err := NewService(catalog, 5*time.Minute, clock.Now)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.Engine(ctx)
	require.NoError(t, err)
	_, ok := first.Unit("kg")
	assert.True(t, ok, "empty catalog falls back to default units")

	clock.now = clock.now.Add(4 * time.Minute)
	second, err := svc.Engine(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, catalog.unitHits)

	clock.now = clock.now.Add(time.Minute)
	third, err := svc.Engine(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, catalog.unitHits)
}

func TestServiceServesStaleEngineWhenReloadFails(t *testing.T) {
	catalog := &stubCatalog{}
	clock := &fakeClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	svc, err := NewService(catalog, time.Minute, clock.Now)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.Engine(ctx)
	require.NoError(t, err)

	catalog.err = errors.New("db down")
	clock.now = clock.now.Add(2 * time.Minute)
	stale, err := svc.Engine(ctx)
	require.NoError(t, err)
	assert.Same(t, first, stale)

	svc.Invalidate()
	_, err = svc.Engine(ctx)
	require.Error(t, err)
}

func TestServiceRejectsInvalidCatalog(t *testing.T) {
	catalog := &stubCatalog{units: []Unit{{Code: "kg", BaseUnit: "g"}}}
	svc, err := NewService(catalog, 0, nil)
	require.NoError(t, err)

	_, err = svc.Engine(context.Background())
	require.ErrorContains(t, err, "to_base_factor")
}

func TestNewServiceRequiresCatalog(t *testing.T) {
	_, err := NewService(nil, time.Minute, nil)
	require.Error(t, err)
}
