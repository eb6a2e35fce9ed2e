package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/internal/delivery"
	"github.com/gsindri/kaupa-skil-sub004/internal/optimizer"
	"github.com/gsindri/kaupa-skil-sub004/internal/suppliers"
	"github.com/gsindri/kaupa-skil-sub004/internal/units"
	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
)

type profileSource interface {
	Profiles(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]suppliers.Profile, error)
}

type engineProvider interface {
	Engine(ctx context.Context) (*units.Engine, error)
}

// Recorder receives quote metrics. *metrics.QuoteMetrics satisfies it.
type Recorder interface {
	ObserveDuration(operation string, err error, duration time.Duration)
	IncSuggestion(kind string)
	IncWarning(kind string)
	AddRejectedRules(n int)
}

// Service prices carts: landed delivery cost per supplier and optimization hints.
type Service interface {
	Calculate(ctx context.Context, items []delivery.CartLineItem) ([]delivery.Calculation, error)
	Optimize(ctx context.Context, items []delivery.CartLineItem) (optimizer.Optimization, error)
}

type service struct {
	rules     delivery.RuleSource
	profiles  profileSource
	engines   engineProvider
	optimizer *optimizer.Optimizer
	calc      *delivery.Calculator
	recorder  Recorder
	logg      *logger.Logger
	now       func() time.Time
}

// Deps groups the collaborators of the quote service. Profiles and Recorder are optional.
type Deps struct {
	Rules     delivery.RuleSource
	Profiles  profileSource
	Units     engineProvider
	Calc      *delivery.Calculator
	Optimizer *optimizer.Optimizer
	Recorder  Recorder
	Logger    *logger.Logger
}

// NewService builds a quote service backed by the provided stack.
func NewService(deps Deps) (Service, error) {
	if deps.Rules == nil {
		return nil, fmt.Errorf("delivery rule source required")
	}
	if deps.Units == nil {
		return nil, fmt.Errorf("unit engine provider required")
	}
	if deps.Calc == nil {
		return nil, fmt.Errorf("delivery calculator required")
	}
	if deps.Optimizer == nil {
		return nil, fmt.Errorf("optimizer required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		rules:     deps.Rules,
		profiles:  deps.Profiles,
		engines:   deps.Units,
		optimizer: deps.Optimizer,
		calc:      deps.Calc,
		recorder:  deps.Recorder,
		logg:      deps.Logger,
		now:       time.Now,
	}, nil
}

func (s *service) Calculate(ctx context.Context, items []delivery.CartLineItem) (out []delivery.Calculation, err error) {
	defer s.observe("calculate", s.now(), &err)

	lines, err := s.prepare(ctx, items)
	if err != nil {
		return nil, err
	}
	rules, err := s.lookupRules(ctx, lines)
	if err != nil {
		return nil, err
	}
	return s.calc.CalculateOrderDelivery(lines, rules), nil
}

func (s *service) Optimize(ctx context.Context, items []delivery.CartLineItem) (out optimizer.Optimization, err error) {
	defer s.observe("optimize", s.now(), &err)

	lines, err := s.prepare(ctx, items)
	if err != nil {
		return optimizer.Optimization{}, err
	}
	rules, err := s.lookupRules(ctx, lines)
	if err != nil {
		return optimizer.Optimization{}, err
	}
	profiles := s.lookupProfiles(ctx, lines)

	result := s.optimizer.OptimizeOrder(lines, rules, profiles)
	if s.recorder != nil {
		for _, sug := range result.Suggestions {
			s.recorder.IncSuggestion(sug.Type.String())
		}
		for _, w := range result.Warnings {
			s.recorder.IncWarning(w.Type.String())
		}
	}
	return result, nil
}

// prepare fills VAT rates and the missing side of each line's ex/inc VAT price
// from the unit catalog. A category rate is looked up only when the line sends
// no rate of its own. Deriving a price without any rate is an error.
func (s *service) prepare(ctx context.Context, items []delivery.CartLineItem) ([]delivery.CartLineItem, error) {
	lines := make([]delivery.CartLineItem, len(items))
	copy(lines, items)

	var engine *units.Engine
	for i := range lines {
		line := &lines[i]
		needsRate := line.VatRate == nil && line.CategoryCode != ""
		needsPrice := line.UnitPriceExVat.IsZero() != line.UnitPriceIncVat.IsZero()
		if !needsRate && !needsPrice {
			continue
		}
		if needsPrice && line.VatRate == nil && line.CategoryCode == "" {
			return nil, unknownRate(i, line)
		}
		if engine == nil {
			var err error
			if engine, err = s.engines.Engine(ctx); err != nil {
				return nil, err
			}
		}
		if needsRate {
			rate, err := engine.VatRate(line.CategoryCode)
			if err != nil {
				return nil, err
			}
			line.VatRate = &rate
		}
		if err := fillPrices(engine, line); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func unknownRate(index int, line *delivery.CartLineItem) error {
	return pkgerrors.New(pkgerrors.CodeUnknownVAT, "vat rate unknown: send vat_rate or category_code").
		WithDetails(map[string]any{
			"line":             index,
			"supplier_id":      line.SupplierID.String(),
			"supplier_item_id": line.SupplierItemID,
		})
}

func fillPrices(engine *units.Engine, line *delivery.CartLineItem) error {
	if line.VatRate == nil {
		return nil
	}
	rate := *line.VatRate
	switch {
	case line.UnitPriceExVat.IsZero() && !line.UnitPriceIncVat.IsZero():
		ex, err := engine.PriceExVat(line.UnitPriceIncVat, rate)
		if err != nil {
			return err
		}
		line.UnitPriceExVat = ex
	case line.UnitPriceIncVat.IsZero() && !line.UnitPriceExVat.IsZero():
		inc, err := engine.PriceIncVat(line.UnitPriceExVat, rate)
		if err != nil {
			return err
		}
		line.UnitPriceIncVat = inc
	}
	return nil
}

func (s *service) lookupRules(ctx context.Context, lines []delivery.CartLineItem) (map[uuid.UUID]delivery.Rule, error) {
	ids := supplierIDs(lines)
	if len(ids) == 0 {
		return map[uuid.UUID]delivery.Rule{}, nil
	}
	lookup, err := s.rules.Rules(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, cause := range lookup.Rejected {
		s.logg.Warn(s.logg.WithFields(s.logg.WithSupplierID(ctx, id.String()), pkgerrors.Dump(cause).Fields()),
			"ignoring invalid delivery rule")
	}
	if s.recorder != nil {
		s.recorder.AddRejectedRules(len(lookup.Rejected))
	}
	return lookup.Rules, nil
}

// lookupProfiles fails open: a load error returns nil, which makes the optimizer
// skip the profile-driven warnings. A successful load is never nil.
func (s *service) lookupProfiles(ctx context.Context, lines []delivery.CartLineItem) map[uuid.UUID]suppliers.Profile {
	if s.profiles == nil {
		return nil
	}
	ids := supplierIDs(lines)
	if len(ids) == 0 {
		return nil
	}
	profiles, err := s.profiles.Profiles(ctx, ids)
	if err != nil {
		s.logg.Error(ctx, "load supplier profiles", err)
		return nil
	}
	if profiles == nil {
		profiles = map[uuid.UUID]suppliers.Profile{}
	}
	return profiles
}

func (s *service) observe(operation string, started time.Time, err *error) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveDuration(operation, *err, s.now().Sub(started))
}

func supplierIDs(lines []delivery.CartLineItem) []uuid.UUID {
	groups := delivery.GroupBySupplier(lines)
	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.SupplierID)
	}
	return ids
}
