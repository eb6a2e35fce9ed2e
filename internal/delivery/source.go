package delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/pkg/cache"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db/models"
	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
	"github.com/gsindri/kaupa-skil-sub004/pkg/redis"
)

// RuleStore is the persistence side of rule lookups.
type RuleStore interface {
	ActiveRules(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]models.DeliveryRule, error)
}

// CacheRecorder observes cache hits and misses.
type CacheRecorder interface {
	ObserveCache(cache string, hit bool)
}

// RuleLookup holds parsed rules plus rows that failed validation. A rejected
// supplier is treated as having no rule.
type RuleLookup struct {
	Rules    map[uuid.UUID]Rule
	Rejected map[uuid.UUID]error
}

// RuleSource resolves delivery rules for a set of suppliers.
type RuleSource interface {
	Rules(ctx context.Context, supplierIDs []uuid.UUID) (RuleLookup, error)
}

const ruleCacheName = "delivery_rule"

// CachedRuleSource serves rule rows from a TTL cache keyed by supplier id and
// falls back to the store on a miss. Absent rules are cached too.
type CachedRuleSource struct {
	store    RuleStore
	cache    *cache.JSON
	recorder CacheRecorder
}

type cachedRule struct {
	Row *models.DeliveryRule `json:"row"`
}

// NewCachedRuleSource wires the store and cache. recorder may be nil.
func NewCachedRuleSource(store RuleStore, c *cache.JSON, recorder CacheRecorder) *CachedRuleSource {
	return &CachedRuleSource{store: store, cache: c, recorder: recorder}
}

func (s *CachedRuleSource) Rules(ctx context.Context, supplierIDs []uuid.UUID) (RuleLookup, error) {
	ids := uniqueIDs(supplierIDs)
	rows := make(map[uuid.UUID]models.DeliveryRule, len(ids))
	missing := make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		var entry cachedRule
		ok, err := s.cache.GetJSON(ctx, redis.DeliveryRuleKey(id), &entry)
		if err != nil || !ok {
			s.observe(false)
			missing = append(missing, id)
			continue
		}
		s.observe(true)
		if entry.Row != nil {
			rows[id] = *entry.Row
		}
	}

	if len(missing) > 0 {
		fetched, err := s.store.ActiveRules(ctx, missing)
		if err != nil {
			return RuleLookup{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery rules")
		}
		for _, id := range missing {
			entry := cachedRule{}
			if row, ok := fetched[id]; ok {
				rows[id] = row
				entry.Row = &row
			}
			_ = s.cache.SetJSON(ctx, redis.DeliveryRuleKey(id), entry)
		}
	}

	return parseRows(rows), nil
}

// Invalidate drops cached rules so the next lookup reads the store.
func (s *CachedRuleSource) Invalidate(ctx context.Context, supplierIDs ...uuid.UUID) error {
	keys := make([]string, 0, len(supplierIDs))
	for _, id := range supplierIDs {
		keys = append(keys, redis.DeliveryRuleKey(id))
	}
	return s.cache.Delete(ctx, keys...)
}

func (s *CachedRuleSource) observe(hit bool) {
	if s.recorder != nil {
		s.recorder.ObserveCache(ruleCacheName, hit)
	}
}

func parseRows(rows map[uuid.UUID]models.DeliveryRule) RuleLookup {
	lookup := RuleLookup{
		Rules:    make(map[uuid.UUID]Rule, len(rows)),
		Rejected: make(map[uuid.UUID]error),
	}
	for id, row := range rows {
		rule, err := ParseRule(row)
		if err != nil {
			lookup.Rejected[id] = err
			continue
		}
		lookup.Rules[id] = rule
	}
	return lookup
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
