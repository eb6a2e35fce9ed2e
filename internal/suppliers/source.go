package suppliers

import (
	"context"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/pkg/cache"
	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
	"github.com/gsindri/kaupa-skil-sub004/pkg/redis"
)

// Store is the persistence side of profile lookups.
type Store interface {
	Profiles(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]Profile, error)
}

// CacheRecorder observes cache hits and misses.
type CacheRecorder interface {
	ObserveCache(cache string, hit bool)
}

const profileCacheName = "supplier_profile"

// CachedSource serves profiles through a TTL cache keyed by supplier id.
type CachedSource struct {
	store    Store
	cache    *cache.JSON
	recorder CacheRecorder
}

type cachedProfile struct {
	Profile *Profile `json:"profile"`
}

func NewCachedSource(store Store, c *cache.JSON, recorder CacheRecorder) *CachedSource {
	return &CachedSource{store: store, cache: c, recorder: recorder}
}

func (s *CachedSource) Profiles(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]Profile, error) {
	out := make(map[uuid.UUID]Profile, len(supplierIDs))
	missing := make([]uuid.UUID, 0, len(supplierIDs))
	seen := make(map[uuid.UUID]struct{}, len(supplierIDs))

	for _, id := range supplierIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		var entry cachedProfile
		ok, err := s.cache.GetJSON(ctx, redis.SupplierProfileKey(id), &entry)
		if err != nil || !ok {
			s.observe(false)
			missing = append(missing, id)
			continue
		}
		s.observe(true)
		if entry.Profile != nil {
			out[id] = *entry.Profile
		}
	}

	if len(missing) == 0 {
		return out, nil
	}
	fetched, err := s.store.Profiles(ctx, missing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier profiles")
	}
	for _, id := range missing {
		entry := cachedProfile{}
		if p, ok := fetched[id]; ok {
			out[id] = p
			entry.Profile = &p
		}
		_ = s.cache.SetJSON(ctx, redis.SupplierProfileKey(id), entry)
	}
	return out, nil
}

// Invalidate drops cached profiles so the next lookup reads the store.
func (s *CachedSource) Invalidate(ctx context.Context, supplierIDs ...uuid.UUID) error {
	keys := make([]string, 0, len(supplierIDs))
	for _, id := range supplierIDs {
		keys = append(keys, redis.SupplierProfileKey(id))
	}
	return s.cache.Delete(ctx, keys...)
}

func (s *CachedSource) observe(hit bool) {
	if s.recorder != nil {
		s.recorder.ObserveCache(profileCacheName, hit)
	}
}
