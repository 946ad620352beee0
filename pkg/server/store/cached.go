package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/rbac-console/pkg/cache"
	"github.com/doodlesbykumbi/rbac-console/pkg/metrics"
	"github.com/doodlesbykumbi/rbac-console/pkg/model"
)

// Ensure the decorators implement their stores
var (
	_ AuthzStore                  = (*CachedAuthzStore)(nil)
	_ GroupModulePermissionsStore = (*InvalidatingGrantsStore)(nil)
)

// CachedAuthzStore memoizes permission decisions per user and codename.
// Cache failures fall through to the wrapped store. A ttl of zero or less
// disables caching.
//
// A decision read before an Invalidate in this process is not stored.
// Other processes sharing a Redis cache can still write back a decision
// they read before the invalidating commit; it lives at most one ttl.
type CachedAuthzStore struct {
	next       AuthzStore
	cache      cache.Cache
	ttl        time.Duration
	generation atomic.Uint64
	mu         sync.RWMutex
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewCachedAuthzStore wraps next with c. m and logger may be nil.
func NewCachedAuthzStore(next AuthzStore, c cache.Cache, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *CachedAuthzStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedAuthzStore{next: next, cache: c, ttl: ttl, metrics: m, logger: logger}
}

func authzCacheKey(userID uint, codename string) string {
	return fmt.Sprintf("authz:%d:%s", userID, codename)
}

// UserHasPermission checks the cache before asking the wrapped store.
func (s *CachedAuthzStore) UserHasPermission(ctx context.Context, userID uint, codename string) (bool, error) {
	if s.ttl <= 0 {
		return s.next.UserHasPermission(ctx, userID, codename)
	}
	key := authzCacheKey(userID, codename)

	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("authz cache read failed", zap.String("key", key), zap.Error(err))
	} else if found {
		s.metrics.RecordCacheHit()
		return value == "1", nil
	}
	s.metrics.RecordCacheMiss()

	generation := s.generation.Load()
	allowed, err := s.next.UserHasPermission(ctx, userID, codename)
	if err != nil {
		return false, err
	}

	value = "0"
	if allowed {
		value = "1"
	}

	// Invalidate holds the write lock across its bump and Clear, so a write
	// that passes the check lands before the Clear.
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.generation.Load() != generation {
		return allowed, nil
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("authz cache write failed", zap.String("key", key), zap.Error(err))
	}
	return allowed, nil
}

// Invalidate drops every cached decision and discards lookups still in flight.
func (s *CachedAuthzStore) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation.Add(1)
	return s.cache.Clear(ctx)
}

// Invalidator drops cached authorization state.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidatingGrantsStore clears cached decisions after every successful
// grant mutation.
type InvalidatingGrantsStore struct {
	GroupModulePermissionsStore
	invalidator Invalidator
	logger      *zap.Logger
}

// NewInvalidatingGrantsStore wraps next so that writes invalidate inv.
func NewInvalidatingGrantsStore(next GroupModulePermissionsStore, inv Invalidator, logger *zap.Logger) *InvalidatingGrantsStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidatingGrantsStore{GroupModulePermissionsStore: next, invalidator: inv, logger: logger}
}

func (s *InvalidatingGrantsStore) invalidate(ctx context.Context) {
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Error("failed to invalidate authz cache", zap.Error(err))
	}
}

func (s *InvalidatingGrantsStore) Create(ctx context.Context, groupID uint, moduleIDs []uint, permissionIDs []uint) ([]model.GroupModulePermission, error) {
	grants, err := s.GroupModulePermissionsStore.Create(ctx, groupID, moduleIDs, permissionIDs)
	if err == nil {
		s.invalidate(ctx)
	}
	return grants, err
}

func (s *InvalidatingGrantsStore) Update(ctx context.Context, id uint, groupID uint, moduleID uint, permissionIDs []uint) (*model.GroupModulePermission, error) {
	grant, err := s.GroupModulePermissionsStore.Update(ctx, id, groupID, moduleID, permissionIDs)
	if err == nil {
		s.invalidate(ctx)
	}
	return grant, err
}

func (s *InvalidatingGrantsStore) Delete(ctx context.Context, id uint) error {
	err := s.GroupModulePermissionsStore.Delete(ctx, id)
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}
