package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

const (
	cacheKeyAnalytics = "analytics:overview"
	cacheKeyDashboard = "dashboard:summary"
	cachePatternDash  = "dashboard:*"
)

// CacheRepository is the key/value backend behind CacheService (Redis or in-process).
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService adds timing metrics and failure logging around a CacheRepository.
// A nil or disabled service behaves as a permanent miss.
type CacheService struct {
	backend CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	log     *zap.Logger
	on      bool
}

// NewCacheService constructs a cache service. ttl applies when callers pass zero.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{backend: repo, metrics: metrics, ttl: ttl, log: logger.Named("cache"), on: enabled && repo != nil}
}

// Enabled reports whether lookups reach the backend.
func (s *CacheService) Enabled() bool {
	return s != nil && s.on
}

// Get decodes key into dest. A miss is (false, nil); backend failures are returned.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	started := time.Now()
	err := s.backend.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(started))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
		return false, nil
	default:
		s.log.Warn("lookup failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
}

// Set stores value under key.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	started := time.Now()
	err := s.backend.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(started))
	if err != nil {
		s.log.Warn("write failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate drops every key matching the glob pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	err := s.backend.DeleteByPattern(ctx, pattern)
	if err != nil {
		s.log.Warn("invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
	return err
}

// InvalidateDashboard drops the cached dashboard summary after a write that changes its counters.
// Failures are logged only; the entry then expires on its own TTL.
func (s *CacheService) InvalidateDashboard(ctx context.Context) {
	_ = s.Invalidate(ctx, cachePatternDash)
}

// remember is a read-through lookup: on a miss or a backend failure load runs and its
// result is written back. The bool reports a cache hit.
func remember[T any](ctx context.Context, cache *CacheService, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, bool, error) {
	var cached T
	if hit, err := cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}
	fresh, err := load(ctx)
	if err != nil {
		return nil, false, err
	}
	_ = cache.Set(ctx, key, fresh, ttl)
	return fresh, false, nil
}
