package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/internal/repository"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) error {
	return errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenCache) DeleteByPattern(context.Context, string) error {
	return errors.New("connection refused")
}

func TestCacheServiceDisabled(t *testing.T) {
	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	hit, err := nilCache.Get(context.Background(), "k", &struct{}{})
	assert.False(t, hit)
	assert.NoError(t, err)

	off := NewCacheService(repository.NewLocalCache(nil), nil, 0, nil, false)
	assert.False(t, off.Enabled())
	assert.NoError(t, off.Set(context.Background(), "k", 1, 0))
	assert.NotPanics(t, func() { off.InvalidateDashboard(context.Background()) })
}

func TestRememberReadsThrough(t *testing.T) {
	cache := NewCacheService(repository.NewLocalCache(nil), NewMetricsService(), time.Minute, nil, true)
	loads := 0
	load := func(context.Context) (*models.DashboardSummary, error) {
		loads++
		return &models.DashboardSummary{Students: 4}, nil
	}

	first, hit, err := remember(context.Background(), cache, cacheKeyDashboard, 0, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 4, first.Students)

	second, hit, err := remember(context.Background(), cache, cacheKeyDashboard, 0, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 4, second.Students)
	assert.Equal(t, 1, loads)

	cache.InvalidateDashboard(context.Background())
	_, hit, err = remember(context.Background(), cache, cacheKeyDashboard, 0, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, loads)
}

func TestRememberSurvivesBackendFailure(t *testing.T) {
	cache := NewCacheService(brokenCache{}, nil, time.Minute, nil, true)

	summary, hit, err := remember(context.Background(), cache, cacheKeyDashboard, 0, func(context.Context) (*models.DashboardSummary, error) {
		return &models.DashboardSummary{Faculty: 2}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, summary.Faculty)

	assert.Error(t, cache.Invalidate(context.Background(), cachePatternDash))
}
