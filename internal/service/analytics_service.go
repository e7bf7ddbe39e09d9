package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

type analyticsSource interface {
	Analytics(ctx context.Context) (*models.AnalyticsOverview, error)
}

// AnalyticsService serves the analytics datasets through the cache.
type AnalyticsService struct {
	source analyticsSource
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(source analyticsSource, cache *CacheService, ttl time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{source: source, cache: cache, ttl: ttl, logger: logger}
}

// Overview returns every dataset and whether it came from the cache.
func (s *AnalyticsService) Overview(ctx context.Context) (*models.AnalyticsOverview, bool, error) {
	return remember(ctx, s.cache, cacheKeyAnalytics, s.ttl, func(ctx context.Context) (*models.AnalyticsOverview, error) {
		overview, err := s.source.Analytics(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load analytics")
		}
		return overview, nil
	})
}

// DashboardService computes the summary cards from the live collections.
type DashboardService struct {
	users    collection[models.UserRecord]
	courses  collection[models.Course]
	events   collection[models.Event]
	invoices collection[models.Invoice]
	leaves   collection[models.LeaveRequest]
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Users    collection[models.UserRecord]
	Courses  collection[models.Course]
	Events   collection[models.Event]
	Invoices collection[models.Invoice]
	Leaves   collection[models.LeaveRequest]
	Cache    *CacheService
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	if params.CacheTTL <= 0 {
		params.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:    params.Users,
		courses:  params.Courses,
		events:   params.Events,
		invoices: params.Invoices,
		leaves:   params.Leaves,
		cache:    params.Cache,
		ttl:      params.CacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Summary returns the dashboard counters and whether they came from the cache.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	return remember(ctx, s.cache, cacheKeyDashboard, s.ttl, s.compose)
}

func (s *DashboardService) compose(ctx context.Context) (*models.DashboardSummary, error) {
	now := s.now().UTC()
	summary := &models.DashboardSummary{GeneratedAt: now}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dashboardError(err)
	}
	for _, u := range users {
		if u.Role == models.RoleFaculty {
			summary.Faculty++
		} else {
			summary.Students++
		}
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, dashboardError(err)
	}
	summary.Courses = len(courses)

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, dashboardError(err)
	}
	summary.Events = len(events)
	for _, e := range events {
		if !e.Date.Before(now) {
			summary.UpcomingEvents++
		}
	}

	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, dashboardError(err)
	}
	var outstanding float64
	for _, inv := range invoices {
		switch inv.Status {
		case models.InvoicePending:
			summary.PendingInvoices++
			outstanding += inv.TotalAmount
		case models.InvoiceOverdue:
			summary.OverdueInvoices++
			outstanding += inv.TotalAmount
		}
	}
	summary.OutstandingAmount = roundMoney(outstanding)

	leaves, err := s.leaves.List(ctx)
	if err != nil {
		return nil, dashboardError(err)
	}
	for _, l := range leaves {
		if l.Status == models.LeavePending {
			summary.PendingLeaves++
		}
	}
	return summary, nil
}

func dashboardError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compose dashboard")
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
