package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/internal/repository"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
	"github.com/noah-isme/educentral-admin-api/pkg/spreadsheet"
)

// ImportServiceParams groups constructor dependencies.
type ImportServiceParams struct {
	Users       collection[models.UserRecord]
	Courses     collection[models.Course]
	Events      collection[models.Event]
	Pipeline    *importer.Pipeline
	Metrics     *MetricsService
	Cache       *CacheService
	MaxFileSize int64
	Logger      *zap.Logger
}

// ImportService reconciles spreadsheet batches with the stored collections.
// Imports into the same collection run one at a time.
type ImportService struct {
	users    collection[models.UserRecord]
	courses  collection[models.Course]
	events   collection[models.Event]
	pipeline *importer.Pipeline
	metrics  *MetricsService
	cache    *CacheService
	maxSize  int64
	logger   *zap.Logger
	now      func() time.Time

	usersMu   sync.Mutex
	coursesMu sync.Mutex
	eventsMu  sync.Mutex
}

// NewImportService constructs the import service.
func NewImportService(params ImportServiceParams) *ImportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pipeline := params.Pipeline
	if pipeline == nil {
		pipeline = importer.NewPipeline(nil, nil, importer.Lenient)
	}
	return &ImportService{
		users:    params.Users,
		courses:  params.Courses,
		events:   params.Events,
		pipeline: pipeline,
		metrics:  params.Metrics,
		cache:    params.Cache,
		maxSize:  params.MaxFileSize,
		logger:   logger,
		now:      time.Now,
	}
}

// Parse reads an uploaded spreadsheet into rows. size is the declared upload
// size; a negative value skips the size check.
func (s *ImportService) Parse(filename string, r io.Reader, size int64) ([]importer.Row, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, "")
	}
	if s.maxSize > 0 {
		r = io.LimitReader(r, s.maxSize+1)
	}
	records, err := spreadsheet.Parse(filename, r)
	if err != nil {
		switch {
		case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
			return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFile.Code, appErrors.ErrUnsupportedFile.Status, "only .xlsx, .xls and .csv files are supported")
		case errors.Is(err, spreadsheet.ErrEmptySheet):
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "the uploaded sheet has no header row")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read spreadsheet")
		}
	}
	rows := make([]importer.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, importer.NewRow(rec))
	}
	return rows, nil
}

// RowsFromMaps converts decoded JSON objects into rows.
func RowsFromMaps(objects []map[string]any) []importer.Row {
	rows := make([]importer.Row, 0, len(objects))
	for _, o := range objects {
		rows = append(rows, importer.NewRow(o))
	}
	return rows
}

// ImportUsers merges a batch of students or faculty.
func (s *ImportService) ImportUsers(ctx context.Context, rows []importer.Row, d importer.UserDefaults) (*importer.Report, error) {
	now := s.now().UTC()
	candidates := s.pipeline.Users(rows, d)
	for i := range candidates {
		candidates[i].Record.CreatedAt, candidates[i].Record.UpdatedAt = now, now
	}
	return runImport(ctx, s, &s.usersMu, s.users, "users", candidates, importer.UserKeys)
}

// ImportCourses merges a batch of courses.
func (s *ImportService) ImportCourses(ctx context.Context, rows []importer.Row, d importer.CourseDefaults) (*importer.Report, error) {
	now := s.now().UTC()
	candidates := s.pipeline.Courses(rows, d)
	for i := range candidates {
		candidates[i].Record.CreatedAt, candidates[i].Record.UpdatedAt = now, now
	}
	return runImport(ctx, s, &s.coursesMu, s.courses, "courses", candidates, importer.CourseKeys)
}

// ImportEvents merges a batch of events.
func (s *ImportService) ImportEvents(ctx context.Context, rows []importer.Row, d importer.EventDefaults) (*importer.Report, error) {
	now := s.now().UTC()
	candidates := s.pipeline.Events(rows, d)
	for i := range candidates {
		candidates[i].Record.CreatedAt, candidates[i].Record.UpdatedAt = now, now
	}
	return runImport(ctx, s, &s.eventsMu, s.events, "events", candidates, importer.EventKeys)
}

func runImport[T any](ctx context.Context, s *ImportService, mu *sync.Mutex, repo collection[T], entity string, candidates []importer.Candidate[T], keys func(T) []string) (*importer.Report, error) {
	if len(candidates) == 0 {
		report := importer.NewReport(entity, 0, nil)
		return &report, nil
	}
	mu.Lock()
	defer mu.Unlock()

	existing, err := repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing "+entity)
	}
	index := importer.NewIndex()
	for _, rec := range existing {
		index.Add(keys(rec)...)
	}

	accepted, skipped := importer.Filter(candidates, index)
	if err := repo.AppendBatch(ctx, accepted); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, entity+" changed during import, retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import "+entity)
	}

	report := importer.NewReport(entity, len(candidates), skipped)
	s.metrics.RecordImport(entity, report.Added, report.Skipped)
	if report.Added > 0 {
		s.cache.InvalidateDashboard(ctx)
	}
	s.logger.Info("import finished",
		zap.String("entity", entity),
		zap.String("policy", string(s.pipeline.Policy())),
		zap.Int("total", report.Total),
		zap.Int("added", report.Added),
		zap.Int("skipped", report.Skipped),
	)
	return &report, nil
}
