package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/pkg/export"
	"github.com/noah-isme/educentral-admin-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportSources are the collections an export can read.
type ExportSources struct {
	Users    collection[models.UserRecord]
	Courses  collection[models.Course]
	Events   collection[models.Event]
	Invoices collection[models.Invoice]
	Leaves   collection[models.LeaveRequest]
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService builds collection datasets and persists rendered files.
type ExportService struct {
	sources   ExportSources
	storage   fileStorage
	renderers map[models.ExportFormat]export.Renderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(sources ExportSources, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		sources: sources,
		storage: store,
		renderers: map[models.ExportFormat]export.Renderer{
			models.ExportFormatCSV: export.NewCSVExporter(),
			models.ExportFormatPDF: export.NewPDFExporter(),
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
	}
}

// Generate renders the job's collection and stores the file behind a signed URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, ok := s.renderers[job.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", job.Format)
	}
	dataset, err := s.Dataset(ctx, job.Resource)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", job.Format, err)
	}

	filename := fmt.Sprintf("%s_%s_%s.%s", job.Resource, job.ID, time.Now().UTC().Format("20060102150405"), renderer.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Debug("export rendered", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          prefix + "/exports/download?token=" + token,
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ContentType returns the MIME type of format.
func (s *ExportService) ContentType(format models.ExportFormat) string {
	if r, ok := s.renderers[format]; ok {
		return r.ContentType()
	}
	return "application/octet-stream"
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup purges files older than ttl.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	return s.storage.CleanupOlderThan(ttl)
}

// Dataset flattens one collection into export rows.
func (s *ExportService) Dataset(ctx context.Context, resource models.ExportResource) (export.Dataset, error) {
	switch resource {
	case models.ExportUsers:
		users, err := s.sources.Users.List(ctx)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("list users: %w", err)
		}
		sort.SliceStable(users, func(i, j int) bool { return users[i].ID < users[j].ID })
		ds := export.Dataset{Title: "Users", Headers: []string{"ID", "Name", "Email", "Role", "Field", "Batch", "Section", "Department"}}
		for _, u := range users {
			ds.Rows = append(ds.Rows, map[string]string{
				"ID": u.ID, "Name": u.Name, "Email": u.Email, "Role": string(u.Role),
				"Field": u.Field, "Batch": u.Batch, "Section": u.Section, "Department": u.Department,
			})
		}
		return ds, nil
	case models.ExportCourses:
		courses, err := s.sources.Courses.List(ctx)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("list courses: %w", err)
		}
		sort.SliceStable(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
		ds := export.Dataset{Title: "Courses", Headers: []string{"ID", "Code", "Title", "Credits", "Department", "Description"}}
		for _, c := range courses {
			ds.Rows = append(ds.Rows, map[string]string{
				"ID": c.ID, "Code": c.Code, "Title": c.Title, "Credits": formatNumber(c.Credits),
				"Department": c.Department, "Description": c.Description,
			})
		}
		return ds, nil
	case models.ExportEvents:
		events, err := s.sources.Events.List(ctx)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("list events: %w", err)
		}
		sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
		ds := export.Dataset{Title: "Events", Headers: []string{"ID", "Title", "Date", "Location", "Category", "Description"}}
		for _, e := range events {
			ds.Rows = append(ds.Rows, map[string]string{
				"ID": e.ID, "Title": e.Title, "Date": e.Date.Format("2006-01-02"),
				"Location": e.Location, "Category": e.Category, "Description": e.Description,
			})
		}
		return ds, nil
	case models.ExportInvoices:
		invoices, err := s.sources.Invoices.List(ctx)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("list invoices: %w", err)
		}
		sort.SliceStable(invoices, func(i, j int) bool { return invoices[i].IssueDate.After(invoices[j].IssueDate) })
		ds := export.Dataset{Title: "Invoices", Headers: []string{"ID", "Student ID", "Student", "Type", "Status", "Issue Date", "Due Date", "Total"}}
		for _, inv := range invoices {
			ds.Rows = append(ds.Rows, map[string]string{
				"ID": inv.ID, "Student ID": inv.StudentID, "Student": inv.StudentName, "Type": string(inv.Type),
				"Status": string(inv.Status), "Issue Date": inv.IssueDate.Format("2006-01-02"),
				"Due Date": inv.DueDate.Format("2006-01-02"), "Total": strconv.FormatFloat(inv.TotalAmount, 'f', 2, 64),
			})
		}
		return ds, nil
	case models.ExportLeaves:
		leaves, err := s.sources.Leaves.List(ctx)
		if err != nil {
			return export.Dataset{}, fmt.Errorf("list leave requests: %w", err)
		}
		sortLeaves(leaves)
		ds := export.Dataset{Title: "Leave Requests", Headers: []string{"ID", "Faculty", "Department", "Start", "End", "Status", "Reason"}}
		for _, l := range leaves {
			ds.Rows = append(ds.Rows, map[string]string{
				"ID": l.ID, "Faculty": l.FacultyName, "Department": l.Department,
				"Start": l.StartDate.Format("2006-01-02"), "End": l.EndDate.Format("2006-01-02"),
				"Status": string(l.Status), "Reason": l.Reason,
			})
		}
		return ds, nil
	default:
		return export.Dataset{}, fmt.Errorf("unsupported export resource %q", resource)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
