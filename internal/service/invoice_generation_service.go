package service

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
	"github.com/noah-isme/educentral-admin-api/pkg/genai"
)

const (
	generatedItemID     = "ai_item1"
	semesterFeePrice    = 1500
	hostelDuePrice      = 350
	generatedDueInDays  = 15
	generationOpTimeout = 30 * time.Second
)

type descriptionGenerator interface {
	InvoiceDescription(ctx context.Context, req genai.DescriptionRequest) (string, error)
}

// InvoiceGenerationService drafts one pending invoice per student with a
// generated description. Only one run may be in flight at a time.
type InvoiceGenerationService struct {
	invoices  collection[models.Invoice]
	users     collection[models.UserRecord]
	generator descriptionGenerator
	fallback  bool
	metrics   *MetricsService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	ids       importer.IDGenerator
	now       func() time.Time
	running   atomic.Bool
}

// NewInvoiceGenerationService constructs the generation service. fallback selects
// whether generator failures still produce invoices.
func NewInvoiceGenerationService(invoices collection[models.Invoice], users collection[models.UserRecord], generator descriptionGenerator, fallback bool, ids importer.IDGenerator, metrics *MetricsService, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *InvoiceGenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InvoiceGenerationService{
		invoices:  invoices,
		users:     users,
		generator: generator,
		fallback:  fallback,
		metrics:   metrics,
		cache:     cache,
		validator: validate,
		logger:    logger,
		ids:       defaultIDs(ids),
		now:       time.Now,
	}
}

// InProgress reports whether a generation run is active.
func (s *InvoiceGenerationService) InProgress() bool {
	return s.running.Load()
}

// Generate creates the invoices of one run.
func (s *InvoiceGenerationService) Generate(ctx context.Context, req models.GenerateInvoicesRequest) (*models.GenerateInvoicesResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid generation payload")
	}
	if req.Semester != "" && !models.Contains(models.Semesters, req.Semester) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown semester "+req.Semester)
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, appErrors.Clone(appErrors.ErrGenerationBusy, "")
	}
	defer s.running.Store(false)

	students, err := s.students(ctx, req.StudentIDs)
	if err != nil {
		return nil, err
	}

	prompt := descriptionRequest(req)
	description, fallbackUsed, err := s.describe(ctx, prompt)
	if err != nil {
		return nil, err
	}

	invoices := s.draft(req, prompt, description, students)
	records := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		records = append(records, *inv)
	}
	if err := s.invoices.AppendBatch(ctx, records); err != nil {
		return nil, duplicateOr(err, "invoices", "generated invoice already exists")
	}
	s.metrics.RecordGeneration(len(invoices), fallbackUsed)
	s.cache.InvalidateDashboard(ctx)

	s.logger.Info("invoices generated",
		zap.String("invoice_type", string(req.InvoiceType)),
		zap.Int("count", len(invoices)),
		zap.Bool("fallback", fallbackUsed),
	)
	return &models.GenerateInvoicesResult{
		Count:        len(invoices),
		Description:  description,
		FallbackUsed: fallbackUsed,
		Invoices:     invoices,
	}, nil
}

func (s *InvoiceGenerationService) describe(ctx context.Context, prompt genai.DescriptionRequest) (string, bool, error) {
	if s.generator == nil {
		return s.fail(prompt, fmt.Errorf("no description generator configured"))
	}
	genCtx, cancel := context.WithTimeout(ctx, generationOpTimeout)
	defer cancel()

	description, err := s.generator.InvoiceDescription(genCtx, prompt)
	if err == nil && description == "" {
		err = genai.ErrEmptyResponse
	}
	if err != nil {
		return s.fail(prompt, err)
	}
	return description, false, nil
}

func (s *InvoiceGenerationService) fail(prompt genai.DescriptionRequest, err error) (string, bool, error) {
	s.logger.Warn("invoice description generation failed", zap.String("invoice_type", prompt.InvoiceType), zap.Bool("fallback", s.fallback), zap.Error(err))
	if !s.fallback {
		return "", false, appErrors.Wrap(err, appErrors.ErrGenerationFailed.Code, appErrors.ErrGenerationFailed.Status, appErrors.ErrGenerationFailed.Message)
	}
	return FallbackDescription(prompt), true, nil
}

func (s *InvoiceGenerationService) draft(req models.GenerateInvoicesRequest, prompt genai.DescriptionRequest, description string, students []models.UserRecord) []*models.Invoice {
	issue := req.TargetDate.UTC()
	due := issue.AddDate(0, 0, generatedDueInDays)
	typ, price := models.InvoiceSemesterFees, float64(semesterFeePrice)
	if prompt.InvoiceType == genai.KindHostelDues {
		typ, price = models.InvoiceHostelDues, float64(hostelDuePrice)
	}

	base := s.ids.Next(importer.PrefixAIInvoice)
	now := s.now().UTC()
	out := make([]*models.Invoice, 0, len(students))
	for _, student := range students {
		inv := models.NewInvoice(base+"_"+student.ID, student, issue, due, typ, models.InvoicePending, []models.InvoiceItem{{
			ID:          generatedItemID,
			Description: description,
			Quantity:    1,
			UnitPrice:   price,
		}})
		inv.CreatedAt, inv.UpdatedAt = now, now
		out = append(out, inv)
	}
	return out
}

func (s *InvoiceGenerationService) students(ctx context.Context, ids []string) ([]models.UserRecord, error) {
	if len(ids) > 0 {
		out := make([]models.UserRecord, 0, len(ids))
		for _, id := range ids {
			student, err := lookupStudent(ctx, s.users, id)
			if err != nil {
				return nil, err
			}
			out = append(out, *student)
		}
		return out, nil
	}

	all, err := s.users.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	out := make([]models.UserRecord, 0, len(all))
	for _, u := range all {
		if u.Role == models.RoleStudent {
			out = append(out, u)
		}
	}
	return out, nil
}

func descriptionRequest(req models.GenerateInvoicesRequest) genai.DescriptionRequest {
	target := req.TargetDate.UTC()
	out := genai.DescriptionRequest{InvoiceType: string(req.InvoiceType), Year: target.Year()}
	if req.InvoiceType == models.GenerateHostelDues {
		out.Month = target.Month().String()
		return out
	}
	out.Semester = firstNonEmpty(req.Semester, models.Semesters[0])
	return out
}

// FallbackDescription is the editable placeholder used when generation fails.
func FallbackDescription(req genai.DescriptionRequest) string {
	typ, period := string(models.InvoiceSemesterFees), req.Semester
	if req.InvoiceType == genai.KindHostelDues {
		typ, period = string(models.InvoiceHostelDues), req.Month
	}
	return fmt.Sprintf("Failed to generate description for %s - %s %s. Please enter manually.", typ, period, strconv.Itoa(req.Year))
}
