package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
	"github.com/noah-isme/educentral-admin-api/pkg/export"
)

const invoiceIssuer = "EduCentral University"

// InvoiceService manages invoices and their line items.
type InvoiceService struct {
	repo      collection[models.Invoice]
	users     collection[models.UserRecord]
	pdf       *export.InvoicePDF
	validator *validator.Validate
	logger    *zap.Logger
	ids       importer.IDGenerator
	now       func() time.Time
}

// NewInvoiceService creates an instance of InvoiceService.
func NewInvoiceService(repo collection[models.Invoice], users collection[models.UserRecord], ids importer.IDGenerator, validate *validator.Validate, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InvoiceService{
		repo:      repo,
		users:     users,
		pdf:       export.NewInvoicePDF(),
		validator: validate,
		logger:    logger,
		ids:       defaultIDs(ids),
		now:       time.Now,
	}
}

// List returns invoices matching filter, most recent issue date first.
func (s *InvoiceService) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invoices")
	}
	out := make([]models.Invoice, 0, len(all))
	for _, inv := range all {
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.Type != "" && inv.Type != filter.Type {
			continue
		}
		if !matchesSearch(filter.Search, inv.ID, inv.StudentName, inv.StudentID) {
			continue
		}
		out = append(out, inv)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate) })
	return out, nil
}

// Get returns an invoice by ID.
func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "invoice")
	}
	return inv, nil
}

// Create stores a new invoice. Totals are always derived from the items.
func (s *InvoiceService) Create(ctx context.Context, req models.InvoiceRequest) (*models.Invoice, error) {
	student, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	inv := models.NewInvoice(s.ids.Next(importer.PrefixInvoice), *student, req.IssueDate.UTC(), req.DueDate.UTC(), req.Type, req.Status, requestItems(req.Items))
	inv.CreatedAt, inv.UpdatedAt = now, now

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, duplicateOr(err, "invoice", "invoice already exists")
	}
	s.logger.Info("invoice created", zap.String("id", inv.ID), zap.String("student_id", inv.StudentID), zap.Float64("total", inv.TotalAmount))
	return inv, nil
}

// Update replaces the editable fields and items of an invoice.
func (s *InvoiceService) Update(ctx context.Context, id string, req models.InvoiceRequest) (*models.Invoice, error) {
	student, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	next := models.NewInvoice(id, *student, req.IssueDate.UTC(), req.DueDate.UTC(), req.Type, req.Status, requestItems(req.Items))
	return s.mutate(ctx, id, func(inv *models.Invoice) error {
		next.CreatedAt = inv.CreatedAt
		*inv = *next
		return nil
	})
}

// Delete removes an invoice.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "invoice")
	}
	return nil
}

// AddItem appends a line to an invoice.
func (s *InvoiceService) AddItem(ctx context.Context, id string, req models.InvoiceItemRequest) (*models.Invoice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid invoice item payload")
	}
	return s.mutate(ctx, id, func(inv *models.Invoice) error {
		inv.AddItem(models.InvoiceItem{ID: req.ID, Description: strings.TrimSpace(req.Description), Quantity: req.Quantity, UnitPrice: req.UnitPrice})
		return nil
	})
}

// UpdateItem edits one line of an invoice.
func (s *InvoiceService) UpdateItem(ctx context.Context, id, itemID string, patch models.InvoiceItemPatch) (*models.Invoice, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, validationError(err, "invalid invoice item payload")
	}
	return s.mutate(ctx, id, func(inv *models.Invoice) error {
		_, err := inv.UpdateItem(itemID, patch)
		return err
	})
}

// RemoveItem deletes one line of an invoice.
func (s *InvoiceService) RemoveItem(ctx context.Context, id, itemID string) (*models.Invoice, error) {
	return s.mutate(ctx, id, func(inv *models.Invoice) error {
		return inv.RemoveItem(itemID)
	})
}

// RenderPDF prints one invoice and returns the document with its file name.
func (s *InvoiceService) RenderPDF(ctx context.Context, id string) ([]byte, string, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc := export.InvoiceDocument{
		Issuer:      invoiceIssuer,
		Number:      inv.ID,
		StudentID:   inv.StudentID,
		StudentName: inv.StudentName,
		Type:        string(inv.Type),
		Status:      string(inv.Status),
		IssueDate:   inv.IssueDate.Format("2006-01-02"),
		DueDate:     inv.DueDate.Format("2006-01-02"),
		Total:       inv.TotalAmount,
	}
	for _, item := range inv.Items {
		doc.Lines = append(doc.Lines, export.InvoiceLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	payload, err := s.pdf.Render(doc)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render invoice")
	}
	return payload, "invoice-" + inv.ID + ".pdf", nil
}

func (s *InvoiceService) mutate(ctx context.Context, id string, fn func(*models.Invoice) error) (*models.Invoice, error) {
	inv, err := s.repo.Modify(ctx, id, func(inv *models.Invoice) error {
		if err := fn(inv); err != nil {
			return err
		}
		inv.Recalculate()
		inv.UpdatedAt = s.now().UTC()
		return nil
	})
	switch {
	case err == nil:
		return inv, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
	case errors.Is(err, models.ErrInvoiceItemNotFound):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice item not found")
	case errors.Is(err, models.ErrInvoiceNeedsItem):
		return nil, appErrors.Clone(appErrors.ErrValidation, "invoice must keep at least one item")
	default:
		return nil, writeError(err, "update", "invoice")
	}
}

func (s *InvoiceService) validateRequest(ctx context.Context, req models.InvoiceRequest) (*models.UserRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid invoice payload")
	}
	if req.DueDate.Before(req.IssueDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "due date must not be before issue date")
	}
	return lookupStudent(ctx, s.users, req.StudentID)
}

func lookupStudent(ctx context.Context, users collection[models.UserRecord], id string) (*models.UserRecord, error) {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidStudent, "student "+id+" does not exist")
		}
		return nil, loadError(err, "student")
	}
	if user.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrInvalidStudent, id+" is not a student")
	}
	return user, nil
}

func requestItems(reqs []models.InvoiceItemRequest) []models.InvoiceItem {
	items := make([]models.InvoiceItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, models.InvoiceItem{
			ID:          r.ID,
			Description: strings.TrimSpace(r.Description),
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
		})
	}
	return items
}
