package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

// EventService manages campus events.
type EventService struct {
	repo      collection[models.Event]
	validator *validator.Validate
	logger    *zap.Logger
	ids       importer.IDGenerator
	now       func() time.Time
}

// NewEventService creates an instance of EventService.
func NewEventService(repo collection[models.Event], ids importer.IDGenerator, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{repo: repo, validator: validate, logger: logger, ids: defaultIDs(ids), now: time.Now}
}

// List returns events matching filter, most recent date first.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	out := make([]models.Event, 0, len(all))
	for _, e := range all {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if !matchesSearch(filter.Search, e.Title, e.Description, e.Location) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Get returns an event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "event")
	}
	return event, nil
}

// Create adds an event.
func (s *EventService) Create(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	event := &models.Event{
		ID:        s.ids.Next(importer.PrefixManualEvent),
		CreatedAt: now,
	}
	applyEvent(event, req, now)
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, duplicateOr(err, "event", "event already exists")
	}
	return event, nil
}

// Update modifies an existing event.
func (s *EventService) Update(ctx context.Context, id string, req models.EventRequest) (*models.Event, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyEvent(event, req, s.now().UTC())
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, writeError(err, "update", "event")
	}
	return event, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "event")
	}
	return nil
}

func (s *EventService) validate(req models.EventRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid event payload")
	}
	if !models.Contains(models.EventCategories, req.Category) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown event category "+req.Category)
	}
	return nil
}

func applyEvent(event *models.Event, req models.EventRequest, now time.Time) {
	event.Title = strings.TrimSpace(req.Title)
	event.Description = strings.TrimSpace(req.Description)
	event.Date = req.Date.UTC()
	event.Location = strings.TrimSpace(req.Location)
	event.Category = req.Category
	event.UpdatedAt = now
}
