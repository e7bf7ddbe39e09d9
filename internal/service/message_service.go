package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
	"github.com/noah-isme/educentral-admin-api/pkg/jobs"
	"github.com/noah-isme/educentral-admin-api/pkg/mail"
)

const (
	messageSender  = "Admin"
	messageJobType = "message_delivery"
)

// Predefined recipient groups.
const (
	GroupAllStudents = "group_all_students"
	GroupAllFaculty  = "group_all_faculty"
	GroupCS2023      = "group_cs_2023"
)

type recipientGroup struct {
	recipient models.Recipient
	member    func(models.UserRecord) bool
}

var recipientGroups = []recipientGroup{
	{
		recipient: models.Recipient{ID: GroupAllStudents, Name: "All Students", Type: models.RecipientGroup},
		member:    func(u models.UserRecord) bool { return u.Role == models.RoleStudent },
	},
	{
		recipient: models.Recipient{ID: GroupAllFaculty, Name: "All Faculty", Type: models.RecipientGroup},
		member:    func(u models.UserRecord) bool { return u.Role == models.RoleFaculty },
	},
	{
		recipient: models.Recipient{ID: GroupCS2023, Name: "Computer Science - Batch 2023", Type: models.RecipientGroup},
		member: func(u models.UserRecord) bool {
			return u.Role == models.RoleStudent && u.Field == "Computer Science" && u.Batch == "2023"
		},
	},
}

type messageStore interface {
	List(ctx context.Context) ([]models.Message, error)
	Create(ctx context.Context, record *models.Message) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// MessageDelivery is the queued payload of one message.
type MessageDelivery struct {
	MessageID string
	To        []mail.Address
	Subject   string
	Body      string
}

// MessageService sends broadcast messages to the directory.
type MessageService struct {
	repo      messageStore
	users     collection[models.UserRecord]
	queue     jobDispatcher
	validator *validator.Validate
	logger    *zap.Logger
	ids       importer.IDGenerator
	now       func() time.Time
}

// NewMessageService creates an instance of MessageService. A nil queue stores
// messages without delivering them.
func NewMessageService(repo messageStore, users collection[models.UserRecord], queue jobDispatcher, ids importer.IDGenerator, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MessageService{repo: repo, users: users, queue: queue, validator: validate, logger: logger, ids: defaultIDs(ids), now: time.Now}
}

// Recipients lists the groups followed by every user whose name matches search.
func (s *MessageService) Recipients(ctx context.Context, search string) ([]models.Recipient, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recipients")
	}
	out := make([]models.Recipient, 0, len(recipientGroups)+len(users))
	for _, g := range recipientGroups {
		if matchesSearch(search, g.recipient.Name) {
			out = append(out, g.recipient)
		}
	}
	for _, u := range users {
		if matchesSearch(search, u.Name) {
			out = append(out, userRecipient(u))
		}
	}
	return out, nil
}

// List returns sent messages, newest first.
func (s *MessageService) List(ctx context.Context) ([]models.Message, error) {
	msgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].SentAt.After(msgs[j].SentAt) })
	return msgs, nil
}

// Send stores a message and queues delivery to every member address.
func (s *MessageService) Send(ctx context.Context, req models.SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid message payload")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve recipients")
	}
	recipients, addresses, err := resolveRecipients(req.RecipientIDs, users)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:         s.ids.Next(importer.PrefixMessage),
		Recipients: recipients,
		Subject:    strings.TrimSpace(req.Subject),
		Body:       req.Body,
		SentAt:     s.now().UTC(),
		Sender:     messageSender,
		Delivered:  len(addresses),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store message")
	}

	if s.queue != nil && len(addresses) > 0 {
		delivery := MessageDelivery{MessageID: msg.ID, To: addresses, Subject: msg.Subject, Body: msg.Body}
		if err := s.queue.Enqueue(jobs.Job{ID: msg.ID, Type: messageJobType, Payload: delivery}); err != nil {
			s.logger.Warn("failed to enqueue message delivery", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}
	s.logger.Info("message sent", zap.String("id", msg.ID), zap.Int("recipients", len(recipients)), zap.Int("addresses", len(addresses)))
	return msg, nil
}

func resolveRecipients(ids []string, users []models.UserRecord) ([]models.Recipient, []mail.Address, error) {
	byID := make(map[string]models.UserRecord, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	var (
		recipients []models.Recipient
		addresses  []mail.Address
		seenRcpt   = make(map[string]struct{})
		seenMail   = make(map[string]struct{})
	)
	addUser := func(u models.UserRecord) {
		key := strings.ToLower(u.Email)
		if key == "" {
			return
		}
		if _, ok := seenMail[key]; ok {
			return
		}
		seenMail[key] = struct{}{}
		addresses = append(addresses, mail.Address{Name: u.Name, Email: u.Email})
	}

	for _, id := range ids {
		if _, ok := seenRcpt[id]; ok {
			continue
		}
		seenRcpt[id] = struct{}{}

		if g, ok := findGroup(id); ok {
			recipients = append(recipients, g.recipient)
			for _, u := range users {
				if g.member(u) {
					addUser(u)
				}
			}
			continue
		}
		u, ok := byID[id]
		if !ok {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown recipient %s", id))
		}
		recipients = append(recipients, userRecipient(u))
		addUser(u)
	}
	return recipients, addresses, nil
}

func findGroup(id string) (recipientGroup, bool) {
	for _, g := range recipientGroups {
		if g.recipient.ID == id {
			return g, true
		}
	}
	return recipientGroup{}, false
}

func userRecipient(u models.UserRecord) models.Recipient {
	typ := models.RecipientStudent
	if u.Role == models.RoleFaculty {
		typ = models.RecipientFaculty
	}
	return models.Recipient{ID: u.ID, Name: u.Name, Type: typ}
}

// MessageWorker delivers queued messages through a mail sender.
type MessageWorker struct {
	sender mail.Sender
	logger *zap.Logger
}

// NewMessageWorker constructs a worker.
func NewMessageWorker(sender mail.Sender, logger *zap.Logger) *MessageWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageWorker{sender: sender, logger: logger}
}

// Handle processes a queue job. Returned errors are retried by the queue.
func (w *MessageWorker) Handle(ctx context.Context, job jobs.Job) error {
	delivery, ok := job.Payload.(MessageDelivery)
	if !ok {
		w.logger.Error("unexpected message payload", zap.String("job_id", job.ID), zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	err := w.sender.Send(ctx, mail.Message{To: delivery.To, Subject: delivery.Subject, Text: delivery.Body})
	if err != nil {
		return fmt.Errorf("deliver message %s: %w", delivery.MessageID, err)
	}
	w.logger.Info("message delivered", zap.String("message_id", delivery.MessageID), zap.Int("attempt", job.Attempt), zap.Int("addresses", len(delivery.To)))
	return nil
}
