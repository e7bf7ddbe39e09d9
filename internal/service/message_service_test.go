package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
	"github.com/noah-isme/educentral-admin-api/pkg/jobs"
	"github.com/noah-isme/educentral-admin-api/pkg/mail"
)

type senderStub struct {
	sent []mail.Message
	err  error
}

func (s *senderStub) Send(ctx context.Context, msg mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newMessageService(queue jobDispatcher) *MessageService {
	stores := seededStores()
	svc := NewMessageService(stores.Messages, stores.Users, queue, testIDs(), nil, nil)
	svc.now = fixedClock
	return svc
}

func TestMessageServiceRecipients(t *testing.T) {
	svc := newMessageService(nil)

	all, err := svc.Recipients(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 9)
	assert.Equal(t, GroupAllStudents, all[0].ID)
	assert.Equal(t, models.RecipientGroup, all[0].Type)

	found, err := svc.Recipients(context.Background(), "olivia")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, models.RecipientFaculty, found[0].Type)
}

func TestMessageServiceSendExpandsGroups(t *testing.T) {
	queue := &queueStub{}
	svc := newMessageService(queue)

	msg, err := svc.Send(context.Background(), models.SendMessageRequest{
		RecipientIDs: []string{GroupCS2023, "S001", "F003", GroupCS2023},
		Subject:      " Lab schedule ",
		Body:         "The lab opens at 9.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lab schedule", msg.Subject)
	assert.Equal(t, "Admin", msg.Sender)
	require.Len(t, msg.Recipients, 3)
	assert.Equal(t, 3, msg.Delivered)

	queued := queue.enqueued()
	require.Len(t, queued, 1)
	delivery, ok := queued[0].Payload.(MessageDelivery)
	require.True(t, ok)
	emails := make([]string, 0, len(delivery.To))
	for _, a := range delivery.To {
		emails = append(emails, a.Email)
	}
	assert.ElementsMatch(t, []string{"alice@example.com", "charlie@example.com", "olivia.chen@example.com"}, emails)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestMessageServiceSendUnknownRecipient(t *testing.T) {
	svc := newMessageService(&queueStub{})

	_, err := svc.Send(context.Background(), models.SendMessageRequest{RecipientIDs: []string{"S404"}, Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestMessageServiceSendSurvivesQueueFailure(t *testing.T) {
	svc := newMessageService(&queueStub{err: errors.New("queue messages not started")})

	msg, err := svc.Send(context.Background(), models.SendMessageRequest{RecipientIDs: []string{GroupAllFaculty}, Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, 3, msg.Delivered)
}

func TestMessageWorkerDelivers(t *testing.T) {
	sender := &senderStub{}
	worker := NewMessageWorker(sender, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "MSG1", Payload: MessageDelivery{
		MessageID: "MSG1",
		To:        []mail.Address{{Name: "Alice", Email: "alice@example.com"}},
		Subject:   "Hello",
		Body:      "Body",
	}})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Hello", sender.sent[0].Subject)
	assert.Equal(t, "Body", sender.sent[0].Text)

	sender.err = errors.New("smtp down")
	err = worker.Handle(context.Background(), jobs.Job{ID: "MSG2", Payload: MessageDelivery{MessageID: "MSG2"}})
	assert.Error(t, err)

	assert.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "bad", Payload: "nope"}))
}
