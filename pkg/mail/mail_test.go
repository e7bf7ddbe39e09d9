package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSendgridSenderPostsMail(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewSendgridSender("key-1", "EduCentral", "no-reply@educentral.com").WithHost(srv.URL)
	err := sender.Send(context.Background(), Message{
		To:      []Address{{Name: "Alice Johnson", Email: "alice@example.com"}},
		Subject: "Exam schedule",
		Text:    "See the notice board.",
	})
	require.NoError(t, err)

	personalizations := payload["personalizations"].([]interface{})
	first := personalizations[0].(map[string]interface{})
	assert.Equal(t, "[EduCentral] Exam schedule", first["subject"])
}

func TestSendgridSenderReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	sender := NewSendgridSender("bad", "EduCentral", "no-reply@educentral.com").WithHost(srv.URL)
	err := sender.Send(context.Background(), Message{To: []Address{{Email: "a@example.com"}}, Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sender := NewLogSender(zap.New(core))

	assert.ErrorIs(t, sender.Send(context.Background(), Message{}), ErrNoRecipients)
	require.NoError(t, sender.Send(context.Background(), Message{To: []Address{{Email: "bob@example.com"}}, Subject: "Hi"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Hi", logs.All()[0].ContextMap()["subject"])
}
