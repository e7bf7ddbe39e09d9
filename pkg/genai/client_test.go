package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptIncludesInputs(t *testing.T) {
	prompt, err := Prompt(DescriptionRequest{InvoiceType: KindSemesterFees, Semester: "Fall", Year: 2024})
	require.NoError(t, err)
	assert.Contains(t, prompt, "invoice type (semesterFees)")
	assert.Contains(t, prompt, "semester (Fall)")
	assert.Contains(t, prompt, "year (2024)")
}

func TestSkipModeAnswersLocally(t *testing.T) {
	c := New("http://unused", "", "m", time.Second, true)

	got, err := c.InvoiceDescription(context.Background(), DescriptionRequest{InvoiceType: KindHostelDues, Month: "October", Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, "Hostel Dues for October 2024", got)

	got, err = c.InvoiceDescription(context.Background(), DescriptionRequest{InvoiceType: KindSemesterFees, Semester: "Spring", Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, "Semester Fees for Spring 2025", got)
}

func TestInvoiceDescriptionCallsService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "contents")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":" \"Semester Fees for Fall 2024\"\n"}]}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "secret", "gemini-test", time.Second, false)
	got, err := c.InvoiceDescription(context.Background(), DescriptionRequest{InvoiceType: KindSemesterFees, Semester: "Fall", Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, "Semester Fees for Fall 2024", got)
}

func TestInvoiceDescriptionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("x-goog-api-key") == "empty" {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "k", "m", time.Second, false).InvoiceDescription(context.Background(), DescriptionRequest{InvoiceType: KindHostelDues})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = New(srv.URL, "empty", "m", time.Second, false).InvoiceDescription(context.Background(), DescriptionRequest{InvoiceType: KindHostelDues})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = New(srv.URL, "", "m", time.Second, false).InvoiceDescription(context.Background(), DescriptionRequest{})
	assert.Error(t, err)
}
