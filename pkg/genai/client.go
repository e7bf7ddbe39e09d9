// Package genai calls a hosted generative text model to draft invoice descriptions.
package genai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"text/template"
	"time"

	googleai "google.golang.org/genai"
)

// Invoice kinds understood by the prompt.
const (
	KindSemesterFees = "semesterFees"
	KindHostelDues   = "hostelDues"
)

// ErrEmptyResponse is returned when the model answers without any text candidate.
var ErrEmptyResponse = errors.New("generation returned no text")

var promptTemplate = template.Must(template.New("invoice").Parse(
	`You are an expert at generating descriptions for university invoices.
Based on the invoice type ({{.InvoiceType}}), semester ({{.Semester}}), month ({{.Month}}), and year ({{.Year}}), create a concise and informative description for the invoice.

If the invoice type is 'semesterFees', include the semester and year in the description.
If the invoice type is 'hostelDues', include the month and year in the description.

Example for semester fees: "Semester Fees for Fall 2024"
Example for hostel dues: "Hostel Dues for October 2024"

Description:`))

// DescriptionRequest carries the inputs of one invoice description prompt.
type DescriptionRequest struct {
	InvoiceType string
	Semester    string
	Month       string
	Year        int
}

// Client drafts descriptions through the Gemini API SDK. The SDK client is built on
// first use so a missing key surfaces as a generation failure rather than a boot error.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
	// Skip answers locally with the example phrasing instead of calling out.
	Skip bool

	once   sync.Once
	models *googleai.Models
	err    error
}

// New creates a client with the given request timeout.
func New(baseURL, apiKey, model string, timeout time.Duration, skip bool) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Skip:    skip,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Prompt renders the invoice description prompt for req.
func Prompt(req DescriptionRequest) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// InvoiceDescription asks the model for a one line invoice description.
func (c *Client) InvoiceDescription(ctx context.Context, req DescriptionRequest) (string, error) {
	if c.Skip {
		return localDescription(req), nil
	}
	if c.APIKey == "" {
		return "", fmt.Errorf("generation api key not configured")
	}

	prompt, err := Prompt(req)
	if err != nil {
		return "", err
	}
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return cleanDescription(text), nil
}

func (c *Client) connect(ctx context.Context) (*googleai.Models, error) {
	c.once.Do(func() {
		client, err := googleai.NewClient(ctx, &googleai.ClientConfig{
			APIKey:      c.APIKey,
			Backend:     googleai.BackendGeminiAPI,
			HTTPClient:  c.HTTP,
			HTTPOptions: googleai.HTTPOptions{BaseURL: c.BaseURL},
		})
		if err != nil {
			c.err = fmt.Errorf("init generation client: %w", err)
			return
		}
		c.models = client.Models
	})
	return c.models, c.err
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	models, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	resp, err := models.GenerateContent(ctx, c.Model, googleai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, p := range candidate.Content.Parts {
			if p != nil && strings.TrimSpace(p.Text) != "" {
				return p.Text, nil
			}
		}
	}
	return "", ErrEmptyResponse
}

func cleanDescription(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimPrefix(text, "Description:")
	return strings.Trim(strings.TrimSpace(text), `"`)
}

func localDescription(req DescriptionRequest) string {
	if req.InvoiceType == KindHostelDues {
		return fmt.Sprintf("Hostel Dues for %s %d", req.Month, req.Year)
	}
	return fmt.Sprintf("Semester Fees for %s %d", req.Semester, req.Year)
}
