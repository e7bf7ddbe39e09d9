package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/models"
	appErrors "github.com/noah-isme/educentral-admin-api/pkg/errors"
)

func newInvoiceService() *InvoiceService {
	stores := seededStores()
	svc := NewInvoiceService(stores.Invoices, stores.Users, testIDs(), nil, nil)
	svc.now = fixedClock
	return svc
}

func invoiceRequest(studentID string) models.InvoiceRequest {
	return models.InvoiceRequest{
		StudentID: studentID,
		IssueDate: time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2024, time.August, 15, 0, 0, 0, 0, time.UTC),
		Status:    models.InvoicePending,
		Type:      models.InvoiceExamFees,
		Items: []models.InvoiceItemRequest{
			{Description: "Exam registration", Quantity: 2, UnitPrice: 100},
			{Description: "Lab fee", Quantity: 1, UnitPrice: 50},
		},
	}
}

func TestInvoiceServiceCreateDerivesTotals(t *testing.T) {
	svc := newInvoiceService()

	inv, err := svc.Create(context.Background(), invoiceRequest("S001"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(inv.ID, "INV"))
	assert.Equal(t, "Alice Johnson", inv.StudentName)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "item1", inv.Items[0].ID)
	assert.Equal(t, "item2", inv.Items[1].ID)
	assert.Equal(t, 200.0, inv.Items[0].Total)
	assert.Equal(t, 250.0, inv.TotalAmount)

	stored, err := svc.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, stored.TotalAmount)
}

func TestInvoiceServiceCreateRejectsUnknownStudent(t *testing.T) {
	svc := newInvoiceService()

	_, err := svc.Create(context.Background(), invoiceRequest("S999"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidStudent))

	_, err = svc.Create(context.Background(), invoiceRequest("F001"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidStudent))
}

func TestInvoiceServiceCreateRejectsDueBeforeIssue(t *testing.T) {
	svc := newInvoiceService()
	req := invoiceRequest("S001")
	req.DueDate = req.IssueDate.AddDate(0, 0, -1)

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestInvoiceServiceItemOperations(t *testing.T) {
	svc := newInvoiceService()
	ctx := context.Background()

	inv, err := svc.AddItem(ctx, "INV002", models.InvoiceItemRequest{Description: "Laundry", Quantity: 2, UnitPrice: 12.5})
	require.NoError(t, err)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "item2", inv.Items[1].ID)
	assert.Equal(t, 325.0, inv.TotalAmount)

	qty := 3.0
	inv, err = svc.UpdateItem(ctx, "INV002", "item2", models.InvoiceItemPatch{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 37.5, inv.Items[1].Total)
	assert.Equal(t, 337.5, inv.TotalAmount)

	inv, err = svc.RemoveItem(ctx, "INV002", "item1")
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, 37.5, inv.TotalAmount)

	_, err = svc.RemoveItem(ctx, "INV002", "item2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.UpdateItem(ctx, "INV002", "missing", models.InvoiceItemPatch{Quantity: &qty})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestInvoiceServiceListFilters(t *testing.T) {
	svc := newInvoiceService()

	hostel, err := svc.List(context.Background(), models.InvoiceFilter{Type: models.InvoiceHostelDues})
	require.NoError(t, err)
	require.Len(t, hostel, 2)
	assert.Equal(t, "INV003", hostel[0].ID)

	paid, err := svc.List(context.Background(), models.InvoiceFilter{Status: models.InvoicePaid, Search: "alice"})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "INV001", paid[0].ID)
}

func TestInvoiceServiceRenderPDF(t *testing.T) {
	svc := newInvoiceService()

	payload, filename, err := svc.RenderPDF(context.Background(), "INV001")
	require.NoError(t, err)
	assert.Equal(t, "invoice-INV001.pdf", filename)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))

	_, _, err = svc.RenderPDF(context.Background(), "INV404")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestInvoiceServiceConcurrentItemAddsKeepBoth(t *testing.T) {
	stores := seededStores()
	svc := NewInvoiceService(slowReads[models.Invoice]{stores.Invoices}, stores.Users, testIDs(), nil, nil)
	ctx := context.Background()

	var errA, errB error
	race(
		func() {
			_, errA = svc.AddItem(ctx, "INV002", models.InvoiceItemRequest{Description: "Laundry", Quantity: 1, UnitPrice: 20})
		},
		func() {
			_, errB = svc.AddItem(ctx, "INV002", models.InvoiceItemRequest{Description: "Mess", Quantity: 2, UnitPrice: 40})
		},
	)
	require.NoError(t, errA)
	require.NoError(t, errB)

	inv, err := svc.Get(ctx, "INV002")
	require.NoError(t, err)
	assert.Len(t, inv.Items, 3)
	assert.Equal(t, 400.0, inv.TotalAmount)
}

func TestInvoiceServiceUpdateMissing(t *testing.T) {
	_, err := newInvoiceService().Update(context.Background(), "INV404", invoiceRequest("S001"))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
