package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoiceDerivesTotals(t *testing.T) {
	inv := NewInvoice("INV9", UserRecord{ID: "S001", Name: "Alice Johnson"}, time.Now(), time.Now(), InvoiceOther, InvoicePending, []InvoiceItem{
		{Description: "Lab fee", Quantity: 2, UnitPrice: 100, Total: 9999},
		{Description: "Library", Quantity: 1, UnitPrice: 50},
	})

	assert.Equal(t, 250.0, inv.TotalAmount)
	assert.Equal(t, 200.0, inv.Items[0].Total)
	assert.Equal(t, "item1", inv.Items[0].ID)
	assert.Equal(t, "item2", inv.Items[1].ID)
	assert.Equal(t, "Alice Johnson", inv.StudentName)
}

func TestInvoiceItemOperationsRecalculate(t *testing.T) {
	inv := NewInvoice("INV9", UserRecord{ID: "S001"}, time.Now(), time.Now(), InvoiceOther, InvoicePending, []InvoiceItem{
		{Description: "A", Quantity: 1, UnitPrice: 10},
	})

	added := inv.AddItem(InvoiceItem{Description: "B", Quantity: 3, UnitPrice: 0.1})
	assert.Equal(t, "item2", added.ID)
	assert.Equal(t, 0.3, added.Total)
	assert.Equal(t, 10.3, inv.TotalAmount)

	qty := 4.0
	updated, err := inv.UpdateItem("item1", InvoiceItemPatch{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 40.0, updated.Total)
	assert.Equal(t, 40.3, inv.TotalAmount)

	_, err = inv.UpdateItem("missing", InvoiceItemPatch{})
	assert.ErrorIs(t, err, ErrInvoiceItemNotFound)

	require.NoError(t, inv.RemoveItem("item2"))
	assert.Equal(t, 40.0, inv.TotalAmount)
	assert.ErrorIs(t, inv.RemoveItem("item1"), ErrInvoiceNeedsItem)
}

func TestInvoiceItemsScan(t *testing.T) {
	var items InvoiceItems
	require.NoError(t, items.Scan([]byte(`[{"id":"item1","description":"Fees","quantity":1,"unit_price":1200,"total":1200}]`)))
	require.Len(t, items, 1)
	assert.Equal(t, 1200.0, items[0].UnitPrice)

	require.NoError(t, items.Scan(nil))
	assert.Empty(t, items)
	assert.Error(t, items.Scan(42))

	value, err := InvoiceItems(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value)
}

func TestLeaveTransitions(t *testing.T) {
	at := time.Date(2024, 8, 11, 10, 0, 0, 0, time.UTC)

	approved := &LeaveRequest{Status: LeavePending}
	require.NoError(t, approved.Transition(LeaveApproved, at))
	assert.Equal(t, LeaveApproved, approved.Status)
	require.NotNil(t, approved.DecidedAt)
	assert.Equal(t, at, *approved.DecidedAt)

	assert.ErrorIs(t, approved.Transition(LeaveRejected, at), ErrInvalidLeaveTransition)
	assert.ErrorIs(t, approved.Transition(LeaveApproved, at), ErrInvalidLeaveTransition)

	pending := &LeaveRequest{Status: LeavePending}
	assert.ErrorIs(t, pending.Transition(LeavePending, at), ErrInvalidLeaveTransition)
	assert.Nil(t, pending.DecidedAt)
}

func TestCohortFilter(t *testing.T) {
	f := CohortFilter{Fields: []string{"Computer Science"}, Sections: []string{"A", "B"}}
	assert.True(t, f.Matches("Computer Science", "2023", "A"))
	assert.False(t, f.Matches("Computer Science", "2023", "C"))
	assert.False(t, f.Matches("Physics", "2023", "A"))
	assert.True(t, CohortFilter{}.Matches("x", "y", "z"))
}

func TestInvoiceEnumsValid(t *testing.T) {
	assert.True(t, InvoiceOverdue.Valid())
	assert.False(t, InvoiceStatus("pending").Valid())
	assert.True(t, InvoiceType("Hostel Dues").Valid())
	assert.False(t, InvoiceType("Library").Valid())
}
