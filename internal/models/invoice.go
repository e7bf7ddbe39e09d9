package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "Pending"
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

// InvoiceType classifies what an invoice charges for.
type InvoiceType string

const (
	InvoiceSemesterFees InvoiceType = "Semester Fees"
	InvoiceHostelDues   InvoiceType = "Hostel Dues"
	InvoiceExamFees     InvoiceType = "Exam Fees"
	InvoiceOther        InvoiceType = "Other"
)

var (
	InvoiceStatuses = []InvoiceStatus{InvoicePending, InvoicePaid, InvoiceOverdue}
	InvoiceTypes    = []InvoiceType{InvoiceSemesterFees, InvoiceHostelDues, InvoiceExamFees, InvoiceOther}
)

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	for _, known := range InvoiceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Valid reports whether t is a known invoice type.
func (t InvoiceType) Valid() bool {
	for _, known := range InvoiceTypes {
		if t == known {
			return true
		}
	}
	return false
}

var (
	ErrInvoiceItemNotFound = errors.New("invoice item not found")
	ErrInvoiceNeedsItem    = errors.New("invoice must keep at least one item")
)

// InvoiceItem is one billed line. Total is always derived from quantity and unit price.
type InvoiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// InvoiceItems is persisted as a JSONB array.
type InvoiceItems []InvoiceItem

// Value marshals items to JSON for persistence.
func (items InvoiceItems) Value() (driver.Value, error) {
	if items == nil {
		items = InvoiceItems{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal invoice items: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the item list.
func (items *InvoiceItems) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*items = InvoiceItems{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for InvoiceItems", value)
	}
	if len(data) == 0 {
		*items = InvoiceItems{}
		return nil
	}
	if err := json.Unmarshal(data, items); err != nil {
		return fmt.Errorf("unmarshal invoice items: %w", err)
	}
	return nil
}

// Invoice bills one student. TotalAmount always equals the sum of item totals.
type Invoice struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	StudentName string        `db:"student_name" json:"student_name"`
	IssueDate   time.Time     `db:"issue_date" json:"issue_date"`
	DueDate     time.Time     `db:"due_date" json:"due_date"`
	Items       InvoiceItems  `db:"items" json:"items"`
	TotalAmount float64       `db:"total_amount" json:"total_amount"`
	Status      InvoiceStatus `db:"status" json:"status"`
	Type        InvoiceType   `db:"type" json:"type"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// NewInvoice builds an invoice with derived totals.
func NewInvoice(id string, student UserRecord, issue, due time.Time, typ InvoiceType, status InvoiceStatus, items []InvoiceItem) *Invoice {
	inv := &Invoice{
		ID:          id,
		StudentID:   student.ID,
		StudentName: student.Name,
		IssueDate:   issue,
		DueDate:     due,
		Status:      status,
		Type:        typ,
	}
	for _, item := range items {
		inv.AddItem(item)
	}
	inv.Recalculate()
	return inv
}

// Recalculate recomputes every item total and the invoice total, rounded to cents.
func (inv *Invoice) Recalculate() {
	var total float64
	for i := range inv.Items {
		inv.Items[i].Total = roundCents(inv.Items[i].Quantity * inv.Items[i].UnitPrice)
		total += inv.Items[i].Total
	}
	inv.TotalAmount = roundCents(total)
}

// AddItem appends item, assigning an id when it has none.
func (inv *Invoice) AddItem(item InvoiceItem) InvoiceItem {
	if item.ID == "" || inv.itemIndex(item.ID) >= 0 {
		item.ID = inv.nextItemID()
	}
	inv.Items = append(inv.Items, item)
	inv.Recalculate()
	return inv.Items[len(inv.Items)-1]
}

// InvoiceItemPatch carries the editable item fields; nil fields are left untouched.
type InvoiceItemPatch struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity" validate:"omitempty,gte=0"`
	UnitPrice   *float64 `json:"unit_price" validate:"omitempty,gte=0"`
}

// UpdateItem applies patch to the item with the given id.
func (inv *Invoice) UpdateItem(id string, patch InvoiceItemPatch) (InvoiceItem, error) {
	idx := inv.itemIndex(id)
	if idx < 0 {
		return InvoiceItem{}, ErrInvoiceItemNotFound
	}
	if patch.Description != nil {
		inv.Items[idx].Description = *patch.Description
	}
	if patch.Quantity != nil {
		inv.Items[idx].Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		inv.Items[idx].UnitPrice = *patch.UnitPrice
	}
	inv.Recalculate()
	return inv.Items[idx], nil
}

// RemoveItem deletes the item with the given id. The last item cannot be removed.
func (inv *Invoice) RemoveItem(id string) error {
	idx := inv.itemIndex(id)
	if idx < 0 {
		return ErrInvoiceItemNotFound
	}
	if len(inv.Items) == 1 {
		return ErrInvoiceNeedsItem
	}
	inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
	inv.Recalculate()
	return nil
}

func (inv *Invoice) itemIndex(id string) int {
	for i, item := range inv.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (inv *Invoice) nextItemID() string {
	highest := 0
	for _, item := range inv.Items {
		if n, err := strconv.Atoi(strings.TrimPrefix(item.ID, "item")); err == nil && n > highest {
			highest = n
		}
	}
	return "item" + strconv.Itoa(highest+1)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Search string
	Status InvoiceStatus
	Type   InvoiceType
}

// InvoiceItemRequest is a client supplied line. Any total sent by clients is ignored.
type InvoiceItemRequest struct {
	ID          string  `json:"id"`
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

// InvoiceRequest is the create/update payload.
type InvoiceRequest struct {
	StudentID string               `json:"student_id" validate:"required"`
	IssueDate time.Time            `json:"issue_date" validate:"required"`
	DueDate   time.Time            `json:"due_date" validate:"required"`
	Items     []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	Status    InvoiceStatus        `json:"status" validate:"required,oneof=Pending Paid Overdue"`
	Type      InvoiceType          `json:"type" validate:"required,oneof='Semester Fees' 'Hostel Dues' 'Exam Fees' Other"`
}

// GenerationKind selects the template used for generated invoices.
type GenerationKind string

const (
	GenerateSemesterFees GenerationKind = "semesterFees"
	GenerateHostelDues   GenerationKind = "hostelDues"
)

// GenerateInvoicesRequest asks for one generated invoice per student.
type GenerateInvoicesRequest struct {
	InvoiceType GenerationKind `json:"invoice_type" validate:"required,oneof=semesterFees hostelDues"`
	Semester    string         `json:"semester"`
	TargetDate  time.Time      `json:"target_date" validate:"required"`
	StudentIDs  []string       `json:"student_ids"`
}

// GenerateInvoicesResult summarises a generation run.
type GenerateInvoicesResult struct {
	Count        int        `json:"count"`
	Description  string     `json:"description"`
	FallbackUsed bool       `json:"fallback_used"`
	Invoices     []*Invoice `json:"invoices"`
}
