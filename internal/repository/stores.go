package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/educentral-admin-api/internal/models"
)

// Collection is the record contract shared by the memory and Postgres tables.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	Modify(ctx context.Context, id string, fn func(*T) error) (*T, error)
	Delete(ctx context.Context, id string) error
	AppendBatch(ctx context.Context, records []T) error
}

// Stores bundles every collection the API reads and writes.
type Stores struct {
	Users      Collection[models.UserRecord]
	Courses    Collection[models.Course]
	Events     Collection[models.Event]
	Invoices   Collection[models.Invoice]
	Leaves     Collection[models.LeaveRequest]
	Messages   *MemoryStore[models.Message]
	Attendance *MemoryStore[models.FacultyAttendance]
	ExportJobs *MemoryStore[models.ExportJob]
	Static     *StaticRepository
}

// NewMemoryStores returns process local collections, optionally loaded with the
// demo dataset.
func NewMemoryStores(seed bool) *Stores {
	var (
		users      []models.UserRecord
		courses    []models.Course
		events     []models.Event
		invoices   []models.Invoice
		leaves     []models.LeaveRequest
		attendance []models.FacultyAttendance
	)
	if seed {
		users, courses, events = SeedUsers(), SeedCourses(), SeedEvents()
		invoices, leaves, attendance = SeedInvoices(), SeedLeaves(), SeedAttendance()
	}

	return &Stores{
		Users:      NewMemoryStore(func(u models.UserRecord) string { return u.ID }, nil, users...),
		Courses:    NewMemoryStore(func(c models.Course) string { return c.ID }, nil, courses...),
		Events:     NewMemoryStore(func(e models.Event) string { return e.ID }, nil, events...),
		Invoices:   NewMemoryStore(func(i models.Invoice) string { return i.ID }, CloneInvoice, invoices...),
		Leaves:     NewMemoryStore(func(l models.LeaveRequest) string { return l.ID }, cloneLeave, leaves...),
		Messages:   NewMemoryStore(func(m models.Message) string { return m.ID }, CloneMessage),
		Attendance: NewMemoryStore(AttendanceKey, nil, attendance...),
		ExportJobs: newExportJobStore(),
		Static:     NewStaticRepository(),
	}
}

// NewPostgresStores backs the core collections with Postgres. Messages, attendance
// and export jobs stay process local; seed loads demo attendance only.
func NewPostgresStores(db *sqlx.DB, seed bool) *Stores {
	stores := NewMemoryStores(false)
	stores.Users = NewUserRepository(db)
	stores.Courses = NewCourseRepository(db)
	stores.Events = NewEventRepository(db)
	stores.Invoices = NewInvoiceRepository(db)
	stores.Leaves = NewLeaveRepository(db)
	if seed {
		stores.Attendance = NewMemoryStore(AttendanceKey, nil, SeedAttendance()...)
	}
	return stores
}

func newExportJobStore() *MemoryStore[models.ExportJob] {
	return NewMemoryStore(func(j models.ExportJob) string { return j.ID }, cloneExportJob)
}

func cloneLeave(l models.LeaveRequest) models.LeaveRequest {
	if l.DecidedAt != nil {
		t := *l.DecidedAt
		l.DecidedAt = &t
	}
	return l
}

func cloneExportJob(j models.ExportJob) models.ExportJob {
	if j.ResultURL != nil {
		v := *j.ResultURL
		j.ResultURL = &v
	}
	if j.FinishedAt != nil {
		v := *j.FinishedAt
		j.FinishedAt = &v
	}
	if j.ErrorMessage != nil {
		v := *j.ErrorMessage
		j.ErrorMessage = &v
	}
	return j
}
