package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/educentral-admin-api/internal/models"
)

const userColumns = `id, name, email, role, field, batch, section, department, created_at, updated_at`

// UserRepository stores students and faculty in Postgres.
type UserRepository struct {
	sqlTable[models.UserRecord]
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{sqlTable[models.UserRecord]{
		db:         db,
		noun:       "user",
		selectAll:  `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`,
		selectByID: `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`,
		insert:     `INSERT INTO users (` + userColumns + `) VALUES (:id, :name, :email, :role, :field, :batch, :section, :department, :created_at, :updated_at)`,
		update:     `UPDATE users SET name = :name, email = :email, role = :role, field = :field, batch = :batch, section = :section, department = :department, updated_at = :updated_at WHERE id = :id`,
		remove:     `DELETE FROM users WHERE id = $1`,
	}}
}

const courseColumns = `id, code, title, description, credits, department, created_at, updated_at`

// CourseRepository stores the course catalogue in Postgres.
type CourseRepository struct {
	sqlTable[models.Course]
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{sqlTable[models.Course]{
		db:         db,
		noun:       "course",
		selectAll:  `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at, id`,
		selectByID: `SELECT ` + courseColumns + ` FROM courses WHERE id = $1 LIMIT 1`,
		insert:     `INSERT INTO courses (` + courseColumns + `) VALUES (:id, :code, :title, :description, :credits, :department, :created_at, :updated_at)`,
		update:     `UPDATE courses SET code = :code, title = :title, description = :description, credits = :credits, department = :department, updated_at = :updated_at WHERE id = :id`,
		remove:     `DELETE FROM courses WHERE id = $1`,
	}}
}

const eventColumns = `id, title, description, date, location, category, created_at, updated_at`

// EventRepository stores events in Postgres.
type EventRepository struct {
	sqlTable[models.Event]
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{sqlTable[models.Event]{
		db:         db,
		noun:       "event",
		selectAll:  `SELECT ` + eventColumns + ` FROM events ORDER BY created_at, id`,
		selectByID: `SELECT ` + eventColumns + ` FROM events WHERE id = $1 LIMIT 1`,
		insert:     `INSERT INTO events (` + eventColumns + `) VALUES (:id, :title, :description, :date, :location, :category, :created_at, :updated_at)`,
		update:     `UPDATE events SET title = :title, description = :description, date = :date, location = :location, category = :category, updated_at = :updated_at WHERE id = :id`,
		remove:     `DELETE FROM events WHERE id = $1`,
	}}
}

const invoiceColumns = `id, student_id, student_name, issue_date, due_date, items, total_amount, status, type, created_at, updated_at`

// InvoiceRepository stores invoices in Postgres with items as JSONB.
type InvoiceRepository struct {
	sqlTable[models.Invoice]
}

// NewInvoiceRepository creates a new instance of InvoiceRepository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{sqlTable[models.Invoice]{
		db:         db,
		noun:       "invoice",
		selectAll:  `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY issue_date DESC, id`,
		selectByID: `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 LIMIT 1`,
		insert:     `INSERT INTO invoices (` + invoiceColumns + `) VALUES (:id, :student_id, :student_name, :issue_date, :due_date, :items, :total_amount, :status, :type, :created_at, :updated_at)`,
		update:     `UPDATE invoices SET student_id = :student_id, student_name = :student_name, issue_date = :issue_date, due_date = :due_date, items = :items, total_amount = :total_amount, status = :status, type = :type, updated_at = :updated_at WHERE id = :id`,
		remove:     `DELETE FROM invoices WHERE id = $1`,
	}}
}

const leaveColumns = `id, faculty_id, faculty_name, department, start_date, end_date, reason, status, requested_at, decided_at`

// LeaveRepository stores leave requests in Postgres.
type LeaveRepository struct {
	sqlTable[models.LeaveRequest]
}

// NewLeaveRepository creates a new instance of LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{sqlTable[models.LeaveRequest]{
		db:         db,
		noun:       "leave request",
		selectAll:  `SELECT ` + leaveColumns + ` FROM leave_requests ORDER BY requested_at DESC, id`,
		selectByID: `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1 LIMIT 1`,
		insert:     `INSERT INTO leave_requests (` + leaveColumns + `) VALUES (:id, :faculty_id, :faculty_name, :department, :start_date, :end_date, :reason, :status, :requested_at, :decided_at)`,
		update:     `UPDATE leave_requests SET faculty_id = :faculty_id, faculty_name = :faculty_name, department = :department, start_date = :start_date, end_date = :end_date, reason = :reason, status = :status, decided_at = :decided_at WHERE id = :id`,
		remove:     `DELETE FROM leave_requests WHERE id = $1`,
	}}
}
