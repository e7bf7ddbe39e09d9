package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestUserRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "role", "field", "batch", "section", "department", "created_at", "updated_at"}).
		AddRow("S001", "John Doe", "john@educentral.com", "student", "Computer Science", "2023", "A", "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE id = $1 LIMIT 1")).
		WithArgs("S001").
		WillReturnRows(rows)

	user, err := repo.FindByID(context.Background(), "S001")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "2023", user.Batch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE id = $1 LIMIT 1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &models.Course{ID: "CS101", Code: "CS101", Title: "Intro"})
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("UPDATE events SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Event{ID: "EVT1", Title: "Fair", Date: time.Now()})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryListScansItems(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "student_name", "issue_date", "due_date", "items", "total_amount", "status", "type", "created_at", "updated_at"}).
		AddRow("INV001", "S001", "John Doe", now, now, []byte(`[{"id":"item1","description":"Tuition","quantity":1,"unit_price":1500,"total":1500}]`), 1500.0, "Pending", "Semester Fees", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + invoiceColumns + " FROM invoices ORDER BY issue_date DESC, id")).
		WillReturnRows(rows)

	invoices, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	require.Len(t, invoices[0].Items, 1)
	assert.Equal(t, "Tuition", invoices[0].Items[0].Description)
	assert.Equal(t, models.InvoicePending, invoices[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM leave_requests WHERE id = $1")).
		WithArgs("LR001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "LR001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBatchCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.AppendBatch(context.Background(), []models.Course{
		{ID: "CSE101", Code: "CSE101", Title: "Programming"},
		{ID: "CSE102", Code: "CSE102", Title: "Data Structures"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO courses").WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	err := repo.AppendBatch(context.Background(), []models.Course{
		{ID: "CSE101", Code: "CSE101", Title: "Programming"},
		{ID: "CSE101", Code: "CSE101", Title: "Programming again"},
	})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBatchEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	require.NoError(t, NewUserRepository(db).AppendBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func leaveRows(status string) *sqlmock.Rows {
	start := time.Date(2024, time.August, 20, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "faculty_id", "faculty_name", "department", "start_date", "end_date", "reason", "status", "requested_at", "decided_at"}).
		AddRow("LR001", "F001", "Dr. Alan Smith", "Computer Science", start, start.AddDate(0, 0, 2), "Conference", status, start.AddDate(0, 0, -7), nil)
}

func TestLeaveRepositoryModifyLocksRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM leave_requests WHERE id = $1 LIMIT 1 FOR UPDATE")).
		WithArgs("LR001").
		WillReturnRows(leaveRows("Pending"))
	mock.ExpectExec("UPDATE leave_requests SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	decided := time.Date(2024, time.August, 14, 9, 0, 0, 0, time.UTC)
	leave, err := repo.Modify(context.Background(), "LR001", func(l *models.LeaveRequest) error {
		return l.Transition(models.LeaveApproved, decided)
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, leave.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRepositoryModifyRollsBackOnCallbackError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("LR001").WillReturnRows(leaveRows("Approved"))
	mock.ExpectRollback()

	_, err := repo.Modify(context.Background(), "LR001", func(l *models.LeaveRequest) error {
		return l.Transition(models.LeaveRejected, time.Now())
	})
	assert.ErrorIs(t, err, models.ErrInvalidLeaveTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("INV404").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := NewInvoiceRepository(db).Modify(context.Background(), "INV404", func(*models.Invoice) error { return nil })
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
