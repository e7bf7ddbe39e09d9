package models

import (
	"errors"
	"time"
)

// LeaveStatus is the decision state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

// ErrInvalidLeaveTransition is returned for any move other than Pending to Approved or Rejected.
var ErrInvalidLeaveTransition = errors.New("invalid leave request transition")

// LeaveRequest is a faculty absence request.
type LeaveRequest struct {
	ID          string      `db:"id" json:"id"`
	FacultyID   string      `db:"faculty_id" json:"faculty_id"`
	FacultyName string      `db:"faculty_name" json:"faculty_name"`
	Department  string      `db:"department" json:"department"`
	StartDate   time.Time   `db:"start_date" json:"start_date"`
	EndDate     time.Time   `db:"end_date" json:"end_date"`
	Reason      string      `db:"reason" json:"reason"`
	Status      LeaveStatus `db:"status" json:"status"`
	RequestedAt time.Time   `db:"requested_at" json:"requested_at"`
	DecidedAt   *time.Time  `db:"decided_at" json:"decided_at,omitempty"`
}

// Transition moves a pending request to a terminal decision.
func (l *LeaveRequest) Transition(to LeaveStatus, at time.Time) error {
	if l.Status != LeavePending || (to != LeaveApproved && to != LeaveRejected) {
		return ErrInvalidLeaveTransition
	}
	l.Status = to
	decided := at.UTC()
	l.DecidedAt = &decided
	return nil
}

// LeaveFilter narrows leave listings.
type LeaveFilter struct {
	Status     LeaveStatus
	Department string
}

// LeaveRequestInput is the create payload.
type LeaveRequestInput struct {
	FacultyID string    `json:"faculty_id" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Reason    string    `json:"reason" validate:"required"`
}
