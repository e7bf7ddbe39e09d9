package models

import "time"

// AttendanceStatus is the day state of a faculty member.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLeave   AttendanceStatus = "Leave"
)

// FacultyAttendance is one day of faculty attendance.
type FacultyAttendance struct {
	FacultyID   string           `json:"faculty_id"`
	Date        time.Time        `json:"date"`
	Status      AttendanceStatus `json:"status"`
	HoursTaught float64          `json:"hours_taught"`
}

// AttendanceInput records or overwrites one day.
type AttendanceInput struct {
	FacultyID   string           `json:"faculty_id" validate:"required"`
	Date        time.Time        `json:"date" validate:"required"`
	Status      AttendanceStatus `json:"status" validate:"required,oneof=Present Absent Leave"`
	HoursTaught float64          `json:"hours_taught" validate:"gte=0,lte=24"`
}

// FacultyAttendanceSummary aggregates one faculty member's month.
type FacultyAttendanceSummary struct {
	FacultyID      string              `json:"faculty_id"`
	FacultyName    string              `json:"faculty_name"`
	Department     string              `json:"department"`
	Month          string              `json:"month"`
	TotalDays      int                 `json:"total_days"`
	PresentDays    int                 `json:"present_days"`
	AbsentDays     int                 `json:"absent_days"`
	LeaveDays      int                 `json:"leave_days"`
	AvgHoursTaught float64             `json:"avg_hours_taught"`
	Records        []FacultyAttendance `json:"records"`
}
