package models

import "time"

// EnrollmentPoint is one month of the enrollment trend.
type EnrollmentPoint struct {
	Month    string `json:"month"`
	Students int    `json:"students"`
	Faculty  int    `json:"faculty"`
}

// CoursePopularity counts enrolments per programme.
type CoursePopularity struct {
	Name     string `json:"name"`
	Students int    `json:"students"`
}

// FinancialPoint is one month of income and expenses.
type FinancialPoint struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// EventAttendance counts attendees per event.
type EventAttendance struct {
	Name      string `json:"name"`
	Attendees int    `json:"attendees"`
}

// AnalyticsOverview bundles the analytics datasets.
type AnalyticsOverview struct {
	MonthlyEnrollment []EnrollmentPoint  `json:"monthly_enrollment"`
	CoursePopularity  []CoursePopularity `json:"course_popularity"`
	Financial         []FinancialPoint   `json:"financial"`
	EventAttendance   []EventAttendance  `json:"event_attendance"`
}

// DashboardSummary is computed from the live collections.
type DashboardSummary struct {
	Students          int       `json:"students"`
	Faculty           int       `json:"faculty"`
	Courses           int       `json:"courses"`
	Events            int       `json:"events"`
	UpcomingEvents    int       `json:"upcoming_events"`
	PendingInvoices   int       `json:"pending_invoices"`
	OverdueInvoices   int       `json:"overdue_invoices"`
	OutstandingAmount float64   `json:"outstanding_amount"`
	PendingLeaves     int       `json:"pending_leaves"`
	GeneratedAt       time.Time `json:"generated_at"`
}
