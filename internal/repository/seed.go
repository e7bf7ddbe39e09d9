package repository

import (
	"time"

	"github.com/noah-isme/educentral-admin-api/internal/models"
)

// SeedMonth is the month covered by the seeded faculty attendance.
var SeedMonth = time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

var seedStamp = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func at(year int, month time.Month, d, hour, minute int) time.Time {
	return time.Date(year, month, d, hour, minute, 0, 0, time.UTC)
}

// SeedUsers returns the initial student and faculty directory.
func SeedUsers() []models.UserRecord {
	users := []models.UserRecord{
		{ID: "S001", Name: "Alice Johnson", Email: "alice@example.com", Role: models.RoleStudent, Field: "Computer Science", Batch: "2023", Section: "A"},
		{ID: "S002", Name: "Bob Williams", Email: "bob@example.com", Role: models.RoleStudent, Field: "Mechanical Engineering", Batch: "2022", Section: "B"},
		{ID: "S003", Name: "Charlie Brown", Email: "charlie@example.com", Role: models.RoleStudent, Field: "Computer Science", Batch: "2023", Section: "C"},
		{ID: "F001", Name: "Dr. Eleanor Vance", Email: "eleanor.vance@example.com", Role: models.RoleFaculty, Department: "Physics"},
		{ID: "F002", Name: "Prof. Samuel Green", Email: "samuel.green@example.com", Role: models.RoleFaculty, Department: "Mathematics"},
		{ID: "F003", Name: "Dr. Olivia Chen", Email: "olivia.chen@example.com", Role: models.RoleFaculty, Department: "Computer Science"},
	}
	for i := range users {
		users[i].CreatedAt, users[i].UpdatedAt = seedStamp, seedStamp
	}
	return users
}

// SeedCourses returns the initial course catalogue.
func SeedCourses() []models.Course {
	courses := []models.Course{
		{ID: "CSE101", Code: "CSE101", Title: "Introduction to Programming", Description: "Fundamentals of programming using Python.", Credits: 3, Department: "Computer Science"},
		{ID: "MAT202", Code: "MAT202", Title: "Linear Algebra", Description: "Matrix theory, vector spaces, and linear transformations.", Credits: 4, Department: "Mathematics"},
		{ID: "PHY105", Code: "PHY105", Title: "Classical Mechanics", Description: "Newtonian mechanics, work, energy, and momentum.", Credits: 3, Department: "Physics"},
	}
	for i := range courses {
		courses[i].CreatedAt, courses[i].UpdatedAt = seedStamp, seedStamp
	}
	return courses
}

// SeedEvents returns the initial events.
func SeedEvents() []models.Event {
	events := []models.Event{
		{ID: "EVT001", Title: "Annual Tech Fest", Description: "A week-long festival of technology and innovation.", Date: day(2024, time.August, 15), Location: "Main Auditorium", Category: "Academic"},
		{ID: "EVT002", Title: "Inter-University Debate", Description: "Debate competition between universities.", Date: day(2024, time.September, 5), Location: "Conference Hall A", Category: "Academic"},
		{ID: "EVT003", Title: "Cultural Night 2024", Description: "An evening of music, dance and drama.", Date: day(2024, time.October, 20), Location: "Open Air Theatre", Category: "Cultural"},
	}
	for i := range events {
		events[i].CreatedAt, events[i].UpdatedAt = seedStamp, seedStamp
	}
	return events
}

// SeedInvoices returns the initial invoices with derived totals.
func SeedInvoices() []models.Invoice {
	alice := models.UserRecord{ID: "S001", Name: "Alice Johnson"}
	bob := models.UserRecord{ID: "S002", Name: "Bob Williams"}
	invoices := []*models.Invoice{
		models.NewInvoice("INV001", alice, day(2024, time.January, 15), day(2024, time.January, 30), models.InvoiceSemesterFees, models.InvoicePaid,
			[]models.InvoiceItem{{ID: "item1", Description: "Semester Fees - Spring 2024", Quantity: 1, UnitPrice: 1200}}),
		models.NewInvoice("INV002", bob, day(2024, time.January, 20), day(2024, time.February, 5), models.InvoiceHostelDues, models.InvoicePending,
			[]models.InvoiceItem{{ID: "item1", Description: "Hostel Dues - January 2024", Quantity: 1, UnitPrice: 300}}),
		models.NewInvoice("INV003", alice, day(2024, time.February, 1), day(2024, time.February, 15), models.InvoiceHostelDues, models.InvoiceOverdue,
			[]models.InvoiceItem{{ID: "item1", Description: "Hostel Dues - February 2024", Quantity: 1, UnitPrice: 300}}),
	}
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		inv.CreatedAt, inv.UpdatedAt = seedStamp, seedStamp
		out = append(out, *inv)
	}
	return out
}

// SeedLeaves returns the initial leave requests.
func SeedLeaves() []models.LeaveRequest {
	approved := at(2024, time.August, 6, 10, 0)
	rejected := at(2024, time.August, 2, 9, 0)
	return []models.LeaveRequest{
		{ID: "LR001", FacultyID: "F001", FacultyName: "Dr. Eleanor Vance", Department: "Physics", StartDate: day(2024, time.August, 20), EndDate: day(2024, time.August, 22), Reason: "Personal emergency", Status: models.LeavePending, RequestedAt: at(2024, time.August, 10, 9, 0)},
		{ID: "LR002", FacultyID: "F002", FacultyName: "Prof. Samuel Green", Department: "Mathematics", StartDate: day(2024, time.September, 1), EndDate: day(2024, time.September, 5), Reason: "Attending a conference", Status: models.LeaveApproved, RequestedAt: at(2024, time.August, 5, 14, 30), DecidedAt: &approved},
		{ID: "LR003", FacultyID: "F003", FacultyName: "Dr. Olivia Chen", Department: "Computer Science", StartDate: day(2024, time.August, 25), EndDate: day(2024, time.August, 25), Reason: "Doctor's appointment", Status: models.LeavePending, RequestedAt: at(2024, time.August, 12, 11, 15)},
		{ID: "LR004", FacultyID: "F001", FacultyName: "Dr. Eleanor Vance", Department: "Physics", StartDate: day(2024, time.October, 10), EndDate: day(2024, time.October, 12), Reason: "Family vacation", Status: models.LeaveRejected, RequestedAt: at(2024, time.August, 1, 16, 0), DecidedAt: &rejected},
	}
}

// SeedAttendance returns weekday attendance of the seeded faculty for SeedMonth.
// The pattern is fixed: roughly 85% present with 2 to 5 hours, 10% absent, 5% on leave.
func SeedAttendance() []models.FacultyAttendance {
	var out []models.FacultyAttendance
	faculty := []string{"F001", "F002", "F003"}
	for d := SeedMonth; d.Month() == SeedMonth.Month(); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		for i, id := range faculty {
			bucket := (d.Day()*7 + i*3) % 20
			rec := models.FacultyAttendance{FacultyID: id, Date: d, Status: models.AttendancePresent}
			switch {
			case bucket == 19:
				rec.Status = models.AttendanceLeave
			case bucket >= 17:
				rec.Status = models.AttendanceAbsent
			default:
				rec.HoursTaught = float64(2 + (d.Day()+i)%4)
			}
			out = append(out, rec)
		}
	}
	return out
}

// AttendanceKey identifies a faculty member's day.
func AttendanceKey(a models.FacultyAttendance) string {
	return a.FacultyID + "|" + a.Date.UTC().Format("2006-01-02")
}

// CloneInvoice deep copies the item list.
func CloneInvoice(inv models.Invoice) models.Invoice {
	inv.Items = append(models.InvoiceItems(nil), inv.Items...)
	return inv
}

// CloneMessage deep copies the recipient list.
func CloneMessage(m models.Message) models.Message {
	m.Recipients = append([]models.Recipient(nil), m.Recipients...)
	return m
}
