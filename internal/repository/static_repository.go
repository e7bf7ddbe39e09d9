package repository

import (
	"context"

	"github.com/noah-isme/educentral-admin-api/internal/models"
)

// StaticRepository serves the fixed analytics and timetable datasets.
type StaticRepository struct{}

// NewStaticRepository constructs the repository.
func NewStaticRepository() *StaticRepository {
	return &StaticRepository{}
}

// Analytics returns the analytics datasets.
func (r *StaticRepository) Analytics(ctx context.Context) (*models.AnalyticsOverview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &models.AnalyticsOverview{
		MonthlyEnrollment: []models.EnrollmentPoint{
			{Month: "Jan", Students: 50, Faculty: 5},
			{Month: "Feb", Students: 55, Faculty: 6},
			{Month: "Mar", Students: 60, Faculty: 5},
			{Month: "Apr", Students: 65, Faculty: 7},
			{Month: "May", Students: 70, Faculty: 6},
			{Month: "Jun", Students: 75, Faculty: 8},
		},
		CoursePopularity: []models.CoursePopularity{
			{Name: "Computer Science", Students: 350},
			{Name: "Business Admin", Students: 280},
			{Name: "Mechanical Eng.", Students: 220},
			{Name: "Electrical Eng.", Students: 180},
			{Name: "Civil Eng.", Students: 150},
		},
		Financial: []models.FinancialPoint{
			{Month: "Jan", Income: 40000, Expenses: 22000},
			{Month: "Feb", Income: 45000, Expenses: 25000},
			{Month: "Mar", Income: 50000, Expenses: 28000},
			{Month: "Apr", Income: 48000, Expenses: 26000},
			{Month: "May", Income: 55000, Expenses: 30000},
			{Month: "Jun", Income: 60000, Expenses: 32000},
		},
		EventAttendance: []models.EventAttendance{
			{Name: "Tech Fest", Attendees: 500},
			{Name: "Cultural Night", Attendees: 350},
			{Name: "Sports Meet", Attendees: 420},
			{Name: "Guest Lecture", Attendees: 150},
			{Name: "Workshop AI", Attendees: 80},
		},
	}, nil
}

// StudentTimetable returns every scheduled class.
func (r *StaticRepository) StudentTimetable(ctx context.Context) ([]models.TimetableEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.TimetableEntry{
		{ID: "tt1", Day: "Monday", Time: "09:00-10:00", CourseName: "Intro to Prog", CourseCode: "CS101", Instructor: "Dr. Smith", Room: "R101", Field: "Computer Science", Batch: "2023", Section: "A"},
		{ID: "tt2", Day: "Monday", Time: "10:00-11:00", CourseName: "Thermodynamics", CourseCode: "ME202", Instructor: "Dr. Jones", Room: "R102", Field: "Mechanical Engineering", Batch: "2022", Section: "B"},
		{ID: "tt5", Day: "Monday", Time: "11:00-12:00", CourseName: "Intro to Prog Lab", CourseCode: "CS101L", Instructor: "Dr. Smith", Room: "L10", Field: "Computer Science", Batch: "2023", Section: "A"},
		{ID: "tt3", Day: "Tuesday", Time: "11:00-12:00", CourseName: "Circuit Theory", CourseCode: "EE305", Instructor: "Dr. Brown", Room: "R103", Field: "Electrical Engineering", Batch: "2023", Section: "C"},
		{ID: "tt4", Day: "Wednesday", Time: "14:00-15:00", CourseName: "Mgmt Principles", CourseCode: "BA101", Instructor: "Prof. Green", Room: "R104", Field: "Business Administration", Batch: "2024", Section: "A"},
		{ID: "tt6", Day: "Thursday", Time: "09:00-10:00", CourseName: "Data Structures", CourseCode: "CS201", Instructor: "Dr. Smith", Room: "R201", Field: "Computer Science", Batch: "2023", Section: "A"},
	}, nil
}

// FacultyTimetable returns every class taught by faculty.
func (r *StaticRepository) FacultyTimetable(ctx context.Context) ([]models.FacultyTimetableEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.FacultyTimetableEntry{
		{ID: "ftt1", FacultyID: "F001", Day: "Monday", Time: "09:00-10:00", CourseName: "Intro to Prog", CourseCode: "CS101", Room: "R101", ClassGroup: "CS 2023 A"},
		{ID: "ftt2", FacultyID: "F001", Day: "Monday", Time: "11:00-12:00", CourseName: "Intro to Prog Lab", CourseCode: "CS101L", Room: "L10", ClassGroup: "CS 2023 A"},
		{ID: "ftt3", FacultyID: "F001", Day: "Tuesday", Time: "14:00-15:00", CourseName: "Advanced Algo", CourseCode: "CS301", Room: "R205", ClassGroup: "CS 2022 B"},
		{ID: "ftt4", FacultyID: "F002", Day: "Wednesday", Time: "10:00-11:00", CourseName: "Thermodynamics", CourseCode: "ME202", Room: "R102", ClassGroup: "ME 2022 B"},
	}, nil
}

// CourseAttendance returns attendance aggregates per course and cohort.
func (r *StaticRepository) CourseAttendance(ctx context.Context) ([]models.CourseAttendance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.CourseAttendance{
		{CourseCode: "CS101", CourseName: "Intro to Prog", Present: 45, Absent: 5, Total: 50, Field: "Computer Science", Batch: "2023", Section: "A"},
		{CourseCode: "ME202", CourseName: "Thermodynamics", Present: 40, Absent: 10, Total: 50, Field: "Mechanical Engineering", Batch: "2022", Section: "B"},
		{CourseCode: "EE305", CourseName: "Circuit Theory", Present: 35, Absent: 15, Total: 50, Field: "Electrical Engineering", Batch: "2023", Section: "C"},
		{CourseCode: "BA101", CourseName: "Mgmt Principles", Present: 48, Absent: 2, Total: 50, Field: "Business Administration", Batch: "2024", Section: "A"},
		{CourseCode: "CS201", CourseName: "Data Structures", Present: 42, Absent: 8, Total: 50, Field: "Computer Science", Batch: "2023", Section: "A"},
	}, nil
}
