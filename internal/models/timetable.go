package models

// TimetableEntry is a scheduled class for a student cohort.
type TimetableEntry struct {
	ID         string `json:"id"`
	Day        string `json:"day"`
	Time       string `json:"time"`
	CourseName string `json:"course_name"`
	CourseCode string `json:"course_code"`
	Instructor string `json:"instructor"`
	Room       string `json:"room"`
	Field      string `json:"field"`
	Batch      string `json:"batch"`
	Section    string `json:"section"`
}

// FacultyTimetableEntry is a class taught by one faculty member.
type FacultyTimetableEntry struct {
	ID         string `json:"id"`
	FacultyID  string `json:"faculty_id"`
	Day        string `json:"day"`
	Time       string `json:"time"`
	CourseName string `json:"course_name"`
	CourseCode string `json:"course_code"`
	Room       string `json:"room"`
	ClassGroup string `json:"class_group"`
}

// CourseAttendance aggregates attendance of one course for a cohort.
type CourseAttendance struct {
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Present    int    `json:"present"`
	Absent     int    `json:"absent"`
	Total      int    `json:"total"`
	Field      string `json:"field"`
	Batch      string `json:"batch"`
	Section    string `json:"section"`
}

// CohortFilter matches entries whose field, batch and section are each in the
// corresponding list. Empty lists match everything.
type CohortFilter struct {
	Fields   []string
	Batches  []string
	Sections []string
}

// Matches reports whether the cohort passes the filter.
func (f CohortFilter) Matches(field, batch, section string) bool {
	return allowed(f.Fields, field) && allowed(f.Batches, batch) && allowed(f.Sections, section)
}

func allowed(list []string, value string) bool {
	return len(list) == 0 || Contains(list, value)
}
