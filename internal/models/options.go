package models

// Option lists offered by the admin forms. The first entry of each list is the
// fallback used when an imported row and the upload defaults leave a field empty.
var (
	Fields = []string{
		"Computer Science",
		"Mechanical Engineering",
		"Electrical Engineering",
		"Civil Engineering",
		"Biotechnology",
	}
	Batches     = []string{"2021", "2022", "2023", "2024"}
	Sections    = []string{"A", "B", "C", "D"}
	Departments = []string{
		"Physics",
		"Mathematics",
		"Chemistry",
		"English",
		"Management",
		"Computer Science",
		"Mechanical Engineering",
		"Electrical Engineering",
		"Civil Engineering",
		"Biotechnology",
	}
	Semesters       = []string{"Spring", "Summer", "Fall", "Winter"}
	EventCategories = []string{"Academic", "Cultural", "Sports", "Workshop", "Seminar", "Guest Lecture", "Festival", "Other"}
)

// Options groups the lists for the options endpoint.
type Options struct {
	Fields          []string `json:"fields"`
	Batches         []string `json:"batches"`
	Sections        []string `json:"sections"`
	Departments     []string `json:"departments"`
	EventCategories []string `json:"event_categories"`
	Semesters       []string `json:"semesters"`
	InvoiceTypes    []string `json:"invoice_types"`
	InvoiceStatuses []string `json:"invoice_statuses"`
}

// AllOptions returns every option list.
func AllOptions() Options {
	types := make([]string, 0, len(InvoiceTypes))
	for _, t := range InvoiceTypes {
		types = append(types, string(t))
	}
	statuses := make([]string, 0, len(InvoiceStatuses))
	for _, s := range InvoiceStatuses {
		statuses = append(statuses, string(s))
	}
	return Options{
		Fields:          Fields,
		Batches:         Batches,
		Sections:        Sections,
		Departments:     Departments,
		EventCategories: EventCategories,
		Semesters:       Semesters,
		InvoiceTypes:    types,
		InvoiceStatuses: statuses,
	}
}

// Contains reports whether value is one of list.
func Contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
