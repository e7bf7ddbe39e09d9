package importer

// Policy decides what happens to rows lacking required columns.
type Policy string

const (
	// Lenient fills gaps with fallbacks and never rejects a row.
	Lenient Policy = "lenient"
	// Strict skips rows that lack a required column.
	Strict Policy = "strict"
)

// Required columns per entity under the strict policy.
var (
	RequiredUserColumns   = []string{"name", "email"}
	RequiredCourseColumns = []string{"code", "title"}
	RequiredEventColumns  = []string{"title", "date"}
)

// Check returns the required columns missing from row, or nil under Lenient.
func (p Policy) Check(row Row, required []string) []string {
	if p != Strict {
		return nil
	}
	return row.Missing(required...)
}
