package importer

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/educentral-admin-api/internal/models"
)

var fixedNow = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestRowCoercion(t *testing.T) {
	row := NewRow(map[string]any{
		" ID ":    101.0,
		"Credits": "$1,250.50",
		"Debt":    "(42)",
		"Bad":     "four",
		"Qty":     json.Number("3"),
		"Flag":    true,
		"":        "ignored",
	})

	assert.Equal(t, "101", row.String("id"))
	assert.Equal(t, 1250.5, row.Number("credits"))
	assert.Equal(t, -42.0, row.Number("debt"))
	assert.Equal(t, 0.0, row.Number("bad"))
	assert.Equal(t, 0.0, row.Number("absent"))
	assert.Equal(t, 3.0, row.Number("qty"))
	assert.Equal(t, "true", row.String("flag"))
	assert.Equal(t, "2.5", Row{"x": 2.5}.String("x"))
	assert.Len(t, row, 6)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "  ", "b", "c"))
	assert.Equal(t, "", Coalesce())
}

func TestNormalizeUserCoalescingOrder(t *testing.T) {
	n := NewNormalizer(fixedClock)
	defaults := UserDefaults{Role: models.RoleStudent, Batch: "2023"}

	user := n.User(NewRow(map[string]any{"Name": "Dana", "field": "Biotechnology"}), defaults)
	assert.Equal(t, "", user.ID)
	assert.Equal(t, "Dana", user.Name)
	assert.Equal(t, FallbackText, user.Email)
	assert.Equal(t, "Biotechnology", user.Field)
	assert.Equal(t, "2023", user.Batch)
	assert.Equal(t, models.Sections[0], user.Section)
	assert.Empty(t, user.Department)

	faculty := n.User(Row{}, UserDefaults{Role: models.RoleFaculty})
	assert.Equal(t, models.RoleFaculty, faculty.Role)
	assert.Equal(t, models.Departments[0], faculty.Department)
	assert.Empty(t, faculty.Field)
}

func TestNormalizeCourseClampsCredits(t *testing.T) {
	n := NewNormalizer(fixedClock)

	course := n.Course(Row{"code": "EE201", "credits": "-3"}, CourseDefaults{Department: "Physics"})
	assert.Equal(t, 0.0, course.Credits)
	assert.Equal(t, FallbackCourseName, course.Title)
	assert.Equal(t, "Physics", course.Department)

	course = n.Course(Row{"credits": "abc"}, CourseDefaults{})
	assert.Equal(t, 0.0, course.Credits)
	assert.Equal(t, models.Departments[0], course.Department)
}

func TestNormalizeEventDates(t *testing.T) {
	n := NewNormalizer(fixedClock)
	cases := map[string]any{
		"iso":        "2024-08-15",
		"rfc3339":    "2024-08-15T00:00:00Z",
		"us":         "8/15/2024",
		"short year": "8/15/24",
		"serial":     45519.0,
		"words":      "Aug 15, 2024",
	}
	for name, cell := range cases {
		event := n.Event(Row{"date": cell}, EventDefaults{})
		assert.Equal(t, "2024-08-15", event.Date.Format("2006-01-02"), name)
	}

	event := n.Event(Row{"date": "someday"}, EventDefaults{Location: "Main Hall"})
	assert.Equal(t, fixedNow, event.Date)
	assert.Equal(t, FallbackEventTitle, event.Title)
	assert.Equal(t, "Main Hall", event.Location)
	assert.Equal(t, FallbackCategory, event.Category)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := NewNormalizer(fixedClock)
	row := NewRow(map[string]any{"title": "Fest", "date": "", "credits": "x", "name": "A"})

	assert.Equal(t, n.Event(row, EventDefaults{Category: "Cultural"}), n.Event(row, EventDefaults{Category: "Cultural"}))
	assert.Equal(t, n.Course(row, CourseDefaults{}), n.Course(row, CourseDefaults{}))
	assert.Equal(t, n.User(row, UserDefaults{}), n.User(row, UserDefaults{}))
}

func TestSequenceGeneratorIsMonotonic(t *testing.T) {
	gen := NewSequenceGenerator(fixedClock)
	base := fixedNow.UnixMilli()

	first := gen.Next("CRS")
	second := gen.Next("CRS")
	other := gen.Next("EVT_F")

	assert.Equal(t, "CRS"+itoa(base), first)
	assert.Equal(t, "CRS"+itoa(base+1), second)
	assert.Equal(t, "EVT_F"+itoa(base), other)
}

func TestUUIDGenerator(t *testing.T) {
	id := UUIDGenerator{}.Next("NEWS")
	assert.True(t, strings.HasPrefix(id, "NEWS"))
	assert.Len(t, id, len("NEWS")+36)
	assert.NotEqual(t, id, UUIDGenerator{}.Next("NEWS"))
}

func TestResolvePrecedence(t *testing.T) {
	gen := NewSequenceGenerator(fixedClock)
	assert.Equal(t, "X1", Resolve("X1", "CSE101", "CRS", gen))
	assert.Equal(t, "CSE101", Resolve("", "CSE101", "CRS", gen))
	assert.True(t, strings.HasPrefix(Resolve("", "", "CRS", gen), "CRS"))
}

func seededCourseIndex() *Index {
	idx := NewIndex()
	for _, c := range []models.Course{
		{ID: "CSE101", Code: "CSE101"},
		{ID: "MAT202", Code: "MAT202"},
		{ID: "PHY105", Code: "PHY105"},
	} {
		idx.Add(CourseKeys(c)...)
	}
	return idx
}

func TestCourseImportSkipsExistingCode(t *testing.T) {
	p := NewPipeline(NewNormalizer(fixedClock), NewSequenceGenerator(fixedClock), Lenient)
	rows := []Row{
		{"code": "CSE101", "title": "Intro again", "credits": 3},
		{"code": "EE201", "title": "Circuits", "credits": 4},
		{"code": "BIO110", "title": "Biology", "credits": "3"},
	}

	accepted, skipped := Filter(p.Courses(rows, CourseDefaults{}), seededCourseIndex())
	report := NewReport("courses", len(rows), skipped)

	require.Len(t, accepted, 2)
	assert.Equal(t, "EE201", accepted[0].ID)
	assert.Equal(t, "BIO110", accepted[1].ID)
	assert.Equal(t, 2, report.Added)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, report.Total, report.Added+report.Skipped)
	assert.Equal(t, []SkippedRow{{Row: 1, ID: "CSE101", Reason: ReasonDuplicate}}, report.SkippedRows)
	assert.Equal(t, "2 courses added. 1 courses skipped due to duplicate ID.", report.Message)
}

func TestCourseCodeCollidesIndependentlyOfID(t *testing.T) {
	p := NewPipeline(NewNormalizer(fixedClock), NewSequenceGenerator(fixedClock), Lenient)
	rows := []Row{{"id": "C-99", "code": "MAT202"}, {"id": "C-100"}, {"id": "C-101"}}

	accepted, skipped := Filter(p.Courses(rows, CourseDefaults{}), seededCourseIndex())
	require.Len(t, skipped, 1)
	assert.Equal(t, "C-99", skipped[0].ID)
	assert.Len(t, accepted, 2, "empty codes never collide")
}

func TestFilterSkipsIntraBatchDuplicates(t *testing.T) {
	p := NewPipeline(NewNormalizer(fixedClock), NewSequenceGenerator(fixedClock), Lenient)
	rows := []Row{{"id": "S010", "name": "A"}, {"id": "S010", "name": "B"}, {"name": "C"}, {"name": "D"}}
	existing := NewIndex(IDKey("S001"))

	accepted, skipped := Filter(p.Users(rows, UserDefaults{Role: models.RoleStudent}), existing)
	require.Len(t, accepted, 3)
	assert.Equal(t, "A", accepted[0].Name)
	assert.Equal(t, "C", accepted[1].Name)
	assert.NotEqual(t, accepted[1].ID, accepted[2].ID)
	assert.True(t, strings.HasPrefix(accepted[1].ID, "NEWS"))
	require.Len(t, skipped, 1)
	assert.Equal(t, 2, skipped[0].Row)

	seen := map[string]bool{}
	for _, u := range accepted {
		assert.False(t, seen[u.ID])
		seen[u.ID] = true
	}
	assert.Equal(t, 4, existing.Len())
}

func TestStrictPolicySkipsIncompleteRows(t *testing.T) {
	p := NewPipeline(NewNormalizer(fixedClock), NewSequenceGenerator(fixedClock), Strict)
	rows := []Row{{"title": "Fest", "date": "2024-10-20"}, {"title": "No date"}}

	accepted, skipped := Filter(p.Events(rows, EventDefaults{}), NewIndex())
	report := NewReport("events", len(rows), skipped)

	assert.Len(t, accepted, 1)
	require.Len(t, skipped, 1)
	assert.Equal(t, ReasonInvalid, skipped[0].Reason)
	assert.Equal(t, "missing date", skipped[0].Detail)
	assert.Equal(t, "1 events added. 1 events skipped due to missing required columns.", report.Message)
}

func TestLenientPolicyNeverRejects(t *testing.T) {
	p := NewPipeline(nil, nil, "")
	assert.Equal(t, Lenient, p.Policy())
	accepted, skipped := Filter(p.Events([]Row{{}, {}}, EventDefaults{}), NewIndex())
	assert.Len(t, accepted, 2)
	assert.Empty(t, skipped)
	assert.Equal(t, "2 events added.", NewReport("events", 2, skipped).Message)
}

func itoa(n int64) string {
	return Row{"n": float64(n)}.String("n")
}
