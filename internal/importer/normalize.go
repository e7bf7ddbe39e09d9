package importer

import (
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/educentral-admin-api/internal/models"
)

// Fallback values used when neither the row nor the upload defaults supply a field.
const (
	FallbackText       = "N/A"
	FallbackEventTitle = "Untitled Event"
	FallbackCourseName = "Untitled Course"
	FallbackCategory   = "Other"
)

var (
	dateTimeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06"}
)

// twoDigitYearPivot moves two digit years more than this far in the future back a century.
const twoDigitYearPivot = 20

// UserDefaults are the upload level choices applied to rows that leave a field empty.
type UserDefaults struct {
	Role       models.UserRole
	Field      string
	Batch      string
	Section    string
	Department string
}

// CourseDefaults are the upload level choices for course rows.
type CourseDefaults struct {
	Department string
}

// EventDefaults are the upload level choices for event rows.
type EventDefaults struct {
	Category string
	Location string
}

// Normalizer maps rows onto records. It never rejects a row.
type Normalizer struct {
	clock func() time.Time
}

// NewNormalizer builds a normalizer. clock supplies the fallback event date.
func NewNormalizer(clock func() time.Time) *Normalizer {
	if clock == nil {
		clock = time.Now
	}
	return &Normalizer{clock: clock}
}

// User normalizes a student or faculty row. The id is taken verbatim from the row
// and left empty otherwise.
func (n *Normalizer) User(row Row, d UserDefaults) models.UserRecord {
	role := d.Role
	if !role.Valid() {
		role = models.RoleStudent
	}
	user := models.UserRecord{
		ID:    row.String("id"),
		Name:  Coalesce(row.String("name"), FallbackText),
		Email: Coalesce(row.String("email"), FallbackText),
		Role:  role,
	}
	if role == models.RoleFaculty {
		user.Department = Coalesce(row.String("department"), d.Department, first(models.Departments))
		return user
	}
	user.Field = Coalesce(row.String("field"), d.Field, first(models.Fields))
	user.Batch = Coalesce(row.String("batch"), d.Batch, first(models.Batches))
	user.Section = Coalesce(row.String("section"), d.Section, first(models.Sections))
	return user
}

// Course normalizes a course row. Negative or unparsable credits become 0.
func (n *Normalizer) Course(row Row, d CourseDefaults) models.Course {
	credits := row.Number("credits")
	if credits < 0 {
		credits = 0
	}
	return models.Course{
		ID:          row.String("id"),
		Code:        row.String("code"),
		Title:       Coalesce(row.String("title"), FallbackCourseName),
		Description: row.String("description"),
		Credits:     credits,
		Department:  Coalesce(row.String("department"), d.Department, first(models.Departments)),
	}
}

// Event normalizes an event row. Unparsable dates fall back to the clock.
func (n *Normalizer) Event(row Row, d EventDefaults) models.Event {
	date, ok := n.date(row["date"])
	if !ok {
		date = n.clock().UTC()
	}
	return models.Event{
		ID:          row.String("id"),
		Title:       Coalesce(row.String("title"), FallbackEventTitle),
		Description: row.String("description"),
		Date:        date,
		Location:    Coalesce(row.String("location"), d.Location, FallbackText),
		Category:    Coalesce(row.String("category"), d.Category, FallbackCategory),
	}
}

func (n *Normalizer) date(cell any) (time.Time, bool) {
	switch v := cell.(type) {
	case time.Time:
		return v.UTC(), true
	case float64:
		return serialDate(v)
	case int:
		return serialDate(float64(v))
	}
	return n.parseDate(Row{"v": cell}.String("v"))
}

func (n *Normalizer) parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	pivot := n.clock().Year() + twoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivot {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}
	if f := ParseNumber(s); f > 0 && numericPattern.MatchString(s) {
		return serialDate(f)
	}
	return time.Time{}, false
}

// serialDate converts an Excel day serial into a date.
func serialDate(serial float64) (time.Time, bool) {
	if serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func first(options []string) string {
	if len(options) == 0 {
		return FallbackText
	}
	return options[0]
}
