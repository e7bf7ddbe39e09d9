package importer

import (
	"fmt"
	"strings"
)

// SkipReason explains why a row was not imported.
type SkipReason string

const (
	ReasonDuplicate SkipReason = "duplicate"
	ReasonInvalid   SkipReason = "invalid"
)

// IDKey is the dedup key of a record id.
func IDKey(id string) string { return "id:" + id }

// CodeKey is the dedup key of a course code. Empty codes never collide.
func CodeKey(code string) string {
	if code == "" {
		return ""
	}
	return "code:" + code
}

// Index is a set of dedup keys.
type Index struct {
	keys map[string]struct{}
}

// NewIndex builds an index holding keys.
func NewIndex(keys ...string) *Index {
	idx := &Index{keys: make(map[string]struct{}, len(keys))}
	idx.Add(keys...)
	return idx
}

// Add inserts keys, ignoring empty ones.
func (i *Index) Add(keys ...string) {
	for _, k := range keys {
		if k != "" {
			i.keys[k] = struct{}{}
		}
	}
}

// HasAny reports whether any of keys is present.
func (i *Index) HasAny(keys ...string) bool {
	for _, k := range keys {
		if _, ok := i.keys[k]; ok && k != "" {
			return true
		}
	}
	return false
}

// Len is the number of keys held.
func (i *Index) Len() int { return len(i.keys) }

// Candidate is a normalized row awaiting the duplicate check.
type Candidate[T any] struct {
	Row     int
	ID      string
	Record  T
	Keys    []string
	Missing []string
}

// SkippedRow records a rejected row. Row is the 1-based position in the batch.
type SkippedRow struct {
	Row    int        `json:"row"`
	ID     string     `json:"id"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// Filter partitions batch into accepted records and skipped rows. A candidate is
// skipped when any of its keys is already in existing or was taken by an earlier
// candidate of the same batch, or when it lists missing columns. Accepted records
// keep their source order and their keys are added to existing.
func Filter[T any](batch []Candidate[T], existing *Index) ([]T, []SkippedRow) {
	accepted := make([]T, 0, len(batch))
	var skipped []SkippedRow
	for _, c := range batch {
		switch {
		case len(c.Missing) > 0:
			skipped = append(skipped, SkippedRow{
				Row:    c.Row,
				ID:     c.ID,
				Reason: ReasonInvalid,
				Detail: "missing " + strings.Join(c.Missing, ", "),
			})
		case existing.HasAny(c.Keys...):
			skipped = append(skipped, SkippedRow{Row: c.Row, ID: c.ID, Reason: ReasonDuplicate})
		default:
			existing.Add(c.Keys...)
			accepted = append(accepted, c.Record)
		}
	}
	return accepted, skipped
}

// Report summarises one import.
type Report struct {
	Entity      string       `json:"entity"`
	Total       int          `json:"total"`
	Added       int          `json:"added"`
	Skipped     int          `json:"skipped"`
	SkippedRows []SkippedRow `json:"skipped_rows"`
	Message     string       `json:"message"`
}

// NewReport builds the report for a batch of total rows. entity is the plural noun
// used in the message, e.g. "users".
func NewReport(entity string, total int, skipped []SkippedRow) Report {
	if skipped == nil {
		skipped = []SkippedRow{}
	}
	r := Report{
		Entity:      entity,
		Total:       total,
		Added:       total - len(skipped),
		Skipped:     len(skipped),
		SkippedRows: skipped,
	}
	r.Message = r.message()
	return r
}

func (r Report) message() string {
	var duplicates, invalid int
	for _, s := range r.SkippedRows {
		if s.Reason == ReasonInvalid {
			invalid++
		} else {
			duplicates++
		}
	}
	msg := fmt.Sprintf("%d %s added.", r.Added, r.Entity)
	if duplicates > 0 {
		msg += fmt.Sprintf(" %d %s skipped due to duplicate ID.", duplicates, r.Entity)
	}
	if invalid > 0 {
		msg += fmt.Sprintf(" %d %s skipped due to missing required columns.", invalid, r.Entity)
	}
	return msg
}
