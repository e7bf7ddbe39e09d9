package importer

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ID prefixes per collection.
const (
	PrefixCourse      = "CRS"
	PrefixEvent       = "EVT_F"
	PrefixManualEvent = "EVT"
	PrefixInvoice     = "INV"
	PrefixAIInvoice   = "AI_INV"
	PrefixLeave       = "LR"
	PrefixMessage     = "MSG"
	PrefixExport      = "EXP"
)

// IDGenerator issues identifiers that are unique per prefix.
type IDGenerator interface {
	Next(prefix string) string
}

// SequenceGenerator issues <prefix><n> where n starts at the current Unix
// millisecond and never repeats for a prefix, however quickly it is called.
type SequenceGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last map[string]int64
}

// NewSequenceGenerator builds a SequenceGenerator reading time from now.
func NewSequenceGenerator(now func() time.Time) *SequenceGenerator {
	if now == nil {
		now = time.Now
	}
	return &SequenceGenerator{now: now, last: make(map[string]int64)}
}

// Next returns the next identifier for prefix.
func (g *SequenceGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.now().UnixMilli()
	if last := g.last[prefix]; n <= last {
		n = last + 1
	}
	g.last[prefix] = n
	return prefix + strconv.FormatInt(n, 10)
}

// UUIDGenerator issues <prefix><uuid>.
type UUIDGenerator struct{}

// Next returns a fresh identifier for prefix.
func (UUIDGenerator) Next(prefix string) string {
	return prefix + uuid.NewString()
}

// Resolve picks a record identifier: the explicit id cell, else the natural key,
// else a generated one.
func Resolve(explicit, natural, prefix string, gen IDGenerator) string {
	if id := Coalesce(explicit, natural); id != "" {
		return id
	}
	return gen.Next(prefix)
}
