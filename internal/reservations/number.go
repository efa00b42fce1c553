package reservations

import (
	"fmt"
	"sync"
	"time"
)

// NumberGenerator produces reservation numbers of the form
// RES-YYYYMMDD-NNNNNNNN. The suffix is the number of milliseconds since
// midnight in the center's time zone, bumped past the last suffix issued for
// the same day so that it never repeats within the process. The unique index
// on reservation_number remains the authoritative guarantee.
type NumberGenerator struct {
	mu      sync.Mutex
	lastDay string
	last    int64
	now     func() time.Time
	loc     *time.Location
}

func NewNumberGenerator(now func() time.Time, loc *time.Location) *NumberGenerator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &NumberGenerator{now: now, loc: loc}
}

func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now().In(g.loc)
	day := now.Format("20060102")
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, g.loc)
	suffix := now.Sub(midnight).Milliseconds()

	if day == g.lastDay && suffix <= g.last {
		suffix = g.last + 1
	}
	g.lastDay = day
	g.last = suffix

	return fmt.Sprintf("RES-%s-%08d", day, suffix)
}
