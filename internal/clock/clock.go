// Package clock supplies the time snapshot shared by every rule in one
// orchestrator run, so windowed rules agree on "today" even when a run
// takes measurable wall-clock time.
package clock

import (
	"math"
	"time"
)

// Window horizons used by the rule catalog.
const (
	Horizon7d  = 7
	Horizon14d = 14
	Horizon30d = 30
)

// Snapshot is a fixed view of "now" taken once at the start of a run.
type Snapshot struct {
	Now   time.Time
	Today time.Time // midnight UTC of Now
}

// At builds a snapshot for the given instant.
func At(now time.Time) Snapshot {
	now = now.UTC()
	y, m, d := now.Date()
	return Snapshot{
		Now:   now,
		Today: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

// DaysUntil returns the ceiling of the distance from the snapshot instant to
// target in days: a target expiring today yields 0, yesterday yields -1.
func (s Snapshot) DaysUntil(target time.Time) int {
	return int(math.Ceil(target.Sub(s.Now).Hours() / 24))
}

// FifthOfMonth returns the 5th of the snapshot's month at midnight UTC.
func (s Snapshot) FifthOfMonth() time.Time {
	y, m, _ := s.Now.Date()
	return time.Date(y, m, 5, 0, 0, 0, 0, time.UTC)
}
