package activity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Interval is a single named activity occurrence. EndAt is nil while the
// interval is still running; duration is always derived, never stored.
type Interval struct {
	ID        string
	Name      string
	StartAt   time.Time
	EndAt     *time.Time
	Deleted   bool
	Residents []Resident
}

// Resident attributes care time within an interval to a named person,
// starting from their own join timestamp.
type Resident struct {
	Name     string
	JoinedAt time.Time
}

func NewInterval(name string, startAt time.Time) Interval {
	return Interval{
		ID:      uuid.NewString(),
		Name:    name,
		StartAt: startAt,
	}
}

// Open reports whether the interval is still running.
func (iv Interval) Open() bool {
	return iv.EndAt == nil
}

// End returns the interval end, or now for an open interval.
func (iv Interval) End(now time.Time) time.Time {
	if iv.EndAt != nil {
		return *iv.EndAt
	}
	return now
}

// Duration returns the elapsed time of the interval, evaluating an open
// interval against now. Never negative.
func (iv Interval) Duration(now time.Time) time.Duration {
	d := iv.End(now).Sub(iv.StartAt)
	if d < 0 {
		return 0
	}
	return d
}

// ResidentDuration returns the time attributed to one resident: from their
// join timestamp to the interval end (or now). Clamped to zero so a join
// stamped at or after the end never yields negative time.
func (iv Interval) ResidentDuration(r Resident, now time.Time) time.Duration {
	d := iv.End(now).Sub(r.JoinedAt)
	if d < 0 {
		return 0
	}
	return d
}

// HasResident reports whether a resident with the given name is already
// attached. Names are compared case-sensitively.
func (iv Interval) HasResident(name string) bool {
	for _, r := range iv.Residents {
		if r.Name == name {
			return true
		}
	}
	return false
}

// ValidName reports whether a user-entered activity or resident name is
// usable after trimming.
func ValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}
