package storage

import (
	"context"

	"github.com/foxseedlab/kaigolog/internal/activity"
)

// Slot names for the independently persisted JSON blobs.
const (
	SlotHistory = "activity-history"
	SlotCurrent = "activity-current"
	SlotRoster  = "activity-roster"
	SlotRecents = "activity-recent"
)

// Store persists the tracker state as independent JSON slots. Absent or
// corrupt slots load as empty defaults, never as errors surfaced to the
// user; errors here mean the backing store itself failed.
type Store interface {
	LoadHistory(ctx context.Context) ([]activity.Interval, error)
	SaveHistory(ctx context.Context, history []activity.Interval) error

	// LoadCurrent returns nil when no interval is open.
	LoadCurrent(ctx context.Context) (*activity.Interval, error)
	// SaveCurrent with nil clears the slot.
	SaveCurrent(ctx context.Context, current *activity.Interval) error

	LoadRoster(ctx context.Context) ([]string, error)
	SaveRoster(ctx context.Context, roster []string) error

	LoadRecents(ctx context.Context) ([]string, error)
	SaveRecents(ctx context.Context, recents []string) error

	// Clear wipes every slot. Destructive; the caller owns confirmation.
	Clear(ctx context.Context) error
}
