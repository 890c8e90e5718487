package tracker

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/kaigolog/internal/activity"
	"github.com/foxseedlab/kaigolog/internal/clock"
	"github.com/foxseedlab/kaigolog/internal/config"
	"github.com/foxseedlab/kaigolog/internal/storage"
)

var (
	ErrIntervalNotFound  = errors.New("interval not found")
	ErrAmbiguousInterval = errors.New("interval id prefix is ambiguous")
)

// Tracker owns the interval log and enforces the single-open-interval
// invariant: starting a new activity always closes the running one at the
// same instant the new one opens, so no activity time is lost and no two
// intervals ever overlap. Every mutation is persisted before it returns.
type Tracker struct {
	cfg   *config.Config
	store storage.Store
	clk   clock.Clock

	mu      sync.Mutex
	history []activity.Interval // newest first
	current *activity.Interval
	roster  []string
	recents []string
}

func NewTracker(cfg *config.Config, store storage.Store, clk clock.Clock) *Tracker {
	return &Tracker{cfg: cfg, store: store, clk: clk}
}

// Load restores persisted state. A failing slot logs and falls back to its
// empty default; the tracker always comes up usable.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	history, err := t.store.LoadHistory(ctx)
	if err != nil {
		slog.Warn("failed to load history, starting empty", "error", err)
		history = nil
	}
	current, err := t.store.LoadCurrent(ctx)
	if err != nil {
		slog.Warn("failed to load current interval, starting idle", "error", err)
		current = nil
	}
	roster, err := t.store.LoadRoster(ctx)
	if err != nil {
		slog.Warn("failed to load roster, starting empty", "error", err)
		roster = nil
	}
	recents, err := t.store.LoadRecents(ctx)
	if err != nil {
		slog.Warn("failed to load recent activities, starting empty", "error", err)
		recents = nil
	}

	t.history = history
	t.current = current
	t.roster = roster
	t.recents = recents
	return nil
}

// Start opens a new interval, first closing any running one at the exact
// same timestamp. A blank name is a no-op.
func (t *Tracker) Start(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clk.Now()
	if t.current != nil {
		if err := t.closeCurrentLocked(ctx, now); err != nil {
			return err
		}
	}

	iv := activity.NewInterval(name, now)
	t.current = &iv
	if err := t.store.SaveCurrent(ctx, t.current); err != nil {
		return err
	}
	slog.Info("activity started", "interval_id", iv.ID, "name", name)

	return t.rememberRecentLocked(ctx, name)
}

// Stop closes the running interval and appends it to the history. Idle is
// a no-op. The same close semantics back the host's termination signal.
func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return nil
	}
	now := t.clk.Now()
	if err := t.closeCurrentLocked(ctx, now); err != nil {
		return err
	}
	return t.store.SaveCurrent(ctx, nil)
}

func (t *Tracker) closeCurrentLocked(ctx context.Context, now time.Time) error {
	iv := *t.current
	endAt := now
	if endAt.Before(iv.StartAt) {
		// Clock went backwards mid-interval. Keep the raw start, close at it.
		endAt = iv.StartAt
	}
	iv.EndAt = &endAt
	t.history = append([]activity.Interval{iv}, t.history...)
	t.current = nil
	if err := t.store.SaveHistory(ctx, t.history); err != nil {
		return err
	}
	slog.Info("activity stopped", "interval_id", iv.ID, "name", iv.Name, "duration", endAt.Sub(iv.StartAt))
	return nil
}

// Rename changes an interval's activity name. A blank name reverts to the
// prior value (no-op), matching the edit-field behavior of the UI shell.
func (t *Tracker) Rename(ctx context.Context, idPrefix, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil && matchesID(*t.current, idPrefix) {
		t.current.Name = name
		return t.store.SaveCurrent(ctx, t.current)
	}
	idx, err := t.findHistoryLocked(idPrefix)
	if err != nil {
		return err
	}
	t.history[idx].Name = name
	return t.store.SaveHistory(ctx, t.history)
}

// SetDeleted toggles the soft-delete flag on a closed interval. Deleted
// intervals stay in the log but are excluded from aggregation.
func (t *Tracker) SetDeleted(ctx context.Context, idPrefix string, deleted bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := t.findHistoryLocked(idPrefix)
	if err != nil {
		return err
	}
	t.history[idx].Deleted = deleted
	return t.store.SaveHistory(ctx, t.history)
}

// AddResident attaches a resident to the open interval or a closed one,
// stamping the join at now. On a closed interval the join is clamped to
// the interval end so attribution never goes negative. Duplicate names
// and blank names are no-ops. The roster grows to include the name.
func (t *Tracker) AddResident(ctx context.Context, idPrefix, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clk.Now()
	if t.current != nil && matchesID(*t.current, idPrefix) {
		if t.current.HasResident(name) {
			return nil
		}
		joinedAt := now
		if joinedAt.Before(t.current.StartAt) {
			joinedAt = t.current.StartAt
		}
		t.current.Residents = append([]activity.Resident{{Name: name, JoinedAt: joinedAt}}, t.current.Residents...)
		if err := t.store.SaveCurrent(ctx, t.current); err != nil {
			return err
		}
		return t.growRosterLocked(ctx, name)
	}

	idx, err := t.findHistoryLocked(idPrefix)
	if err != nil {
		return err
	}
	iv := &t.history[idx]
	if iv.HasResident(name) {
		return nil
	}
	joinedAt := now
	if iv.EndAt != nil && joinedAt.After(*iv.EndAt) {
		joinedAt = *iv.EndAt
	}
	if joinedAt.Before(iv.StartAt) {
		joinedAt = iv.StartAt
	}
	iv.Residents = append([]activity.Resident{{Name: name, JoinedAt: joinedAt}}, iv.Residents...)
	if err := t.store.SaveHistory(ctx, t.history); err != nil {
		return err
	}
	return t.growRosterLocked(ctx, name)
}

// RemoveResident detaches a resident from an interval. Unknown names are a
// no-op.
func (t *Tracker) RemoveResident(ctx context.Context, idPrefix, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil && matchesID(*t.current, idPrefix) {
		t.current.Residents = removeResident(t.current.Residents, name)
		return t.store.SaveCurrent(ctx, t.current)
	}
	idx, err := t.findHistoryLocked(idPrefix)
	if err != nil {
		return err
	}
	t.history[idx].Residents = removeResident(t.history[idx].Residents, name)
	return t.store.SaveHistory(ctx, t.history)
}

// AddRosterName registers a resident name without attaching it to any
// interval.
func (t *Tracker) AddRosterName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.growRosterLocked(ctx, name)
}

// RemoveRosterName removes a name from the roster. Intervals already
// referencing the name keep it.
func (t *Tracker) RemoveRosterName(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := len(t.roster)
	t.roster = slices.DeleteFunc(t.roster, func(n string) bool { return n == name })
	if len(t.roster) == before {
		return nil
	}
	return t.store.SaveRoster(ctx, t.roster)
}

// Clear wipes every persisted slot and resets in-memory state. The caller
// owns the destructive-action confirmation.
func (t *Tracker) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Clear(ctx); err != nil {
		return err
	}
	t.history = nil
	t.current = nil
	t.roster = nil
	t.recents = nil
	slog.Info("all activity data cleared")
	return nil
}

// Snapshot returns copies of the log and the open interval for the pure
// engines to consume.
func (t *Tracker) Snapshot() ([]activity.Interval, *activity.Interval) {
	t.mu.Lock()
	defer t.mu.Unlock()

	history := make([]activity.Interval, len(t.history))
	for i, iv := range t.history {
		history[i] = copyInterval(iv)
	}
	if t.current == nil {
		return history, nil
	}
	cur := copyInterval(*t.current)
	return history, &cur
}

func (t *Tracker) Roster() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.roster)
}

func (t *Tracker) Recents() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.recents)
}

func (t *Tracker) growRosterLocked(ctx context.Context, name string) error {
	if slices.Contains(t.roster, name) {
		return nil
	}
	t.roster = append(t.roster, name)
	return t.store.SaveRoster(ctx, t.roster)
}

// rememberRecentLocked keeps the most recent custom activity names for the
// shell's quick-start list. Preset names are not tracked.
func (t *Tracker) rememberRecentLocked(ctx context.Context, name string) error {
	if slices.Contains(t.cfg.PresetActivities, name) {
		return nil
	}
	recents := []string{name}
	for _, n := range t.recents {
		if n != name {
			recents = append(recents, n)
		}
	}
	if len(recents) > t.cfg.RecentLimit {
		recents = recents[:t.cfg.RecentLimit]
	}
	t.recents = recents
	return t.store.SaveRecents(ctx, t.recents)
}

func (t *Tracker) findHistoryLocked(idPrefix string) (int, error) {
	if idPrefix == "" {
		return 0, ErrIntervalNotFound
	}
	found := -1
	for i, iv := range t.history {
		if !matchesID(iv, idPrefix) {
			continue
		}
		if found != -1 {
			return 0, ErrAmbiguousInterval
		}
		found = i
	}
	if found == -1 {
		return 0, ErrIntervalNotFound
	}
	return found, nil
}

func matchesID(iv activity.Interval, idPrefix string) bool {
	return idPrefix != "" && strings.HasPrefix(iv.ID, idPrefix)
}

func removeResident(residents []activity.Resident, name string) []activity.Resident {
	return slices.DeleteFunc(residents, func(r activity.Resident) bool { return r.Name == name })
}

func copyInterval(iv activity.Interval) activity.Interval {
	out := iv
	if iv.EndAt != nil {
		endAt := *iv.EndAt
		out.EndAt = &endAt
	}
	out.Residents = slices.Clone(iv.Residents)
	return out
}
