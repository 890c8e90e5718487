package storage

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/foxseedlab/kaigolog/internal/activity"
	"github.com/google/uuid"
)

// intervalRecord is the persisted shape of an interval. Timestamps are
// revived from their string form on an explicit field allow-list (startAt,
// endAt, joinedAt); legacy records missing deleted or residents get
// defaults, so everything past this boundary is well-formed.
type intervalRecord struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name"`
	StartAt   time.Time        `json:"startAt"`
	EndAt     *time.Time       `json:"endAt,omitempty"`
	Deleted   bool             `json:"deleted"`
	Residents []residentRecord `json:"residents,omitempty"`
}

type residentRecord struct {
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

func EncodeHistory(history []activity.Interval) ([]byte, error) {
	records := make([]intervalRecord, 0, len(history))
	for _, iv := range history {
		records = append(records, toRecord(iv))
	}
	return json.Marshal(records)
}

// DecodeHistory revives a persisted history blob. Corrupt blobs decode to
// an empty history rather than failing.
func DecodeHistory(blob []byte) []activity.Interval {
	if len(blob) == 0 {
		return nil
	}
	var records []intervalRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil
	}
	history := make([]activity.Interval, 0, len(records))
	for _, rec := range records {
		iv, ok := fromRecord(rec)
		if !ok {
			continue
		}
		history = append(history, iv)
	}
	return history
}

func EncodeCurrent(current *activity.Interval) ([]byte, error) {
	if current == nil {
		return json.Marshal(nil)
	}
	rec := toRecord(*current)
	return json.Marshal(&rec)
}

// DecodeCurrent revives the open-interval slot. A persisted current always
// loads with EndAt nil, whatever the blob claims.
func DecodeCurrent(blob []byte) *activity.Interval {
	if len(blob) == 0 {
		return nil
	}
	var rec *intervalRecord
	if err := json.Unmarshal(blob, &rec); err != nil || rec == nil {
		return nil
	}
	rec.EndAt = nil
	iv, ok := fromRecord(*rec)
	if !ok {
		return nil
	}
	return &iv
}

func EncodeNames(names []string) ([]byte, error) {
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

// DecodeNames revives a persisted name list (roster or recents), dropping
// blank entries.
func DecodeNames(blob []byte) []string {
	if len(blob) == 0 {
		return nil
	}
	var names []string
	if err := json.Unmarshal(blob, &names); err != nil {
		return nil
	}
	out := names[:0]
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			out = append(out, n)
		}
	}
	return out
}

func toRecord(iv activity.Interval) intervalRecord {
	residents := make([]residentRecord, 0, len(iv.Residents))
	for _, r := range iv.Residents {
		residents = append(residents, residentRecord{Name: r.Name, JoinedAt: r.JoinedAt})
	}
	return intervalRecord{
		ID:        iv.ID,
		Name:      iv.Name,
		StartAt:   iv.StartAt,
		EndAt:     iv.EndAt,
		Deleted:   iv.Deleted,
		Residents: residents,
	}
}

func fromRecord(rec intervalRecord) (activity.Interval, bool) {
	if rec.Name == "" || rec.StartAt.IsZero() {
		return activity.Interval{}, false
	}
	if rec.ID == "" {
		// Records written before interval IDs existed.
		rec.ID = uuid.NewString()
	}
	iv := activity.Interval{
		ID:      rec.ID,
		Name:    rec.Name,
		StartAt: rec.StartAt,
		EndAt:   rec.EndAt,
		Deleted: rec.Deleted,
	}
	for _, r := range rec.Residents {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		iv.Residents = append(iv.Residents, activity.Resident{
			Name:     r.Name,
			JoinedAt: clampJoin(r.JoinedAt, iv),
		})
	}
	return iv, true
}

// clampJoin keeps a resident's join timestamp inside the interval: zero or
// too-early joins snap to the start, and joins past a closed interval's end
// snap to the end.
func clampJoin(joinedAt time.Time, iv activity.Interval) time.Time {
	if joinedAt.IsZero() || joinedAt.Before(iv.StartAt) {
		return iv.StartAt
	}
	if iv.EndAt != nil && joinedAt.After(*iv.EndAt) {
		return *iv.EndAt
	}
	return joinedAt
}
