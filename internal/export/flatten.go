package export

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/foxseedlab/kaigolog/internal/activity"
)

// Row is one flat export record: an interval paired with one of its
// residents, or the interval alone when it has none. For resident rows the
// start fields describe the resident's own span (from their join), while
// the end fields always describe the interval end.
type Row struct {
	Resident  string
	Activity  string
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
	Duration  string
	Seconds   int64
	Deleted   string
}

// Header lists the column names in output order.
func Header() []string {
	return []string{"Resident", "Activity", "Start Date", "Start Time", "End Date", "End Time", "Duration", "Seconds", "Deleted"}
}

func (r Row) Fields() []string {
	return []string{
		r.Resident,
		r.Activity,
		r.StartDate,
		r.StartTime,
		r.EndDate,
		r.EndTime,
		r.Duration,
		strconv.FormatInt(r.Seconds, 10),
		r.Deleted,
	}
}

// Exporter serializes flattened rows to a downloadable artifact. The file
// encoding is the implementation's business; the flattener only fixes the
// field list and order.
type Exporter interface {
	Export(ctx context.Context, format string, rows []Row) (path string, err error)
}

// Flatten produces export rows for the whole log, including deleted
// intervals (flagged) and the open interval evaluated against now. Rows
// are ordered by interval end descending.
func Flatten(history []activity.Interval, current *activity.Interval, now time.Time, loc *time.Location) []Row {
	if loc == nil {
		loc = time.Local
	}

	all := make([]activity.Interval, 0, len(history)+1)
	if current != nil {
		all = append(all, *current)
	}
	all = append(all, history...)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].End(now).After(all[j].End(now))
	})

	var rows []Row
	for _, iv := range all {
		end := iv.End(now)
		residents := nonBlankResidents(iv.Residents)
		if len(residents) == 0 {
			rows = append(rows, buildRow(iv, "", iv.StartAt, end, loc))
			continue
		}
		for _, r := range residents {
			rows = append(rows, buildRow(iv, r.Name, r.JoinedAt, end, loc))
		}
	}
	return rows
}

func buildRow(iv activity.Interval, resident string, start, end time.Time, loc *time.Location) Row {
	d := end.Sub(start)
	if d < 0 {
		d = 0
	}
	sec := activity.WholeSeconds(d)
	return Row{
		Resident:  resident,
		Activity:  iv.Name,
		StartDate: start.In(loc).Format("2006-01-02"),
		StartTime: start.In(loc).Format("15:04:05"),
		EndDate:   end.In(loc).Format("2006-01-02"),
		EndTime:   end.In(loc).Format("15:04:05"),
		Duration:  activity.FormatHMS(sec),
		Seconds:   sec,
		Deleted:   strconv.FormatBool(iv.Deleted),
	}
}

func nonBlankResidents(residents []activity.Resident) []activity.Resident {
	out := make([]activity.Resident, 0, len(residents))
	for _, r := range residents {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
