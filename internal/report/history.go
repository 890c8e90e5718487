package report

import (
	"sort"
	"time"

	"github.com/foxseedlab/kaigolog/internal/activity"
)

// DayGroup is one local calendar day of closed intervals, for the history
// view. Deleted intervals stay visible here (struck through by the shell);
// only aggregation excludes them.
type DayGroup struct {
	Date      string
	Intervals []activity.Interval
}

// GroupByDay groups closed intervals by the local date they ended, keeping
// only days strictly before the local date of `before` (the shell shows
// today's intervals separately). Newest day first, intervals within a day
// newest first.
func GroupByDay(history []activity.Interval, before time.Time, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	beforeKey := BucketKey(before.In(loc), GranularityDay)

	byDate := make(map[string][]activity.Interval)
	var dates []string
	for _, iv := range history {
		if iv.EndAt == nil {
			continue
		}
		key := BucketKey(iv.EndAt.In(loc), GranularityDay)
		if key >= beforeKey {
			continue
		}
		if _, ok := byDate[key]; !ok {
			dates = append(dates, key)
		}
		byDate[key] = append(byDate[key], iv)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	groups := make([]DayGroup, 0, len(dates))
	for _, date := range dates {
		items := byDate[date]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].EndAt.After(*items[j].EndAt)
		})
		groups = append(groups, DayGroup{Date: date, Intervals: items})
	}
	return groups
}

// FormatBucketKey renders a bucket key for display.
func FormatBucketKey(key string, g Granularity) string {
	switch g {
	case GranularityWeek:
		start, err := time.Parse("2006-01-02", key)
		if err != nil {
			return key
		}
		end := start.AddDate(0, 0, 6)
		return start.Format("Jan 02") + " - " + end.Format("Jan 02, 2006")
	case GranularityMonth:
		t, err := time.Parse("2006-01", key)
		if err != nil {
			return key
		}
		return t.Format("January 2006")
	case GranularityYear:
		return key
	default:
		t, err := time.Parse("2006-01-02", key)
		if err != nil {
			return key
		}
		return t.Format("Jan 02, 2006")
	}
}
