package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/foxseedlab/kaigolog/internal/activity"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

func ParseGranularity(value string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(value))) {
	case GranularityDay:
		return GranularityDay, nil
	case GranularityWeek:
		return GranularityWeek, nil
	case GranularityMonth:
		return GranularityMonth, nil
	case GranularityYear:
		return GranularityYear, nil
	}
	return "", fmt.Errorf("unknown granularity %q (want day, week, month or year)", value)
}

// ActivitySummary is one activity's aggregate within a bucket.
type ActivitySummary struct {
	Name     string
	Duration time.Duration
	// ResidentDurations holds each resident's summed contributed time for
	// this activity in this bucket. Contributions overlap freely; they are
	// not shares of Duration.
	ResidentDurations map[string]time.Duration
	// Residents is the set of distinct resident names seen, independent of
	// contributed time. Used to populate filter menus.
	Residents map[string]struct{}
}

// Bucket is a calendar-aligned window of aggregated activity.
type Bucket struct {
	Key        string
	Activities []ActivitySummary
}

// Summarize buckets the interval log at the given granularity, evaluating
// the open interval against now. Deleted intervals are excluded. An
// interval belongs wholly to the bucket its END falls in, keyed on local
// wall-clock fields in loc; intervals spanning a bucket boundary are not
// split. Buckets come out newest first, activities duration-descending
// with ties kept in first-seen order.
func Summarize(history []activity.Interval, current *activity.Interval, now time.Time, g Granularity, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.Local
	}

	all := make([]activity.Interval, 0, len(history)+1)
	if current != nil {
		all = append(all, *current)
	}
	for _, iv := range history {
		if iv.Deleted {
			continue
		}
		all = append(all, iv)
	}

	byKey := make(map[string]*bucketBuilder)
	var keys []string
	for _, iv := range all {
		key := BucketKey(iv.End(now).In(loc), g)
		b, ok := byKey[key]
		if !ok {
			b = &bucketBuilder{byName: make(map[string]*ActivitySummary)}
			byKey[key] = b
			keys = append(keys, key)
		}
		b.add(iv, now)
	}

	// Keys are zero-padded local date strings, so lexicographic order is
	// chronological order.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	buckets := make([]Bucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, Bucket{Key: key, Activities: byKey[key].sorted()})
	}
	return buckets
}

// BucketKey computes the bucket key for a local end timestamp. It reads
// the local calendar fields directly; normalizing to UTC first would move
// intervals across the local midnight boundary.
func BucketKey(end time.Time, g Granularity) string {
	switch g {
	case GranularityWeek:
		// Week starts Sunday: back up to the most recent Sunday.
		sunday := end.AddDate(0, 0, -int(end.Weekday()))
		return fmt.Sprintf("%04d-%02d-%02d", sunday.Year(), sunday.Month(), sunday.Day())
	case GranularityMonth:
		return fmt.Sprintf("%04d-%02d", end.Year(), end.Month())
	case GranularityYear:
		return fmt.Sprintf("%04d", end.Year())
	default:
		return fmt.Sprintf("%04d-%02d-%02d", end.Year(), end.Month(), end.Day())
	}
}

type bucketBuilder struct {
	byName map[string]*ActivitySummary
	order  []string
}

func (b *bucketBuilder) add(iv activity.Interval, now time.Time) {
	s, ok := b.byName[iv.Name]
	if !ok {
		s = &ActivitySummary{
			Name:              iv.Name,
			ResidentDurations: make(map[string]time.Duration),
			Residents:         make(map[string]struct{}),
		}
		b.byName[iv.Name] = s
		b.order = append(b.order, iv.Name)
	}
	s.Duration += iv.Duration(now)
	for _, r := range iv.Residents {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		s.ResidentDurations[r.Name] += iv.ResidentDuration(r, now)
		s.Residents[r.Name] = struct{}{}
	}
}

func (b *bucketBuilder) sorted() []ActivitySummary {
	out := make([]ActivitySummary, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, *b.byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Duration > out[j].Duration
	})
	return out
}
