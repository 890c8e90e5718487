package report

import (
	"sort"
	"time"
)

// Filter restricts a summary to allow-listed activity names and resident
// names. An empty list means "all". The two lists are independent AND
// conditions; membership within each list is an OR.
type Filter struct {
	Activities []string
	Residents  []string
}

func (f Filter) empty() bool {
	return len(f.Activities) == 0 && len(f.Residents) == 0
}

// Apply filters bucketed summaries. Under a resident filter an entry's
// displayed duration is recomputed as the sum of only the allow-listed
// residents' contributions, which also changes the ranking. Entries left
// with zero duration are dropped, then empty buckets.
func Apply(buckets []Bucket, f Filter) []Bucket {
	if f.empty() {
		return buckets
	}

	allowedActivity := toSet(f.Activities)
	allowedResident := toSet(f.Residents)

	out := make([]Bucket, 0, len(buckets))
	for _, bucket := range buckets {
		kept := make([]ActivitySummary, 0, len(bucket.Activities))
		for _, entry := range bucket.Activities {
			if len(allowedActivity) > 0 {
				if _, ok := allowedActivity[entry.Name]; !ok {
					continue
				}
			}
			if len(allowedResident) > 0 {
				restricted := restrictToResidents(entry, allowedResident)
				if restricted == nil {
					continue
				}
				entry = *restricted
			}
			if entry.Duration == 0 {
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			continue
		}
		sort.SliceStable(kept, func(i, j int) bool {
			return kept[i].Duration > kept[j].Duration
		})
		out = append(out, Bucket{Key: bucket.Key, Activities: kept})
	}
	return out
}

// restrictToResidents narrows an entry to the allow-listed residents,
// summing only their contributed durations. Returns nil when the entry has
// no resident overlap with the allow-list.
func restrictToResidents(entry ActivitySummary, allowed map[string]struct{}) *ActivitySummary {
	var total time.Duration
	durations := make(map[string]time.Duration)
	residents := make(map[string]struct{})
	matched := false
	for name := range entry.Residents {
		if _, ok := allowed[name]; !ok {
			continue
		}
		matched = true
		residents[name] = struct{}{}
		if d, ok := entry.ResidentDurations[name]; ok {
			durations[name] = d
			total += d
		}
	}
	if !matched {
		return nil
	}
	return &ActivitySummary{
		Name:              entry.Name,
		Duration:          total,
		ResidentDurations: durations,
		Residents:         residents,
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}
