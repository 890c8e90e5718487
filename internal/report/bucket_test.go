package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/foxseedlab/kaigolog/internal/activity"
)

func closedInterval(name string, startAt, endAt time.Time) activity.Interval {
	iv := activity.NewInterval(name, startAt)
	iv.EndAt = &endAt
	return iv
}

func TestSummarize_AttributesToEndBucket(t *testing.T) {
	loc := time.UTC
	// Spans local midnight; the whole interval belongs to the day it ended.
	start := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)
	end := time.Date(2024, 3, 11, 0, 30, 0, 0, loc)
	history := []activity.Interval{closedInterval("Eating", start, end)}

	buckets := Summarize(history, nil, end, GranularityDay, loc)
	if len(buckets) != 1 {
		t.Fatalf("expected one bucket, got %d", len(buckets))
	}
	if buckets[0].Key != "2024-03-11" {
		t.Fatalf("expected end-day key, got %q", buckets[0].Key)
	}
	if got := buckets[0].Activities[0].Duration; got != time.Hour {
		t.Fatalf("interval must not be split: got %v", got)
	}
}

func TestSummarize_LocalDayBoundary(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 23:58 and 00:02 local are four minutes apart but land in different
	// day buckets. A UTC rendering would merge them.
	a := closedInterval("Eating",
		time.Date(2024, 3, 10, 23, 0, 0, 0, loc),
		time.Date(2024, 3, 10, 23, 58, 0, 0, loc))
	b := closedInterval("Eating",
		time.Date(2024, 3, 10, 23, 59, 0, 0, loc),
		time.Date(2024, 3, 11, 0, 2, 0, 0, loc))

	buckets := Summarize([]activity.Interval{a, b}, nil, time.Date(2024, 3, 11, 1, 0, 0, 0, loc), GranularityDay, loc)
	if len(buckets) != 2 {
		t.Fatalf("expected two day buckets, got %d", len(buckets))
	}
	if buckets[0].Key != "2024-03-11" || buckets[1].Key != "2024-03-10" {
		t.Fatalf("unexpected keys: %q, %q", buckets[0].Key, buckets[1].Key)
	}
}

func TestSummarize_WeekKeyIsMostRecentSunday(t *testing.T) {
	loc := time.UTC
	// 2024-03-13 is a Wednesday; its week starts Sunday 2024-03-10.
	end := time.Date(2024, 3, 13, 12, 0, 0, 0, loc)
	history := []activity.Interval{closedInterval("Eating", end.Add(-time.Hour), end)}

	buckets := Summarize(history, nil, end, GranularityWeek, loc)
	if buckets[0].Key != "2024-03-10" {
		t.Fatalf("expected Sunday key, got %q", buckets[0].Key)
	}

	// An interval ending on a Sunday keys to that same Sunday.
	sunday := time.Date(2024, 3, 10, 8, 0, 0, 0, loc)
	buckets = Summarize([]activity.Interval{closedInterval("Eating", sunday.Add(-time.Hour), sunday)}, nil, sunday, GranularityWeek, loc)
	if buckets[0].Key != "2024-03-10" {
		t.Fatalf("expected same-day Sunday key, got %q", buckets[0].Key)
	}
}

func TestBucketKey_MonthAndYear(t *testing.T) {
	end := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	if got := BucketKey(end, GranularityMonth); got != "2024-03" {
		t.Fatalf("month key: got %q", got)
	}
	if got := BucketKey(end, GranularityYear); got != "2024" {
		t.Fatalf("year key: got %q", got)
	}
}

func TestSummarize_ExcludesDeleted(t *testing.T) {
	loc := time.UTC
	end := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
	kept := closedInterval("Eating", end.Add(-time.Hour), end)
	dropped := closedInterval("Bathing", end.Add(-time.Hour), end)
	dropped.Deleted = true

	buckets := Summarize([]activity.Interval{kept, dropped}, nil, end, GranularityDay, loc)
	if len(buckets) != 1 || len(buckets[0].Activities) != 1 {
		t.Fatalf("expected single surviving activity, got %+v", buckets)
	}
	if buckets[0].Activities[0].Name != "Eating" {
		t.Fatalf("expected deleted interval excluded, got %q", buckets[0].Activities[0].Name)
	}
}

func TestSummarize_OpenIntervalCountsAgainstNow(t *testing.T) {
	loc := time.UTC
	start := time.Date(2024, 3, 10, 10, 0, 0, 0, loc)
	now := start.Add(45 * time.Minute)
	current := activity.NewInterval("Bathing", start)

	buckets := Summarize(nil, &current, now, GranularityDay, loc)
	if len(buckets) != 1 {
		t.Fatalf("expected one bucket, got %d", len(buckets))
	}
	if got := buckets[0].Activities[0].Duration; got != 45*time.Minute {
		t.Fatalf("expected running duration against now, got %v", got)
	}
}

func TestSummarize_RankedDescendingWithStableTies(t *testing.T) {
	loc := time.UTC
	end := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
	history := []activity.Interval{
		closedInterval("Reading", end.Add(-10*time.Minute), end),
		closedInterval("Eating", end.Add(-30*time.Minute), end),
		closedInterval("Piano", end.Add(-10*time.Minute), end),
	}

	buckets := Summarize(history, nil, end, GranularityDay, loc)
	got := buckets[0].Activities
	if got[0].Name != "Eating" {
		t.Fatalf("expected longest first, got %q", got[0].Name)
	}
	// Reading appeared before Piano and has the same duration; ties keep
	// first-seen order.
	if got[1].Name != "Reading" || got[2].Name != "Piano" {
		t.Fatalf("unexpected tie order: %q, %q", got[1].Name, got[2].Name)
	}
}

func TestSummarize_MergesSameActivityAcrossIntervals(t *testing.T) {
	loc := time.UTC
	end := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
	history := []activity.Interval{
		closedInterval("Eating", end.Add(-20*time.Minute), end),
		closedInterval("Eating", end.Add(-2*time.Hour), end.Add(-90*time.Minute)),
	}

	buckets := Summarize(history, nil, end, GranularityDay, loc)
	if len(buckets[0].Activities) != 1 {
		t.Fatalf("expected merged entry, got %d", len(buckets[0].Activities))
	}
	if got := buckets[0].Activities[0].Duration; got != 50*time.Minute {
		t.Fatalf("expected summed duration, got %v", got)
	}
}

func TestSummarize_ResidentContributions(t *testing.T) {
	loc := time.UTC
	start := time.Date(2024, 3, 10, 10, 0, 0, 0, loc)
	end := start.Add(time.Hour)
	iv := closedInterval("Eating", start, end)
	iv.Residents = []activity.Resident{
		{Name: "Alice", JoinedAt: start},
		{Name: "Bob", JoinedAt: start.Add(30 * time.Minute)},
		{Name: "", JoinedAt: start},        // blank names never surface
		{Name: "Carol", JoinedAt: end},     // joined at the very end
	}

	buckets := Summarize([]activity.Interval{iv}, nil, end, GranularityDay, loc)
	entry := buckets[0].Activities[0]
	if entry.Duration != time.Hour {
		t.Fatalf("activity duration must ignore participation, got %v", entry.Duration)
	}
	if got := entry.ResidentDurations["Alice"]; got != time.Hour {
		t.Fatalf("Alice: got %v", got)
	}
	if got := entry.ResidentDurations["Bob"]; got != 30*time.Minute {
		t.Fatalf("Bob: got %v", got)
	}
	if got := entry.ResidentDurations["Carol"]; got != 0 {
		t.Fatalf("Carol joined at end, got %v", got)
	}
	if _, ok := entry.Residents[""]; ok {
		t.Fatal("blank resident name must be excluded")
	}
	if len(entry.Residents) != 3 {
		t.Fatalf("expected three named residents, got %d", len(entry.Residents))
	}
}

func TestSummarize_DayScenario(t *testing.T) {
	loc := time.UTC
	// Eating 10:00-10:30, then Bathing still running, evaluated at 10:45.
	eatingStart := time.Date(2024, 1, 1, 10, 0, 0, 0, loc)
	switchAt := eatingStart.Add(30 * time.Minute)
	now := eatingStart.Add(45 * time.Minute)
	history := []activity.Interval{closedInterval("Eating", eatingStart, switchAt)}
	current := activity.NewInterval("Bathing", switchAt)

	buckets := Summarize(history, &current, now, GranularityDay, loc)
	if len(buckets) != 1 || buckets[0].Key != "2024-01-01" {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}
	entries := buckets[0].Activities
	if len(entries) != 2 {
		t.Fatalf("expected two activities, got %d", len(entries))
	}
	if entries[0].Name != "Eating" || entries[0].Duration != 30*time.Minute {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Name != "Bathing" || entries[1].Duration != 15*time.Minute {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	loc := time.UTC
	end := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
	iv := closedInterval("Eating", end.Add(-time.Hour), end)
	iv.Residents = []activity.Resident{{Name: "Alice", JoinedAt: end.Add(-time.Hour)}}
	history := []activity.Interval{iv, closedInterval("Bathing", end.Add(-30*time.Minute), end)}

	first := Summarize(history, nil, end, GranularityDay, loc)
	second := Summarize(history, nil, end, GranularityDay, loc)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("summaries differ across runs:\n%+v\n%+v", first, second)
	}
}

func TestParseGranularity(t *testing.T) {
	for _, in := range []string{"day", "Week", " MONTH ", "year"} {
		if _, err := ParseGranularity(in); err != nil {
			t.Fatalf("%q: %v", in, err)
		}
	}
	if _, err := ParseGranularity("fortnight"); err == nil {
		t.Fatal("expected error for unknown granularity")
	}
}
