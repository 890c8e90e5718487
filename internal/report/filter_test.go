package report

import (
	"testing"
	"time"

	"github.com/foxseedlab/kaigolog/internal/activity"
)

func residentBuckets(t *testing.T) []Bucket {
	t.Helper()
	loc := time.UTC
	start := time.Date(2024, 3, 10, 10, 0, 0, 0, loc)
	end := start.Add(600 * time.Second)
	iv := closedInterval("Eating", start, end)
	iv.Residents = []activity.Resident{
		{Name: "P1", JoinedAt: start.Add(100 * time.Second)}, // contributes 500s
		{Name: "P2", JoinedAt: start.Add(400 * time.Second)}, // contributes 200s
	}
	return Summarize([]activity.Interval{iv}, nil, end, GranularityDay, loc)
}

func TestApply_EmptyFilterIsIdentity(t *testing.T) {
	buckets := residentBuckets(t)
	got := Apply(buckets, Filter{})
	if len(got) != 1 || got[0].Activities[0].Duration != 600*time.Second {
		t.Fatalf("empty filter must not change the summary: %+v", got)
	}
}

func TestApply_ResidentFilterRecomputesDuration(t *testing.T) {
	buckets := residentBuckets(t)

	got := Apply(buckets, Filter{Residents: []string{"P2"}})
	if len(got) != 1 || len(got[0].Activities) != 1 {
		t.Fatalf("unexpected shape: %+v", got)
	}
	entry := got[0].Activities[0]
	if entry.Duration != 200*time.Second {
		t.Fatalf("expected only P2's contribution, got %v", entry.Duration)
	}
	if _, ok := entry.ResidentDurations["P1"]; ok {
		t.Fatal("filtered-out resident must not appear in the entry")
	}
}

func TestApply_ResidentFilterChangesRanking(t *testing.T) {
	loc := time.UTC
	end := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)

	eating := closedInterval("Eating", end.Add(-time.Hour), end)
	eating.Residents = []activity.Resident{{Name: "P2", JoinedAt: end.Add(-10 * time.Minute)}}
	bathing := closedInterval("Bathing", end.Add(-30*time.Minute), end)
	bathing.Residents = []activity.Resident{{Name: "P2", JoinedAt: end.Add(-30 * time.Minute)}}

	buckets := Summarize([]activity.Interval{eating, bathing}, nil, end, GranularityDay, loc)
	if buckets[0].Activities[0].Name != "Eating" {
		t.Fatalf("precondition: Eating ranks first unfiltered, got %q", buckets[0].Activities[0].Name)
	}

	got := Apply(buckets, Filter{Residents: []string{"P2"}})
	// Bathing carries more of P2's time than Eating, so it now ranks first.
	if got[0].Activities[0].Name != "Bathing" {
		t.Fatalf("expected re-ranked order, got %q", got[0].Activities[0].Name)
	}
}

func TestApply_ActivityFilter(t *testing.T) {
	loc := time.UTC
	end := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
	history := []activity.Interval{
		closedInterval("Eating", end.Add(-time.Hour), end),
		closedInterval("Bathing", end.Add(-30*time.Minute), end),
	}
	buckets := Summarize(history, nil, end, GranularityDay, loc)

	got := Apply(buckets, Filter{Activities: []string{"Bathing"}})
	if len(got) != 1 || len(got[0].Activities) != 1 || got[0].Activities[0].Name != "Bathing" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestApply_FiltersAreANDConditions(t *testing.T) {
	buckets := residentBuckets(t)

	got := Apply(buckets, Filter{Activities: []string{"Eating"}, Residents: []string{"P1"}})
	if len(got) != 1 || got[0].Activities[0].Duration != 500*time.Second {
		t.Fatalf("unexpected result: %+v", got)
	}

	got = Apply(buckets, Filter{Activities: []string{"Bathing"}, Residents: []string{"P1"}})
	if len(got) != 0 {
		t.Fatalf("both conditions must hold: %+v", got)
	}
}

func TestApply_DropsZeroAndEmptyBuckets(t *testing.T) {
	buckets := residentBuckets(t)

	// No resident overlap: the entry goes, then the empty bucket.
	got := Apply(buckets, Filter{Residents: []string{"P3"}})
	if len(got) != 0 {
		t.Fatalf("expected empty bucket dropped, got %+v", got)
	}

	// Overlap with zero contributed time also drops the entry.
	loc := time.UTC
	start := time.Date(2024, 3, 10, 10, 0, 0, 0, loc)
	end := start.Add(time.Hour)
	iv := closedInterval("Eating", start, end)
	iv.Residents = []activity.Resident{{Name: "P4", JoinedAt: end}}
	got = Apply(Summarize([]activity.Interval{iv}, nil, end, GranularityDay, loc), Filter{Residents: []string{"P4"}})
	if len(got) != 0 {
		t.Fatalf("expected zero-duration entry dropped, got %+v", got)
	}
}
