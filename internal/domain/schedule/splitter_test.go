package schedule

import (
	"testing"

	"hitchup/internal/domain/shared/civil"
)

func period(id, start, end string) BlockedPeriod {
	return BlockedPeriod{
		ID:        id,
		TrailerID: "trailer-1",
		Start:     civil.MustParse(start),
		End:       civil.MustParse(end),
		Reason:    "maintenance",
	}
}

func TestSplitForUnblockMiddleDate(t *testing.T) {
	t.Parallel()

	p := period("p1", "2025-06-10", "2025-06-14")
	unblock := map[civil.Date]bool{civil.MustParse("2025-06-12"): true}

	got := SplitForUnblock(p, unblock)
	if len(got) != 2 {
		t.Fatalf("expected 2 replacement periods, got %d", len(got))
	}
	if got[0].Start != civil.MustParse("2025-06-10") || got[0].End != civil.MustParse("2025-06-11") {
		t.Fatalf("first replacement is %s..%s, want 2025-06-10..2025-06-11", got[0].Start, got[0].End)
	}
	if got[1].Start != civil.MustParse("2025-06-13") || got[1].End != civil.MustParse("2025-06-14") {
		t.Fatalf("second replacement is %s..%s, want 2025-06-13..2025-06-14", got[1].Start, got[1].End)
	}
	for _, r := range got {
		if r.Reason != p.Reason || r.TrailerID != p.TrailerID {
			t.Fatalf("replacement %+v did not inherit reason/trailer", r)
		}
	}
}

func TestSplitForUnblockFullPeriod(t *testing.T) {
	t.Parallel()

	p := period("p1", "2025-06-10", "2025-06-12")
	unblock := map[civil.Date]bool{}
	for _, d := range p.Dates() {
		unblock[d] = true
	}
	if got := SplitForUnblock(p, unblock); len(got) != 0 {
		t.Fatalf("full unblock should yield no replacements, got %d", len(got))
	}
}

func TestSplitForUnblockEdges(t *testing.T) {
	t.Parallel()

	p := period("p1", "2025-06-10", "2025-06-14")
	unblock := map[civil.Date]bool{
		civil.MustParse("2025-06-10"): true,
		civil.MustParse("2025-06-14"): true,
	}
	got := SplitForUnblock(p, unblock)
	if len(got) != 1 {
		t.Fatalf("expected 1 replacement, got %d", len(got))
	}
	if got[0].Start != civil.MustParse("2025-06-11") || got[0].End != civil.MustParse("2025-06-13") {
		t.Fatalf("replacement is %s..%s, want 2025-06-11..2025-06-13", got[0].Start, got[0].End)
	}
}

// The union of replacement dates must equal the period's dates minus the
// unblock set, and no replacement may contain an unblocked date.
func TestSplitForUnblockCoverageInvariant(t *testing.T) {
	t.Parallel()

	p := period("p1", "2025-06-01", "2025-06-07")
	dates := p.Dates()

	// Exercise every subset of a 7-day period.
	for mask := 0; mask < 1<<len(dates); mask++ {
		unblock := make(map[civil.Date]bool)
		for i, d := range dates {
			if mask&(1<<i) != 0 {
				unblock[d] = true
			}
		}
		replacements := SplitForUnblock(p, unblock)

		covered := make(map[civil.Date]bool)
		for _, r := range replacements {
			if err := r.Validate(); err != nil {
				t.Fatalf("mask %b: invalid replacement %+v: %v", mask, r, err)
			}
			for _, d := range r.Dates() {
				if covered[d] {
					t.Fatalf("mask %b: replacements overlap on %s", mask, d)
				}
				covered[d] = true
			}
		}
		for _, d := range dates {
			if unblock[d] && covered[d] {
				t.Fatalf("mask %b: unblocked date %s still covered", mask, d)
			}
			if !unblock[d] && !covered[d] {
				t.Fatalf("mask %b: date %s lost from coverage", mask, d)
			}
		}
	}
}

func TestGroupByPeriodIgnoresUncoveredDates(t *testing.T) {
	t.Parallel()

	periods := []BlockedPeriod{
		period("p1", "2025-06-10", "2025-06-12"),
		period("p2", "2025-06-20", "2025-06-22"),
	}
	dates := []civil.Date{
		civil.MustParse("2025-06-11"),
		civil.MustParse("2025-06-15"), // outside any period
		civil.MustParse("2025-06-20"),
		civil.MustParse("2025-06-21"),
	}
	grouped := GroupByPeriod(periods, dates)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(grouped))
	}
	if len(grouped["p1"]) != 1 || len(grouped["p2"]) != 2 {
		t.Fatalf("unexpected grouping: %+v", grouped)
	}
}

func TestPlanUnblockAcrossPeriods(t *testing.T) {
	t.Parallel()

	periods := []BlockedPeriod{
		period("p2", "2025-06-20", "2025-06-22"),
		period("p1", "2025-06-10", "2025-06-14"),
	}
	dates := []civil.Date{
		civil.MustParse("2025-06-12"),
		civil.MustParse("2025-06-20"),
		civil.MustParse("2025-06-21"),
		civil.MustParse("2025-06-22"),
	}
	plan := PlanUnblock(periods, dates)
	if len(plan.Remove) != 2 {
		t.Fatalf("expected 2 removals, got %d", len(plan.Remove))
	}
	// Deterministic order: ascending by period start.
	if plan.Remove[0].ID != "p1" || plan.Remove[1].ID != "p2" {
		t.Fatalf("removal order %s,%s, want p1,p2", plan.Remove[0].ID, plan.Remove[1].ID)
	}
	// p1 splits in two, p2 disappears entirely.
	if len(plan.Create) != 2 {
		t.Fatalf("expected 2 creations, got %d", len(plan.Create))
	}
	for i, c := range plan.Create {
		for j, other := range plan.Create {
			if i != j && c.Overlaps(other) {
				t.Fatalf("created periods overlap: %+v and %+v", c, other)
			}
		}
	}
}

func TestPlanUnblockNothingCovered(t *testing.T) {
	t.Parallel()

	plan := PlanUnblock([]BlockedPeriod{period("p1", "2025-06-10", "2025-06-12")}, []civil.Date{civil.MustParse("2025-07-01")})
	if !plan.Empty() {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}

func TestPlanBlockGroupsContiguousRuns(t *testing.T) {
	t.Parallel()

	dates := []civil.Date{
		civil.MustParse("2025-06-08"),
		civil.MustParse("2025-06-05"),
		civil.MustParse("2025-06-06"),
		civil.MustParse("2025-06-06"), // duplicate
	}
	got := PlanBlock("trailer-1", dates, "trip")
	if len(got) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(got))
	}
	if got[0].Start != civil.MustParse("2025-06-05") || got[0].End != civil.MustParse("2025-06-06") {
		t.Fatalf("first run is %s..%s", got[0].Start, got[0].End)
	}
	if got[1].Start != civil.MustParse("2025-06-08") || got[1].End != civil.MustParse("2025-06-08") {
		t.Fatalf("second run is %s..%s", got[1].Start, got[1].End)
	}
	if got[0].Reason != "trip" {
		t.Fatalf("reason not carried: %q", got[0].Reason)
	}
}

func TestPlanBlockEmptySelection(t *testing.T) {
	t.Parallel()

	if got := PlanBlock("trailer-1", nil, ""); got != nil {
		t.Fatalf("expected nil plan for empty selection, got %+v", got)
	}
}
