package schedule

import (
	"testing"
	"time"

	"hitchup/internal/domain/shared/civil"
)

func TestViewWindowBounds(t *testing.T) {
	t.Parallel()

	today := civil.MustParse("2025-06-15")
	w := ViewWindow(today)

	if w.First != (civil.Month{Year: 2025, Month: time.February}) {
		t.Fatalf("window first = %s, want 2025-02", w.First)
	}
	if w.Last != (civil.Month{Year: 2025, Month: time.December}) {
		t.Fatalf("window last = %s, want 2025-12", w.Last)
	}
	if !w.Contains(civil.MonthOf(today)) {
		t.Fatal("window must contain the current month")
	}
	if w.Contains(civil.Month{Year: 2025, Month: time.January}) {
		t.Fatal("window must exclude months before -4")
	}
	if w.Contains(civil.Month{Year: 2026, Month: time.January}) {
		t.Fatal("window must exclude months after +6")
	}
}

func TestViewWindowCrossesYearBoundary(t *testing.T) {
	t.Parallel()

	w := ViewWindow(civil.MustParse("2025-01-10"))
	if w.First != (civil.Month{Year: 2024, Month: time.September}) {
		t.Fatalf("window first = %s, want 2024-09", w.First)
	}
	if w.Last != (civil.Month{Year: 2025, Month: time.July}) {
		t.Fatalf("window last = %s, want 2025-07", w.Last)
	}
}

func TestWindowClamp(t *testing.T) {
	t.Parallel()

	w := ViewWindow(civil.MustParse("2025-06-15"))
	if got := w.Clamp(civil.Month{Year: 2024, Month: time.January}); got != w.First {
		t.Fatalf("clamp below = %s, want %s", got, w.First)
	}
	if got := w.Clamp(civil.Month{Year: 2027, Month: time.January}); got != w.Last {
		t.Fatalf("clamp above = %s, want %s", got, w.Last)
	}
	in := civil.Month{Year: 2025, Month: time.July}
	if got := w.Clamp(in); got != in {
		t.Fatalf("clamp inside = %s, want %s", got, in)
	}
}

func TestWindowClampDates(t *testing.T) {
	t.Parallel()

	w := ViewWindow(civil.MustParse("2025-06-15"))
	from, to, ok := w.ClampDates(civil.MustParse("2024-01-01"), civil.MustParse("2026-12-31"))
	if !ok {
		t.Fatal("overlapping range should clamp, not vanish")
	}
	if from != civil.MustParse("2025-02-01") || to != civil.MustParse("2025-12-31") {
		t.Fatalf("clamped to %s..%s", from, to)
	}
	if _, _, ok := w.ClampDates(civil.MustParse("2023-01-01"), civil.MustParse("2023-02-01")); ok {
		t.Fatal("range fully outside the window should report not visible")
	}
}

func TestPaginatorBatches(t *testing.T) {
	t.Parallel()

	w := ViewWindow(civil.MustParse("2025-06-15"))
	p := NewPaginator(w, civil.Month{Year: 2025, Month: time.June})

	if got := len(p.Months()); got != 1 {
		t.Fatalf("fresh paginator holds %d months, want 1", got)
	}
	if added := p.ExtendForward(); added != 3 {
		t.Fatalf("forward batch added %d, want 3", added)
	}
	if added := p.ExtendBackward(); added != 3 {
		t.Fatalf("backward batch added %d, want 3", added)
	}
	if got := len(p.Months()); got != 7 {
		t.Fatalf("paginator holds %d months, want 7", got)
	}
}

func TestPaginatorClampsAtWindowEdges(t *testing.T) {
	t.Parallel()

	w := ViewWindow(civil.MustParse("2025-06-15"))
	p := NewPaginator(w, civil.Month{Year: 2025, Month: time.November})

	if added := p.ExtendForward(); added != 1 {
		t.Fatalf("near-edge forward batch added %d, want 1 (clamped)", added)
	}
	if !p.AtEnd() {
		t.Fatal("paginator should report the forward edge")
	}
	if added := p.ExtendForward(); added != 0 {
		t.Fatalf("at the edge forward batch added %d, want 0", added)
	}

	for !p.AtStart() {
		p.ExtendBackward()
	}
	if p.Months()[0] != w.First {
		t.Fatalf("first loaded month %s, want window first %s", p.Months()[0], w.First)
	}
}

func TestPaginatorStartOutsideWindow(t *testing.T) {
	t.Parallel()

	w := ViewWindow(civil.MustParse("2025-06-15"))
	p := NewPaginator(w, civil.Month{Year: 2020, Month: time.January})
	if p.Months()[0] != w.First {
		t.Fatalf("out-of-window start should clamp to %s, got %s", w.First, p.Months()[0])
	}
}

func TestMonthDays(t *testing.T) {
	t.Parallel()

	days := MonthDays(civil.Month{Year: 2024, Month: time.February})
	if len(days) != 29 {
		t.Fatalf("February 2024 has %d days, want 29", len(days))
	}
	if days[0] != civil.MustParse("2024-02-01") || days[28] != civil.MustParse("2024-02-29") {
		t.Fatalf("unexpected month day bounds: %s..%s", days[0], days[28])
	}
}

func TestWindowNavigationGates(t *testing.T) {
	t.Parallel()

	w := ViewWindow(civil.MustParse("2025-06-15"))
	if w.CanGoPrev(w.First) {
		t.Fatal("prev must be disabled at the window start")
	}
	if w.CanGoNext(w.Last) {
		t.Fatal("next must be disabled at the window end")
	}
	mid := civil.Month{Year: 2025, Month: time.June}
	if !w.CanGoPrev(mid) || !w.CanGoNext(mid) {
		t.Fatal("navigation should be open mid-window")
	}
}
