package schedule

import (
	"testing"
	"time"

	"hitchup/internal/domain/shared/civil"
)

var selToday = civil.MustParse("2025-06-01")

func newTestSelection(occupied ...civil.Date) *Selection {
	set := make(map[civil.Date]bool, len(occupied))
	for _, d := range occupied {
		set[d] = true
	}
	return NewSelection(selToday, func(d civil.Date) bool { return set[d] })
}

func TestToggleAddsAndRemoves(t *testing.T) {
	t.Parallel()

	s := newTestSelection()
	d := civil.MustParse("2025-06-05")
	s.Toggle(d)
	if !s.IsSelected(d) || s.Count() != 1 {
		t.Fatalf("toggle did not select %s", d)
	}
	s.Toggle(d)
	if s.IsSelected(d) || s.Count() != 0 {
		t.Fatalf("second toggle did not deselect %s", d)
	}
}

func TestToggleRejectsPastAndOccupied(t *testing.T) {
	t.Parallel()

	occupied := civil.MustParse("2025-06-07")
	s := newTestSelection(occupied)

	s.Toggle(civil.MustParse("2025-05-31"))
	if s.Count() != 0 {
		t.Fatal("past date must not be selectable")
	}
	s.Toggle(occupied)
	if s.Count() != 0 {
		t.Fatal("rental-covered date must not be selectable")
	}
}

func TestQuickClickIsToggleNotRange(t *testing.T) {
	t.Parallel()

	s := newTestSelection()
	d := civil.MustParse("2025-06-05")
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.PointerDown(d, PointerMouse, at, 100, 100)
	s.PointerUp(at.Add(150 * time.Millisecond))

	if s.Count() != 1 || !s.IsSelected(d) {
		t.Fatalf("press-release within 200ms should toggle exactly one date, selected=%v", s.Selected())
	}
}

func TestLongMousePressBecomesDrag(t *testing.T) {
	t.Parallel()

	s := newTestSelection()
	prior := civil.MustParse("2025-06-03")
	s.Toggle(prior)

	d := civil.MustParse("2025-06-05")
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.PointerDown(d, PointerMouse, at, 100, 100)
	s.PointerMove(d, at.Add(250*time.Millisecond), 100, 100)
	if !s.Dragging() {
		t.Fatal("mouse press past 200ms should enter drag")
	}
	s.PointerUp(at.Add(300 * time.Millisecond))

	// The drag replaced the prior discrete selection with the one-day range.
	if s.Count() != 1 || !s.IsSelected(d) || s.IsSelected(prior) {
		t.Fatalf("drag should replace selection, got %v", s.Selected())
	}
}

func TestDragRangeSkipsRentedDates(t *testing.T) {
	t.Parallel()

	rented := civil.MustParse("2025-06-07")
	s := newTestSelection(rented)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.PointerDown(civil.MustParse("2025-06-05"), PointerMouse, at, 0, 0)
	s.PointerMove(civil.MustParse("2025-06-08"), at.Add(50*time.Millisecond), 40, 0)
	s.PointerUp(at.Add(100 * time.Millisecond))

	want := []civil.Date{
		civil.MustParse("2025-06-05"),
		civil.MustParse("2025-06-06"),
		civil.MustParse("2025-06-08"),
	}
	got := s.Selected()
	if len(got) != len(want) {
		t.Fatalf("selected %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("selected %v, want %v", got, want)
		}
	}
}

func TestDragBackwardsNormalizesRange(t *testing.T) {
	t.Parallel()

	s := newTestSelection()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.PointerDown(civil.MustParse("2025-06-08"), PointerMouse, at, 0, 0)
	s.PointerMove(civil.MustParse("2025-06-05"), at.Add(50*time.Millisecond), -40, 0)
	s.PointerUp(at.Add(100 * time.Millisecond))

	if s.Count() != 4 {
		t.Fatalf("backwards drag selected %d dates, want 4", s.Count())
	}
	if !s.IsSelected(civil.MustParse("2025-06-05")) || !s.IsSelected(civil.MustParse("2025-06-08")) {
		t.Fatalf("backwards drag missing endpoints: %v", s.Selected())
	}
}

func TestTouchDragNeedsSlop(t *testing.T) {
	t.Parallel()

	s := newTestSelection()
	d := civil.MustParse("2025-06-05")
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Small jitter on the same date stays a tap.
	s.PointerDown(d, PointerTouch, at, 100, 100)
	s.PointerMove(d, at.Add(time.Second), 104, 103)
	if s.Dragging() {
		t.Fatal("movement under 10px must not start a touch drag")
	}
	s.PointerUp(at.Add(time.Second + 50*time.Millisecond))
	if s.Count() != 1 {
		t.Fatalf("touch tap should toggle, got %v", s.Selected())
	}

	// Crossing the slop threshold starts the drag.
	s.Clear()
	s.PointerDown(d, PointerTouch, at, 100, 100)
	s.PointerMove(d, at.Add(50*time.Millisecond), 100, 115)
	if !s.Dragging() {
		t.Fatal("movement past 10px should start a touch drag")
	}
}

func TestDragStartClearsDiscreteSelection(t *testing.T) {
	t.Parallel()

	s := newTestSelection()
	s.Toggle(civil.MustParse("2025-06-02"))
	s.Toggle(civil.MustParse("2025-06-20"))

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.PointerDown(civil.MustParse("2025-06-10"), PointerMouse, at, 0, 0)
	s.PointerMove(civil.MustParse("2025-06-11"), at.Add(10*time.Millisecond), 10, 0)
	if !s.Dragging() {
		t.Fatal("moving to another date should start the drag")
	}
	s.PointerUp(at.Add(20 * time.Millisecond))

	if s.IsSelected(civil.MustParse("2025-06-02")) || s.IsSelected(civil.MustParse("2025-06-20")) {
		t.Fatalf("drag should have cleared the discrete selection, got %v", s.Selected())
	}
	if s.Count() != 2 {
		t.Fatalf("expected the 2-day drag range, got %v", s.Selected())
	}
}

func TestCancelDragKeepsSelection(t *testing.T) {
	t.Parallel()

	s := newTestSelection()
	s.Toggle(civil.MustParse("2025-06-02"))
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.PointerDown(civil.MustParse("2025-06-10"), PointerMouse, at, 0, 0)
	s.CancelDrag()
	s.PointerUp(at.Add(10 * time.Millisecond)) // stray up after cancel

	if s.Count() != 1 || !s.IsSelected(civil.MustParse("2025-06-02")) {
		t.Fatalf("cancel should leave selection untouched, got %v", s.Selected())
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	periods := []BlockedPeriod{period("p1", "2025-06-10", "2025-06-12")}

	s := newTestSelection()
	if c := s.Classify(periods); c.CanBlock != 0 || c.CanUnblock != 0 || c.AllBlocked {
		t.Fatalf("empty selection classification %+v, want zeros", c)
	}

	s.Toggle(civil.MustParse("2025-06-10"))
	s.Toggle(civil.MustParse("2025-06-11"))
	if c := s.Classify(periods); c.CanUnblock != 2 || c.CanBlock != 0 || !c.AllBlocked {
		t.Fatalf("all-blocked selection classification %+v", c)
	}

	s.Toggle(civil.MustParse("2025-06-20"))
	if c := s.Classify(periods); c.CanUnblock != 2 || c.CanBlock != 1 || c.AllBlocked {
		t.Fatalf("mixed selection classification %+v", c)
	}
}
