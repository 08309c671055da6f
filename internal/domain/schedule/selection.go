package schedule

import (
	"math"
	"sort"
	"time"

	"hitchup/internal/domain/shared/civil"
)

// PointerKind distinguishes mouse and touch interaction, which use
// different drag thresholds.
type PointerKind int

const (
	PointerMouse PointerKind = iota
	PointerTouch
)

const (
	// A mouse press held longer than this is a drag even without movement.
	clickMaxDuration = 200 * time.Millisecond
	// Touch movement beyond this many pixels is a drag.
	touchSlopPx = 10.0
)

// Classification summarizes a selection against the current blocked
// periods, deciding whether the commit action blocks or unblocks.
type Classification struct {
	CanBlock   int
	CanUnblock int
	AllBlocked bool
}

// Selection is the host editor's range-selection state machine: a set of
// selected dates plus transient drag bookkeeping. All transitions are
// reducer-style methods on this one owner; views only read from it.
// Selected dates are date-only and never include occupied or past days.
type Selection struct {
	today    civil.Date
	occupied func(civil.Date) bool

	selected map[civil.Date]bool

	pressed    bool
	dragging   bool
	pointer    PointerKind
	pressDate  civil.Date
	pressAt    time.Time
	pressX     float64
	pressY     float64
	dragAnchor civil.Date
	dragCursor civil.Date
}

// NewSelection builds an empty selection. occupied reports rental coverage
// for a date; a nil predicate means no date is occupied.
func NewSelection(today civil.Date, occupied func(civil.Date) bool) *Selection {
	if occupied == nil {
		occupied = func(civil.Date) bool { return false }
	}
	return &Selection{
		today:    today,
		occupied: occupied,
		selected: make(map[civil.Date]bool),
	}
}

// Toggle flips a single date in or out of the selection. Occupied and past
// dates are rejected before any state changes.
func (s *Selection) Toggle(d civil.Date) {
	if !s.selectable(d) {
		return
	}
	if s.selected[d] {
		delete(s.selected, d)
		return
	}
	s.selected[d] = true
}

// PointerDown records a press. Whether it becomes a click or a drag is
// decided by later movement and timing.
func (s *Selection) PointerDown(d civil.Date, kind PointerKind, at time.Time, x, y float64) {
	s.pressed = true
	s.dragging = false
	s.pointer = kind
	s.pressDate = d
	s.pressAt = at
	s.pressX = x
	s.pressY = y
	s.dragAnchor = d
	s.dragCursor = d
}

// PointerMove advances the cursor. The press escalates to a drag when the
// pointer reaches another date, a mouse press outlives the click window, or
// a touch strays past the slop distance. Entering a drag discards any prior
// discrete selection.
func (s *Selection) PointerMove(d civil.Date, at time.Time, x, y float64) {
	if !s.pressed {
		return
	}
	if !s.dragging && s.dragStarted(d, at, x, y) {
		s.selected = make(map[civil.Date]bool)
		s.dragging = true
	}
	if s.dragging {
		s.dragCursor = d
	}
}

// PointerUp ends the press. A drag materializes the inclusive range between
// anchor and cursor, min/max first so press order does not matter, filtered
// of occupied and past dates; the result replaces the selection. A plain
// click toggles the pressed date.
func (s *Selection) PointerUp(at time.Time) {
	if !s.pressed {
		return
	}
	s.pressed = false

	isDrag := s.dragging || (s.pointer == PointerMouse && at.Sub(s.pressAt) > clickMaxDuration)
	s.dragging = false
	if !isDrag {
		s.Toggle(s.pressDate)
		return
	}

	start := civil.Min(s.dragAnchor, s.dragCursor)
	end := civil.Max(s.dragAnchor, s.dragCursor)
	next := make(map[civil.Date]bool)
	for _, d := range start.Range(end) {
		if s.selectable(d) {
			next[d] = true
		}
	}
	s.selected = next
}

// CancelDrag aborts an in-progress press without committing anything, for
// when the global pointer-up listener fires outside the calendar.
func (s *Selection) CancelDrag() {
	s.pressed = false
	s.dragging = false
}

func (s *Selection) Dragging() bool {
	return s.dragging
}

// Clear resets the selection, keeping the occupancy predicate.
func (s *Selection) Clear() {
	s.selected = make(map[civil.Date]bool)
	s.pressed = false
	s.dragging = false
}

func (s *Selection) IsSelected(d civil.Date) bool {
	return s.selected[d]
}

func (s *Selection) Count() int {
	return len(s.selected)
}

// Selected returns the selection in ascending order.
func (s *Selection) Selected() []civil.Date {
	out := make([]civil.Date, 0, len(s.selected))
	for d := range s.selected {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Classify partitions the selection into blocked and non-blocked dates.
// AllBlocked holds only when every selected date is blocked, which flips
// the commit action from block to unblock. An empty selection classifies
// to zeros and disables the commit.
func (s *Selection) Classify(periods []BlockedPeriod) Classification {
	var c Classification
	for d := range s.selected {
		if AnyCovers(periods, d) {
			c.CanUnblock++
		} else {
			c.CanBlock++
		}
	}
	c.AllBlocked = c.CanUnblock > 0 && c.CanBlock == 0
	return c
}

func (s *Selection) selectable(d civil.Date) bool {
	return !d.Before(s.today) && !s.occupied(d)
}

func (s *Selection) dragStarted(d civil.Date, at time.Time, x, y float64) bool {
	if d != s.pressDate {
		return true
	}
	switch s.pointer {
	case PointerTouch:
		return math.Hypot(x-s.pressX, y-s.pressY) > touchSlopPx
	default:
		return at.Sub(s.pressAt) > clickMaxDuration
	}
}
