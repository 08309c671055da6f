package schedule

import (
	"hitchup/internal/domain/shared/civil"
)

// Navigation is bounded to this window around the current month.
const (
	WindowMonthsBack    = 4
	WindowMonthsForward = 6
	// Mobile infinite scroll loads months in batches of this size.
	MonthBatchSize = 3
)

// Window is the inclusive month range the calendar may display.
type Window struct {
	First civil.Month
	Last  civil.Month
}

// ViewWindow builds the [-4, +6] month window around today.
func ViewWindow(today civil.Date) Window {
	current := civil.MonthOf(today)
	return Window{
		First: current.AddMonths(-WindowMonthsBack),
		Last:  current.AddMonths(WindowMonthsForward),
	}
}

func (w Window) Contains(m civil.Month) bool {
	return !m.Before(w.First) && !m.After(w.Last)
}

// Clamp forces a month into the window.
func (w Window) Clamp(m civil.Month) civil.Month {
	if m.Before(w.First) {
		return w.First
	}
	if m.After(w.Last) {
		return w.Last
	}
	return m
}

// ClampDates narrows an inclusive date range to the window, returning false
// when nothing of it remains visible.
func (w Window) ClampDates(from, to civil.Date) (civil.Date, civil.Date, bool) {
	lo := w.First.First()
	hi := w.Last.Last()
	if to.Before(lo) || from.After(hi) {
		return civil.Date{}, civil.Date{}, false
	}
	from = civil.Max(from, lo)
	to = civil.Min(to, hi)
	return from, to, true
}

// CanGoPrev and CanGoNext gate the month navigation controls.
func (w Window) CanGoPrev(m civil.Month) bool {
	return m.After(w.First)
}

func (w Window) CanGoNext(m civil.Month) bool {
	return m.Before(w.Last)
}

// MonthDays enumerates every date of the month for grid rendering.
func MonthDays(m civil.Month) []civil.Date {
	return m.First().Range(m.Last())
}

// Paginator tracks the contiguous run of months a scrolling view has
// loaded, clamped to the window. The mobile view appends or prepends a
// batch whenever the scroll position nears a content edge.
type Paginator struct {
	window Window
	first  civil.Month
	last   civil.Month
}

// NewPaginator starts with a single month, clamped into the window.
func NewPaginator(window Window, start civil.Month) *Paginator {
	start = window.Clamp(start)
	return &Paginator{window: window, first: start, last: start}
}

// Months lists the loaded months in order.
func (p *Paginator) Months() []civil.Month {
	months := make([]civil.Month, 0, 12)
	for m := p.first; !m.After(p.last); m = m.AddMonths(1) {
		months = append(months, m)
	}
	return months
}

// ExtendForward appends up to a batch of months, stopping at the window
// edge. It returns how many months were added.
func (p *Paginator) ExtendForward() int {
	added := 0
	for added < MonthBatchSize && p.last.Before(p.window.Last) {
		p.last = p.last.AddMonths(1)
		added++
	}
	return added
}

// ExtendBackward prepends up to a batch of months, stopping at the window
// edge. The returned count is what the view needs to restore its scroll
// anchor: it measures the anchor month's offset before and after insertion
// and shifts the scroll position by the difference.
func (p *Paginator) ExtendBackward() int {
	added := 0
	for added < MonthBatchSize && p.first.After(p.window.First) {
		p.first = p.first.AddMonths(-1)
		added++
	}
	return added
}

// AtStart and AtEnd report whether the pagination has hit a window edge.
func (p *Paginator) AtStart() bool {
	return !p.first.After(p.window.First)
}

func (p *Paginator) AtEnd() bool {
	return !p.last.Before(p.window.Last)
}
