package schedule

import (
	"context"
	"errors"
	"strings"
	"time"

	"hitchup/internal/domain/shared/civil"
)

var (
	ErrPeriodOrder      = errors.New("schedule: blocked period start must not be after end")
	ErrPeriodNotFound   = errors.New("schedule: blocked period not found")
	ErrPeriodOverlap    = errors.New("schedule: blocked period overlaps an existing one")
	ErrPeriodIDRequired = errors.New("schedule: blocked period id required")
)

// BlockedPeriod is an owner-declared inclusive date interval during which a
// trailer is manually unavailable, overriding the weekly template. Periods
// of one trailer never overlap; the unblock planner preserves that.
type BlockedPeriod struct {
	ID        string
	TrailerID string
	Start     civil.Date
	End       civil.Date
	Reason    string
	CreatedAt time.Time
}

// BlockedPeriodRepository is the external persistence collaborator. Add and
// Remove correspond to the create/delete calls the unblock plan issues
// sequentially; there is no batch-replace operation.
type BlockedPeriodRepository interface {
	ListByTrailer(ctx context.Context, trailerID string) ([]BlockedPeriod, error)
	Add(ctx context.Context, p BlockedPeriod) error
	Remove(ctx context.Context, id string) error
}

func (p BlockedPeriod) Validate() error {
	if strings.TrimSpace(p.TrailerID) == "" {
		return ErrTrailerIDRequired
	}
	if p.Start.After(p.End) {
		return ErrPeriodOrder
	}
	return nil
}

// Covers reports whether the date lies inside [Start, End]. Comparison is
// date-only; time-of-day never enters into it.
func (p BlockedPeriod) Covers(d civil.Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

func (p BlockedPeriod) Overlaps(other BlockedPeriod) bool {
	return !p.Start.After(other.End) && !other.Start.After(p.End)
}

// Dates enumerates every date of the period in ascending order.
func (p BlockedPeriod) Dates() []civil.Date {
	return p.Start.Range(p.End)
}

// Days counts the dates in the period.
func (p BlockedPeriod) Days() int {
	return p.Start.DaysUntil(p.End) + 1
}

// CoveringPeriod finds the period containing the date, if any.
func CoveringPeriod(periods []BlockedPeriod, d civil.Date) (BlockedPeriod, bool) {
	for _, p := range periods {
		if p.Covers(d) {
			return p, true
		}
	}
	return BlockedPeriod{}, false
}

// AnyCovers reports whether any period covers the date.
func AnyCovers(periods []BlockedPeriod, d civil.Date) bool {
	_, ok := CoveringPeriod(periods, d)
	return ok
}
