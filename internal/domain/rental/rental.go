package rental

import (
	"context"
	"errors"
	"time"

	"hitchup/internal/domain/shared/civil"
)

var ErrNotFound = errors.New("rental: not found")

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusDeclined  Status = "DECLINED"
)

// Occupying reports whether the status takes the trailer off the calendar.
// Pending requests and terminal states do not occupy dates.
func (s Status) Occupying() bool {
	return s == StatusConfirmed || s == StatusActive
}

// Rental is a booking owned by the external booking service. This service
// holds a read-only projection of it, maintained by the booking-events
// consumer; the calendar never mutates rentals.
type Rental struct {
	ID        string
	TrailerID string
	RenterID  string
	Start     civil.Date
	End       civil.Date
	Status    Status
	UpdatedAt time.Time
}

// Covers reports whether the date falls inside the rental's inclusive
// range, regardless of status.
func (r Rental) Covers(d civil.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Occupies reports whether the rental takes the date off the calendar.
func (r Rental) Occupies(d civil.Date) bool {
	return r.Status.Occupying() && r.Covers(d)
}

// AnyOccupies reports whether any rental in the list occupies the date.
func AnyOccupies(rentals []Rental, d civil.Date) bool {
	for _, r := range rentals {
		if r.Occupies(d) {
			return true
		}
	}
	return false
}

// Repository is the projection store. Upsert is used only by the
// booking-events consumer; everything else reads.
type Repository interface {
	ByID(ctx context.Context, id string) (*Rental, error)
	ListByTrailer(ctx context.Context, trailerID string, from, to civil.Date) ([]Rental, error)
	Upsert(ctx context.Context, r *Rental) error
}
