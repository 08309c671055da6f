package schedule

import (
	"hitchup/internal/domain/rental"
	"hitchup/internal/domain/shared/civil"
)

// DayStatus is the resolved availability classification of one calendar
// date. It is derived, never persisted.
type DayStatus string

const (
	StatusAvailable   DayStatus = "available"
	StatusUnavailable DayStatus = "unavailable"
	StatusBlocked     DayStatus = "blocked"
	StatusRented      DayStatus = "rented"
)

// Resolver computes day statuses for one trailer from the three data
// sources fetched into memory for the visible window. Resolution is a pure
// function of the inputs.
type Resolver struct {
	Template *WeeklyTemplate
	Blocked  []BlockedPeriod
	Rentals  []rental.Rental
}

// StatusOn resolves the date's status, first match wins:
// occupying rental > blocked period > template slot > unavailable.
func (r Resolver) StatusOn(d civil.Date) DayStatus {
	if rental.AnyOccupies(r.Rentals, d) {
		return StatusRented
	}
	if AnyCovers(r.Blocked, d) {
		return StatusBlocked
	}
	if r.Template.HasAvailabilityOn(d) {
		return StatusAvailable
	}
	return StatusUnavailable
}

// RentalOn returns the occupying rental covering the date, if any. Used by
// the viewport to open the read-only rental detail ahead of any selection
// handling.
func (r Resolver) RentalOn(d civil.Date) (rental.Rental, bool) {
	for _, candidate := range r.Rentals {
		if candidate.Occupies(d) {
			return candidate, true
		}
	}
	return rental.Rental{}, false
}

// CachedResolver memoizes statuses per date. The viewport resolves every
// visible day on each interaction pass, so repeated lookups must not rescan
// the period and rental lists. Drop the cache whenever the underlying data
// is refetched.
type CachedResolver struct {
	Resolver
	cache map[civil.Date]DayStatus
}

func NewCachedResolver(r Resolver) *CachedResolver {
	return &CachedResolver{Resolver: r, cache: make(map[civil.Date]DayStatus)}
}

func (c *CachedResolver) StatusOn(d civil.Date) DayStatus {
	if status, ok := c.cache[d]; ok {
		return status
	}
	status := c.Resolver.StatusOn(d)
	c.cache[d] = status
	return status
}

// Invalidate clears the memo after a refetch.
func (c *CachedResolver) Invalidate() {
	c.cache = make(map[civil.Date]DayStatus)
}
