package schedule

import (
	"testing"

	"hitchup/internal/domain/rental"
	"hitchup/internal/domain/shared/civil"
)

func mondayTemplate() *WeeklyTemplate {
	tpl := NewWeeklyTemplate("trailer-1")
	tpl.Days["monday"] = []TemplateSlot{{StartTime: "09:00:00", EndTime: "17:00:00"}}
	return tpl
}

func TestStatusOnTemplateOnly(t *testing.T) {
	t.Parallel()

	r := Resolver{Template: mondayTemplate()}
	monday := civil.MustParse("2025-06-09") // a Monday
	tuesday := civil.MustParse("2025-06-10")

	if got := r.StatusOn(monday); got != StatusAvailable {
		t.Fatalf("monday with template slot = %s, want available", got)
	}
	if got := r.StatusOn(tuesday); got != StatusUnavailable {
		t.Fatalf("tuesday without slots = %s, want unavailable", got)
	}
}

func TestStatusOnBlockedOverridesTemplate(t *testing.T) {
	t.Parallel()

	monday := civil.MustParse("2025-06-09")
	r := Resolver{
		Template: mondayTemplate(),
		Blocked:  []BlockedPeriod{{ID: "p1", TrailerID: "trailer-1", Start: monday, End: monday}},
	}
	if got := r.StatusOn(monday); got != StatusBlocked {
		t.Fatalf("blocked monday = %s, want blocked", got)
	}
}

func TestStatusOnRentedWinsOverBlocked(t *testing.T) {
	t.Parallel()

	monday := civil.MustParse("2025-06-09")
	r := Resolver{
		Template: mondayTemplate(),
		Blocked:  []BlockedPeriod{{ID: "p1", TrailerID: "trailer-1", Start: monday, End: monday}},
		Rentals: []rental.Rental{{
			ID: "r1", TrailerID: "trailer-1",
			Start: monday, End: monday,
			Status: rental.StatusConfirmed,
		}},
	}
	if got := r.StatusOn(monday); got != StatusRented {
		t.Fatalf("rented+blocked monday = %s, want rented (rental has priority)", got)
	}
}

func TestStatusOnIgnoresNonOccupyingRentals(t *testing.T) {
	t.Parallel()

	monday := civil.MustParse("2025-06-09")
	for _, status := range []rental.Status{rental.StatusPending, rental.StatusCancelled, rental.StatusDeclined, rental.StatusCompleted} {
		r := Resolver{
			Template: mondayTemplate(),
			Rentals:  []rental.Rental{{ID: "r1", Start: monday, End: monday, Status: status}},
		}
		if got := r.StatusOn(monday); got != StatusAvailable {
			t.Fatalf("rental status %s should not occupy, got %s", status, got)
		}
	}
}

func TestStatusOnDeterministic(t *testing.T) {
	t.Parallel()

	r := Resolver{
		Template: mondayTemplate(),
		Blocked:  []BlockedPeriod{period("p1", "2025-06-03", "2025-06-05")},
		Rentals: []rental.Rental{{
			ID: "r1", Start: civil.MustParse("2025-06-04"), End: civil.MustParse("2025-06-06"),
			Status: rental.StatusActive,
		}},
	}
	for _, d := range civil.MustParse("2025-06-01").Range(civil.MustParse("2025-06-30")) {
		first := r.StatusOn(d)
		second := r.StatusOn(d)
		if first != second {
			t.Fatalf("resolver not deterministic on %s: %s then %s", d, first, second)
		}
	}
}

func TestCachedResolver(t *testing.T) {
	t.Parallel()

	monday := civil.MustParse("2025-06-09")
	cached := NewCachedResolver(Resolver{Template: mondayTemplate()})
	if got := cached.StatusOn(monday); got != StatusAvailable {
		t.Fatalf("cached status = %s, want available", got)
	}

	// The memo serves stale data until invalidated.
	cached.Blocked = []BlockedPeriod{{ID: "p1", Start: monday, End: monday}}
	if got := cached.StatusOn(monday); got != StatusAvailable {
		t.Fatalf("memoized status = %s, want available until invalidated", got)
	}
	cached.Invalidate()
	if got := cached.StatusOn(monday); got != StatusBlocked {
		t.Fatalf("status after invalidate = %s, want blocked", got)
	}
}

func TestRentalOnReturnsOccupyingRental(t *testing.T) {
	t.Parallel()

	monday := civil.MustParse("2025-06-09")
	r := Resolver{
		Rentals: []rental.Rental{
			{ID: "r1", Start: monday, End: monday, Status: rental.StatusCancelled},
			{ID: "r2", Start: monday, End: monday, Status: rental.StatusActive},
		},
	}
	got, ok := r.RentalOn(monday)
	if !ok || got.ID != "r2" {
		t.Fatalf("RentalOn = %+v ok=%v, want r2", got, ok)
	}
	if _, ok := r.RentalOn(monday.Next()); ok {
		t.Fatal("RentalOn should miss on uncovered date")
	}
}
