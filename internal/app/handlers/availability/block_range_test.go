package availability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	appoutbox "hitchup/internal/app/outbox"
	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
	"hitchup/internal/infra/storage/memory"
)

func newTestFactory() memory.Factory {
	return memory.Factory{
		TrailersRepo:  memory.NewTrailerRepository(),
		TemplatesRepo: memory.NewTemplateRepository(),
		BlockedRepo:   memory.NewBlockedPeriodRepository(),
		RentalsRepo:   memory.NewRentalRepository(),
	}
}

func seqIDGen() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func listPeriods(t *testing.T, factory memory.Factory, trailerID string) []domainschedule.BlockedPeriod {
	t.Helper()
	periods, err := factory.BlockedRepo.ListByTrailer(context.Background(), trailerID)
	if err != nil {
		t.Fatalf("list periods: %v", err)
	}
	return periods
}

func seedPeriod(t *testing.T, factory memory.Factory, id, trailerID, start, end string) {
	t.Helper()
	err := factory.BlockedRepo.Add(context.Background(), domainschedule.BlockedPeriod{
		ID:        id,
		TrailerID: trailerID,
		Start:     civil.MustParse(start),
		End:       civil.MustParse(end),
		Reason:    "maintenance",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed period %s: %v", id, err)
	}
}

func seedRental(t *testing.T, factory memory.Factory, id, trailerID, start, end string, status domainrental.Status) {
	t.Helper()
	err := factory.RentalsRepo.Upsert(context.Background(), &domainrental.Rental{
		ID:        id,
		TrailerID: trailerID,
		RenterID:  "renter-1",
		Start:     civil.MustParse(start),
		End:       civil.MustParse(end),
		Status:    status,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed rental %s: %v", id, err)
	}
}

func TestBlockRangeCollapsesContiguousRuns(t *testing.T) {
	t.Parallel()

	factory := newTestFactory()
	h := &BlockRangeHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    appoutbox.JSONEventEncoder{},
		IDGen:      seqIDGen(),
	}

	res, err := h.Handle(context.Background(), BlockRangeCommand{
		TrailerID: "trailer-1",
		OwnerID:   "owner-1",
		Dates:     []string{"2025-06-12", "2025-06-10", "2025-06-11", "2025-06-15"},
		Reason:    "maintenance",
		Today:     civil.MustParse("2025-06-01"),
	})
	if err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if len(res.Created) != 2 {
		t.Fatalf("expected 2 created periods, got %d", len(res.Created))
	}
	if res.Created[0].Start != "2025-06-10" || res.Created[0].End != "2025-06-12" {
		t.Fatalf("first period is %s..%s, want 2025-06-10..2025-06-12", res.Created[0].Start, res.Created[0].End)
	}
	if res.Created[1].Start != "2025-06-15" || res.Created[1].End != "2025-06-15" {
		t.Fatalf("second period is %s..%s, want 2025-06-15..2025-06-15", res.Created[1].Start, res.Created[1].End)
	}

	stored := listPeriods(t, factory, "trailer-1")
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored periods, got %d", len(stored))
	}
	for _, p := range stored {
		if p.ID == "" || p.Reason != "maintenance" {
			t.Fatalf("stored period %+v missing id or reason", p)
		}
	}
}

func TestBlockRangeRejectsPastDate(t *testing.T) {
	t.Parallel()

	h := &BlockRangeHandler{UoWFactory: newTestFactory(), IDGen: seqIDGen()}
	_, err := h.Handle(context.Background(), BlockRangeCommand{
		TrailerID: "trailer-1",
		Dates:     []string{"2025-05-30"},
		Today:     civil.MustParse("2025-06-01"),
	})
	if !errors.Is(err, ErrDateInPast) {
		t.Fatalf("expected ErrDateInPast, got %v", err)
	}
}

func TestBlockRangeRejectsRentedDate(t *testing.T) {
	t.Parallel()

	factory := newTestFactory()
	seedRental(t, factory, "r1", "trailer-1", "2025-06-20", "2025-06-22", domainrental.StatusConfirmed)

	h := &BlockRangeHandler{UoWFactory: factory, IDGen: seqIDGen()}
	_, err := h.Handle(context.Background(), BlockRangeCommand{
		TrailerID: "trailer-1",
		Dates:     []string{"2025-06-21"},
		Today:     civil.MustParse("2025-06-01"),
	})
	if !errors.Is(err, ErrDateRented) {
		t.Fatalf("expected ErrDateRented, got %v", err)
	}
}

func TestBlockRangeIgnoresNonOccupyingRental(t *testing.T) {
	t.Parallel()

	factory := newTestFactory()
	seedRental(t, factory, "r1", "trailer-1", "2025-06-20", "2025-06-22", domainrental.StatusCancelled)

	h := &BlockRangeHandler{UoWFactory: factory, IDGen: seqIDGen()}
	_, err := h.Handle(context.Background(), BlockRangeCommand{
		TrailerID: "trailer-1",
		Dates:     []string{"2025-06-21"},
		Today:     civil.MustParse("2025-06-01"),
	})
	if err != nil {
		t.Fatalf("cancelled rental should not block the date: %v", err)
	}
}

func TestBlockRangeRejectsAlreadyBlockedDate(t *testing.T) {
	t.Parallel()

	factory := newTestFactory()
	seedPeriod(t, factory, "p1", "trailer-1", "2025-06-10", "2025-06-12")

	h := &BlockRangeHandler{UoWFactory: factory, IDGen: seqIDGen()}
	_, err := h.Handle(context.Background(), BlockRangeCommand{
		TrailerID: "trailer-1",
		Dates:     []string{"2025-06-11"},
		Today:     civil.MustParse("2025-06-01"),
	})
	if !errors.Is(err, ErrDateAlreadyBlocked) {
		t.Fatalf("expected ErrDateAlreadyBlocked, got %v", err)
	}
}

func TestBlockRangeRejectsEmptyDates(t *testing.T) {
	t.Parallel()

	h := &BlockRangeHandler{UoWFactory: newTestFactory()}
	_, err := h.Handle(context.Background(), BlockRangeCommand{TrailerID: "trailer-1"})
	if !errors.Is(err, ErrNoDates) {
		t.Fatalf("expected ErrNoDates, got %v", err)
	}
}

func TestBlockRangeGuardRejectsConcurrentMutation(t *testing.T) {
	t.Parallel()

	guard := NewMutationGuard()
	if err := guard.Acquire("trailer-1"); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	h := &BlockRangeHandler{UoWFactory: newTestFactory(), Guard: guard, IDGen: seqIDGen()}
	_, err := h.Handle(context.Background(), BlockRangeCommand{
		TrailerID: "trailer-1",
		Dates:     []string{"2025-06-10"},
		Today:     civil.MustParse("2025-06-01"),
	})
	if !errors.Is(err, ErrActionInProgress) {
		t.Fatalf("expected ErrActionInProgress, got %v", err)
	}

	guard.Release("trailer-1")
	if err := guard.Acquire("trailer-1"); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
}
