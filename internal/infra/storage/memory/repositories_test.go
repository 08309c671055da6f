package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
	domaintrailers "hitchup/internal/domain/trailers"
)

func blocked(id, trailerID, start, end string) domainschedule.BlockedPeriod {
	return domainschedule.BlockedPeriod{
		ID:        id,
		TrailerID: trailerID,
		Start:     civil.MustParse(start),
		End:       civil.MustParse(end),
	}
}

func TestBlockedPeriodRepositoryRejectsOverlap(t *testing.T) {
	t.Parallel()

	repo := NewBlockedPeriodRepository()
	ctx := context.Background()
	if err := repo.Add(ctx, blocked("p1", "trailer-1", "2025-06-10", "2025-06-12")); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if err := repo.Add(ctx, blocked("p2", "trailer-1", "2025-06-12", "2025-06-14")); !errors.Is(err, domainschedule.ErrPeriodOverlap) {
		t.Fatalf("expected ErrPeriodOverlap, got %v", err)
	}
	// Same range on another trailer is fine.
	if err := repo.Add(ctx, blocked("p3", "trailer-2", "2025-06-12", "2025-06-14")); err != nil {
		t.Fatalf("add on other trailer: %v", err)
	}
}

func TestBlockedPeriodRepositoryRequiresID(t *testing.T) {
	t.Parallel()

	repo := NewBlockedPeriodRepository()
	err := repo.Add(context.Background(), blocked("", "trailer-1", "2025-06-10", "2025-06-12"))
	if !errors.Is(err, domainschedule.ErrPeriodIDRequired) {
		t.Fatalf("expected ErrPeriodIDRequired, got %v", err)
	}
}

func TestBlockedPeriodRepositoryRemove(t *testing.T) {
	t.Parallel()

	repo := NewBlockedPeriodRepository()
	ctx := context.Background()
	if err := repo.Add(ctx, blocked("p1", "trailer-1", "2025-06-10", "2025-06-12")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.Remove(ctx, "p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.Remove(ctx, "p1"); !errors.Is(err, domainschedule.ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound, got %v", err)
	}
}

func TestBlockedPeriodRepositoryListsSorted(t *testing.T) {
	t.Parallel()

	repo := NewBlockedPeriodRepository()
	ctx := context.Background()
	for _, p := range []domainschedule.BlockedPeriod{
		blocked("p2", "trailer-1", "2025-06-20", "2025-06-21"),
		blocked("p1", "trailer-1", "2025-06-10", "2025-06-12"),
	} {
		if err := repo.Add(ctx, p); err != nil {
			t.Fatalf("add %s: %v", p.ID, err)
		}
	}
	got, err := repo.ListByTrailer(ctx, "trailer-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p2" {
		t.Fatalf("list not sorted by start: %+v", got)
	}
}

func TestRentalRepositoryFiltersWindow(t *testing.T) {
	t.Parallel()

	repo := NewRentalRepository()
	ctx := context.Background()
	rentals := []domainrental.Rental{
		{ID: "r1", TrailerID: "trailer-1", Start: civil.MustParse("2025-06-10"), End: civil.MustParse("2025-06-12"), Status: domainrental.StatusConfirmed},
		{ID: "r2", TrailerID: "trailer-1", Start: civil.MustParse("2025-07-01"), End: civil.MustParse("2025-07-03"), Status: domainrental.StatusConfirmed},
		{ID: "r3", TrailerID: "trailer-2", Start: civil.MustParse("2025-06-10"), End: civil.MustParse("2025-06-12"), Status: domainrental.StatusConfirmed},
	}
	for i := range rentals {
		if err := repo.Upsert(ctx, &rentals[i]); err != nil {
			t.Fatalf("upsert %s: %v", rentals[i].ID, err)
		}
	}

	got, err := repo.ListByTrailer(ctx, "trailer-1", civil.MustParse("2025-06-01"), civil.MustParse("2025-06-30"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("window filter returned %+v, want only r1", got)
	}

	if _, err := repo.ByID(ctx, "missing"); !errors.Is(err, domainrental.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTemplateRepositoryClonesOnReadAndWrite(t *testing.T) {
	t.Parallel()

	repo := NewTemplateRepository()
	ctx := context.Background()
	tpl := domainschedule.NewWeeklyTemplate("trailer-1")
	if err := tpl.SetDay("monday", []domainschedule.TemplateSlot{{StartTime: "09:00:00", EndTime: "17:00:00"}}, time.Now()); err != nil {
		t.Fatalf("set day: %v", err)
	}
	if err := repo.Save(ctx, tpl); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	tpl.Days["monday"] = nil

	got, err := repo.ByTrailer(ctx, "trailer-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Days["monday"]) != 1 {
		t.Fatalf("stored template mutated through caller reference: %+v", got.Days)
	}

	if _, err := repo.ByTrailer(ctx, "missing"); !errors.Is(err, domainschedule.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestTrailerRepositoryListByOwner(t *testing.T) {
	t.Parallel()

	repo := NewTrailerRepository()
	ctx := context.Background()
	now := time.Now()
	for _, spec := range []struct{ id, owner string }{
		{"tr-2", "owner-1"},
		{"tr-1", "owner-1"},
		{"tr-3", "owner-2"},
	} {
		trailer, err := domaintrailers.NewTrailer(domaintrailers.CreateParams{
			ID:    domaintrailers.TrailerID(spec.id),
			Owner: domaintrailers.OwnerID(spec.owner),
			Title: "trailer " + spec.id,
			Now:   now,
		})
		if err != nil {
			t.Fatalf("new trailer %s: %v", spec.id, err)
		}
		if err := repo.Save(ctx, trailer); err != nil {
			t.Fatalf("save %s: %v", spec.id, err)
		}
	}

	got, err := repo.ListByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "tr-1" || got[1].ID != "tr-2" {
		t.Fatalf("owner listing wrong: %+v", got)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 trailers, got %d", len(all))
	}
}
