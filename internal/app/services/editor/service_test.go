package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hitchup/internal/app/commands"
	availabilityapp "hitchup/internal/app/handlers/availability"
	appoutbox "hitchup/internal/app/outbox"
	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
	"hitchup/internal/infra/storage/memory"
)

// Fixed far-future clock so session dates are never in the past for the
// command handlers, which validate against the wall clock.
var testNow = time.Date(2030, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, memory.Factory) {
	t.Helper()
	factory := memory.Factory{
		TrailersRepo:  memory.NewTrailerRepository(),
		TemplatesRepo: memory.NewTemplateRepository(),
		BlockedRepo:   memory.NewBlockedPeriodRepository(),
		RentalsRepo:   memory.NewRentalRepository(),
	}

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, availabilityapp.BlockRangeCommand{}.Key(), &availabilityapp.BlockRangeHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    appoutbox.JSONEventEncoder{},
	})
	commands.RegisterHandler(bus, availabilityapp.UnblockRangeCommand{}.Key(), &availabilityapp.UnblockRangeHandler{
		UoWFactory: factory,
		Outbox:     memory.NewOutbox(),
		Encoder:    appoutbox.JSONEventEncoder{},
	})

	svc := NewService(bus, factory, nil)
	svc.Clock = func() time.Time { return testNow }
	return svc, factory
}

func TestSelectionLifecycleBlock(t *testing.T) {
	t.Parallel()

	svc, factory := newTestService(t)
	ctx := context.Background()

	state, err := svc.Begin(ctx, "trailer-1", "owner-1")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if state.SessionID == "" || state.TrailerID != "trailer-1" {
		t.Fatalf("unexpected initial state %+v", state)
	}

	for _, d := range []string{"2030-06-10", "2030-06-11", "2030-06-12"} {
		if state, err = svc.Toggle(ctx, state.SessionID, d); err != nil {
			t.Fatalf("toggle %s: %v", d, err)
		}
	}
	if len(state.Selected) != 3 || state.CanBlock != 3 || state.CanUnblock != 0 {
		t.Fatalf("unexpected selection state %+v", state)
	}

	if _, err := svc.Commit(ctx, state.SessionID, "block", "maintenance"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	periods, err := factory.BlockedRepo.ListByTrailer(ctx, "trailer-1")
	if err != nil {
		t.Fatalf("list periods: %v", err)
	}
	if len(periods) != 1 || periods[0].Start != civil.MustParse("2030-06-10") || periods[0].End != civil.MustParse("2030-06-12") {
		t.Fatalf("expected one period 2030-06-10..2030-06-12, got %+v", periods)
	}

	if _, err := svc.State(ctx, state.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session should be gone after commit, got %v", err)
	}
}

func TestSelectionDragSelectsRange(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	state, err := svc.Begin(ctx, "trailer-1", "owner-1")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	id := state.SessionID

	if _, err := svc.Pointer(ctx, id, PointerEvent{Kind: "down", Date: "2030-06-10", Pointer: "mouse", X: 100}); err != nil {
		t.Fatalf("pointer down: %v", err)
	}
	state, err = svc.Pointer(ctx, id, PointerEvent{Kind: "move", Date: "2030-06-12", X: 180})
	if err != nil {
		t.Fatalf("pointer move: %v", err)
	}
	if !state.Dragging {
		t.Fatal("moving onto another date should start a drag")
	}
	state, err = svc.Pointer(ctx, id, PointerEvent{Kind: "up"})
	if err != nil {
		t.Fatalf("pointer up: %v", err)
	}
	if state.Dragging {
		t.Fatal("drag should end on pointer up")
	}
	want := []string{"2030-06-10", "2030-06-11", "2030-06-12"}
	if len(state.Selected) != len(want) {
		t.Fatalf("selected %v, want %v", state.Selected, want)
	}
	for i, d := range want {
		if state.Selected[i] != d {
			t.Fatalf("selected %v, want %v", state.Selected, want)
		}
	}
}

func TestSelectionSkipsOccupiedDates(t *testing.T) {
	t.Parallel()

	svc, factory := newTestService(t)
	ctx := context.Background()
	err := factory.RentalsRepo.Upsert(ctx, &domainrental.Rental{
		ID:        "r1",
		TrailerID: "trailer-1",
		Start:     civil.MustParse("2030-06-11"),
		End:       civil.MustParse("2030-06-11"),
		Status:    domainrental.StatusConfirmed,
		UpdatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("seed rental: %v", err)
	}

	state, err := svc.Begin(ctx, "trailer-1", "owner-1")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	state, err = svc.Toggle(ctx, state.SessionID, "2030-06-11")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if len(state.Selected) != 0 {
		t.Fatalf("occupied date must not be selectable, got %v", state.Selected)
	}
}

func TestSelectionClassifiesBlockedDates(t *testing.T) {
	t.Parallel()

	svc, factory := newTestService(t)
	ctx := context.Background()
	err := factory.BlockedRepo.Add(ctx, domainschedule.BlockedPeriod{
		ID:        "p1",
		TrailerID: "trailer-1",
		Start:     civil.MustParse("2030-06-10"),
		End:       civil.MustParse("2030-06-11"),
	})
	if err != nil {
		t.Fatalf("seed period: %v", err)
	}

	state, err := svc.Begin(ctx, "trailer-1", "owner-1")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	state, err = svc.Toggle(ctx, state.SessionID, "2030-06-10")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if state.CanUnblock != 1 || state.CanBlock != 0 || !state.AllBlocked {
		t.Fatalf("expected an all-blocked selection, got %+v", state)
	}
}

func TestCommitRejectsEmptySelection(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	state, err := svc.Begin(context.Background(), "trailer-1", "owner-1")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if _, err := svc.Commit(context.Background(), state.SessionID, "block", ""); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}

func TestCommitRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	state, err := svc.Begin(ctx, "trailer-1", "owner-1")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if _, err = svc.Toggle(ctx, state.SessionID, "2030-06-10"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := svc.Commit(ctx, state.SessionID, "erase", ""); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestPointerRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	state, err := svc.Begin(context.Background(), "trailer-1", "owner-1")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if _, err := svc.Pointer(context.Background(), state.SessionID, PointerEvent{Kind: "hover"}); !errors.Is(err, ErrUnknownPointer) {
		t.Fatalf("expected ErrUnknownPointer, got %v", err)
	}
}

func TestLookupUnknownSession(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	if _, err := svc.State(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.Cancel("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound from cancel, got %v", err)
	}
}

func TestToggleConcurrentOnOneSession(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	state, err := svc.Begin(ctx, "trailer-1", "owner-1")
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	id := state.SessionID

	// Two writers flipping the same date concurrently. An even toggle total
	// must leave the date unselected whatever order the flips land in.
	const perWriter = 40
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, err := svc.Toggle(ctx, id, "2030-06-10"); err != nil {
					t.Errorf("toggle: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	state, err = svc.State(ctx, id)
	if err != nil {
		t.Fatalf("state failed: %v", err)
	}
	if len(state.Selected) != 0 {
		t.Fatalf("even toggle count should leave nothing selected, got %v", state.Selected)
	}
}

func TestSweepDropsExpiredSessions(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	svc.TTL = time.Minute

	now := testNow
	svc.Clock = func() time.Time { return now }
	if _, err := svc.Begin(context.Background(), "trailer-1", "owner-1"); err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	now = testNow.Add(30 * time.Second)
	if dropped := svc.Sweep(); dropped != 0 {
		t.Fatalf("fresh session swept, dropped=%d", dropped)
	}

	now = testNow.Add(2 * time.Minute)
	if dropped := svc.Sweep(); dropped != 1 {
		t.Fatalf("expected 1 expired session, dropped=%d", dropped)
	}
}
