package availability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hitchup/internal/app/commands"
	"hitchup/internal/app/dto"
	"hitchup/internal/app/outbox"
	"hitchup/internal/app/uow"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
	domainevents "hitchup/internal/domain/shared/events"
)

const unblockRangeKey = "calendar.unblock"

// UnblockRangeCommand removes the given dates from the trailer's blocked
// periods. A period unblocked in the middle is replaced by the remaining
// contiguous runs on either side. Dates not covered by any period are ignored.
type UnblockRangeCommand struct {
	TrailerID       string
	OwnerID         string
	Dates           []string
	IdempotencyKeyV string
}

func (c UnblockRangeCommand) Key() string { return unblockRangeKey }

func (c UnblockRangeCommand) TrailerOwner() (string, string) { return c.TrailerID, c.OwnerID }

func (c UnblockRangeCommand) Validate() error {
	if len(c.Dates) == 0 {
		return ErrNoDates
	}
	return nil
}

func (c UnblockRangeCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c UnblockRangeCommand) ResultPrototype() any { return &dto.UnblockRangeResult{} }

type UnblockRangeHandler struct {
	UoWFactory uow.UoWFactory
	Guard      *MutationGuard
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	IDGen      func() string
	Logger     *slog.Logger
}

// Handle executes the unblock plan as sequential store writes: every removal
// first, then every replacement. A failure mid-plan aborts the remaining
// writes; the store keeps the writes that already landed, so the handler logs
// how far it got before returning the error.
func (h *UnblockRangeHandler) Handle(ctx context.Context, cmd UnblockRangeCommand) (*dto.UnblockRangeResult, error) {
	if h.Guard != nil {
		if err := h.Guard.Acquire(cmd.TrailerID); err != nil {
			return nil, err
		}
		defer h.Guard.Release(cmd.TrailerID)
	}

	unit, managed, err := beginIfNeeded(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	dates, err := parseDates(cmd.Dates)
	if err != nil {
		return nil, err
	}

	existing, err := unit.BlockedPeriods().ListByTrailer(ctx, cmd.TrailerID)
	if err != nil {
		return nil, err
	}

	plan := domainschedule.PlanUnblock(existing, dates)
	if plan.Empty() {
		return &dto.UnblockRangeResult{Removed: []string{}, Created: []dto.BlockedPeriodDTO{}}, nil
	}

	now := time.Now().UTC()
	result := &dto.UnblockRangeResult{
		Removed: make([]string, 0, len(plan.Remove)),
		Created: make([]dto.BlockedPeriodDTO, 0, len(plan.Create)),
	}
	evs := make([]domainevents.DomainEvent, 0, len(plan.Remove))

	for _, period := range plan.Remove {
		if err := unit.BlockedPeriods().Remove(ctx, period.ID); err != nil {
			h.logPartial(ctx, cmd.TrailerID, result, err)
			return nil, fmt.Errorf("remove period %s: %w", period.ID, err)
		}
		result.Removed = append(result.Removed, period.ID)
		evs = append(evs, domainschedule.CalendarUnblocked{
			TrailerID: cmd.TrailerID,
			OwnerID:   cmd.OwnerID,
			Start:     period.Start,
			End:       period.End,
			At:        now,
		})
	}

	remaindersByOrigin := make(map[string][]civil.Date)
	for i := range plan.Create {
		origin := originPeriodID(plan.Remove, plan.Create[i])
		plan.Create[i].ID = h.newID()
		plan.Create[i].CreatedAt = now
		if err := unit.BlockedPeriods().Add(ctx, plan.Create[i]); err != nil {
			h.logPartial(ctx, cmd.TrailerID, result, err)
			return nil, fmt.Errorf("recreate remainder of %s: %w", origin, err)
		}
		result.Created = append(result.Created, dto.MapBlockedPeriod(plan.Create[i]))
		remaindersByOrigin[origin] = append(remaindersByOrigin[origin], plan.Create[i].Start)
	}
	for origin, starts := range remaindersByOrigin {
		evs = append(evs, domainschedule.CalendarPeriodSplit{
			TrailerID:  cmd.TrailerID,
			PeriodID:   origin,
			Remainders: starts,
			At:         now,
		})
	}

	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return result, nil
}

func (h *UnblockRangeHandler) logPartial(ctx context.Context, trailerID string, result *dto.UnblockRangeResult, err error) {
	if h.Logger == nil {
		return
	}
	h.Logger.ErrorContext(ctx, "unblock plan aborted mid-flight",
		"trailer_id", trailerID,
		"removed", len(result.Removed),
		"recreated", len(result.Created),
		"error", err,
	)
}

// originPeriodID finds the removed period a replacement was carved from.
// Removed periods never overlap, so the first one covering the replacement's
// start is the origin.
func originPeriodID(removed []domainschedule.BlockedPeriod, replacement domainschedule.BlockedPeriod) string {
	for _, p := range removed {
		if p.Covers(replacement.Start) {
			return p.ID
		}
	}
	return ""
}

func (h *UnblockRangeHandler) newID() string {
	if h.IDGen != nil {
		return h.IDGen()
	}
	return uuid.NewString()
}

var _ commands.Handler[UnblockRangeCommand, *dto.UnblockRangeResult] = (*UnblockRangeHandler)(nil)
