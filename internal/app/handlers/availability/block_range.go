package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"hitchup/internal/app/commands"
	"hitchup/internal/app/dto"
	"hitchup/internal/app/outbox"
	"hitchup/internal/app/uow"
	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
	domainevents "hitchup/internal/domain/shared/events"
)

const blockRangeKey = "calendar.block"

var (
	ErrUnitOfWorkRequired = errors.New("availability: unit of work required")
	ErrNoDates            = errors.New("availability: no dates supplied")
	ErrDateInPast         = errors.New("availability: date is in the past")
	ErrDateRented         = errors.New("availability: date is covered by a rental")
	ErrDateAlreadyBlocked = errors.New("availability: date is already blocked")
)

// BlockRangeCommand blocks the given dates for a trailer. Contiguous runs
// collapse into one blocked period each.
type BlockRangeCommand struct {
	TrailerID       string
	OwnerID         string
	Dates           []string
	Reason          string
	Today           civil.Date
	IdempotencyKeyV string
}

func (c BlockRangeCommand) Key() string { return blockRangeKey }

func (c BlockRangeCommand) TrailerOwner() (string, string) { return c.TrailerID, c.OwnerID }

func (c BlockRangeCommand) Validate() error {
	if len(c.Dates) == 0 {
		return ErrNoDates
	}
	return nil
}

func (c BlockRangeCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c BlockRangeCommand) ResultPrototype() any { return &dto.BlockRangeResult{} }

type BlockRangeHandler struct {
	UoWFactory uow.UoWFactory
	Guard      *MutationGuard
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	IDGen      func() string
}

func (h *BlockRangeHandler) Handle(ctx context.Context, cmd BlockRangeCommand) (*dto.BlockRangeResult, error) {
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

	today := cmd.Today
	if today.IsZero() {
		today = civil.Today(time.Now())
	}
	dates, err := parseDates(cmd.Dates)
	if err != nil {
		return nil, err
	}

	existing, err := unit.BlockedPeriods().ListByTrailer(ctx, cmd.TrailerID)
	if err != nil {
		return nil, err
	}
	rentals, err := unit.Rentals().ListByTrailer(ctx, cmd.TrailerID, civil.Min(today, dates[0]), dates[len(dates)-1])
	if err != nil {
		return nil, err
	}
	for _, d := range dates {
		switch {
		case d.Before(today):
			return nil, ErrDateInPast
		case domainrental.AnyOccupies(rentals, d):
			return nil, ErrDateRented
		case domainschedule.AnyCovers(existing, d):
			return nil, ErrDateAlreadyBlocked
		}
	}

	now := time.Now().UTC()
	periods := domainschedule.PlanBlock(cmd.TrailerID, dates, cmd.Reason)
	evs := make([]domainevents.DomainEvent, 0, len(periods))
	result := &dto.BlockRangeResult{Created: make([]dto.BlockedPeriodDTO, 0, len(periods))}
	for i := range periods {
		periods[i].ID = h.newID()
		periods[i].CreatedAt = now
		if err := unit.BlockedPeriods().Add(ctx, periods[i]); err != nil {
			return nil, err
		}
		result.Created = append(result.Created, dto.MapBlockedPeriod(periods[i]))
		evs = append(evs, domainschedule.CalendarBlocked{
			TrailerID: cmd.TrailerID,
			OwnerID:   cmd.OwnerID,
			Start:     periods[i].Start,
			End:       periods[i].End,
			Reason:    cmd.Reason,
			At:        now,
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

func (h *BlockRangeHandler) newID() string {
	if h.IDGen != nil {
		return h.IDGen()
	}
	return uuid.NewString()
}

func beginIfNeeded(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, false, nil
	}
	if factory == nil {
		return nil, false, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	return unit, true, nil
}

func parseDates(raw []string) ([]civil.Date, error) {
	if len(raw) == 0 {
		return nil, ErrNoDates
	}
	dates := make([]civil.Date, 0, len(raw))
	for _, value := range raw {
		d, err := civil.Parse(value)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return sortedUnique(dates), nil
}

func sortedUnique(dates []civil.Date) []civil.Date {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	out := dates[:0]
	for _, d := range dates {
		if len(out) == 0 || out[len(out)-1] != d {
			out = append(out, d)
		}
	}
	return out
}

var _ commands.Handler[BlockRangeCommand, *dto.BlockRangeResult] = (*BlockRangeHandler)(nil)
