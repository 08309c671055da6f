package availability

import (
	"context"
	"errors"
	"time"

	"hitchup/internal/app/commands"
	"hitchup/internal/app/dto"
	"hitchup/internal/app/outbox"
	"hitchup/internal/app/uow"
	domainschedule "hitchup/internal/domain/schedule"
	domainevents "hitchup/internal/domain/shared/events"
)

const updateTemplateKey = "calendar.template.update"

// UpdateTemplateCommand replaces the trailer's weekly availability template.
type UpdateTemplateCommand struct {
	TrailerID       string
	OwnerID         string
	Days            map[string][]dto.TemplateSlotDTO
	IdempotencyKeyV string
}

func (c UpdateTemplateCommand) Key() string { return updateTemplateKey }

func (c UpdateTemplateCommand) TrailerOwner() (string, string) { return c.TrailerID, c.OwnerID }

func (c UpdateTemplateCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c UpdateTemplateCommand) ResultPrototype() any { return &dto.WeeklyTemplateDTO{} }

type UpdateTemplateHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *UpdateTemplateHandler) Handle(ctx context.Context, cmd UpdateTemplateCommand) (*dto.WeeklyTemplateDTO, error) {
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

	template, err := unit.Templates().ByTrailer(ctx, cmd.TrailerID)
	if errors.Is(err, domainschedule.ErrTemplateNotFound) {
		template = domainschedule.NewWeeklyTemplate(cmd.TrailerID)
	} else if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for day, slots := range cmd.Days {
		if err := template.SetDay(day, dto.TemplateSlotsFromDTO(slots), now); err != nil {
			return nil, err
		}
	}
	if err := unit.Templates().Save(ctx, template); err != nil {
		return nil, err
	}

	evs := []domainevents.DomainEvent{domainschedule.TemplateUpdated{TrailerID: cmd.TrailerID, At: now}}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, evs); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	result := dto.MapWeeklyTemplate(template)
	return &result, nil
}

var _ commands.Handler[UpdateTemplateCommand, *dto.WeeklyTemplateDTO] = (*UpdateTemplateHandler)(nil)
