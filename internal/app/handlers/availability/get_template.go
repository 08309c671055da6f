package availability

import (
	"context"
	"errors"

	"hitchup/internal/app/dto"
	"hitchup/internal/app/queries"
	"hitchup/internal/app/uow"
	domainschedule "hitchup/internal/domain/schedule"
)

const getTemplateKey = "calendar.template.get"

type GetTemplateQuery struct {
	TrailerID string
}

func (q GetTemplateQuery) Key() string { return getTemplateKey }

type GetTemplateHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns the weekly template, or an empty one when the owner has not
// configured any hours yet. An empty template means no day is available.
func (h *GetTemplateHandler) Handle(ctx context.Context, q GetTemplateQuery) (dto.WeeklyTemplateDTO, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.WeeklyTemplateDTO{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.WeeklyTemplateDTO{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	template, err := unit.Templates().ByTrailer(ctx, q.TrailerID)
	if errors.Is(err, domainschedule.ErrTemplateNotFound) {
		template = domainschedule.NewWeeklyTemplate(q.TrailerID)
	} else if err != nil {
		return dto.WeeklyTemplateDTO{}, err
	}
	return dto.MapWeeklyTemplate(template), nil
}

var _ queries.Handler[GetTemplateQuery, dto.WeeklyTemplateDTO] = (*GetTemplateHandler)(nil)
