package availability

import (
	"context"
	"errors"
	"time"

	"hitchup/internal/app/dto"
	"hitchup/internal/app/queries"
	"hitchup/internal/app/uow"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
)

const getCalendarKey = "calendar.get"

var ErrMonthOutsideWindow = errors.New("availability: month outside the viewable window")

// GetCalendarQuery loads day statuses for a contiguous run of months. When
// FromMonth/ToMonth are empty the current month is returned; requested months
// are clamped to the viewable window around today.
type GetCalendarQuery struct {
	TrailerID string
	FromMonth string
	ToMonth   string
	Today     civil.Date
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.Calendar{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.Calendar{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	today := q.Today
	if today.IsZero() {
		today = civil.Today(time.Now())
	}
	window := domainschedule.ViewWindow(today)

	first, last, err := resolveMonthSpan(q, today, window)
	if err != nil {
		return dto.Calendar{}, err
	}

	template, err := unit.Templates().ByTrailer(ctx, q.TrailerID)
	if err != nil && !errors.Is(err, domainschedule.ErrTemplateNotFound) {
		return dto.Calendar{}, err
	}

	blocked, err := unit.BlockedPeriods().ListByTrailer(ctx, q.TrailerID)
	if err != nil {
		return dto.Calendar{}, err
	}

	rentals, err := unit.Rentals().ListByTrailer(ctx, q.TrailerID, first.First(), last.Last())
	if err != nil {
		return dto.Calendar{}, err
	}

	resolver := domainschedule.Resolver{Template: template, Blocked: blocked, Rentals: rentals}
	resolve := func(d civil.Date) (domainschedule.DayStatus, string) {
		status := resolver.StatusOn(d)
		if status != domainschedule.StatusRented {
			return status, ""
		}
		r, _ := resolver.RentalOn(d)
		return status, r.ID
	}

	cal := dto.Calendar{
		TrailerID:   q.TrailerID,
		WindowFirst: window.First.String(),
		WindowLast:  window.Last.String(),
		CanGoPrev:   window.CanGoPrev(first),
		CanGoNext:   window.CanGoNext(last),
	}
	for m := first; !m.After(last); m = m.AddMonths(1) {
		cal.Months = append(cal.Months, dto.MapCalendarMonth(m, resolve))
	}
	return cal, nil
}

func resolveMonthSpan(q GetCalendarQuery, today civil.Date, window domainschedule.Window) (civil.Month, civil.Month, error) {
	first := civil.MonthOf(today)
	last := first
	if q.FromMonth != "" {
		m, err := civil.ParseMonth(q.FromMonth)
		if err != nil {
			return civil.Month{}, civil.Month{}, err
		}
		first = m
	}
	if q.ToMonth != "" {
		m, err := civil.ParseMonth(q.ToMonth)
		if err != nil {
			return civil.Month{}, civil.Month{}, err
		}
		last = m
	}
	if last.Before(first) {
		first, last = last, first
	}
	if last.Before(window.First) || first.After(window.Last) {
		return civil.Month{}, civil.Month{}, ErrMonthOutsideWindow
	}
	return window.Clamp(first), window.Clamp(last), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
