package rentals

import (
	"context"

	"hitchup/internal/app/dto"
	"hitchup/internal/app/queries"
	"hitchup/internal/app/uow"
	"hitchup/internal/domain/shared/civil"
)

const (
	getRentalKey          = "rentals.get"
	listTrailerRentalsKey = "rentals.list_by_trailer"
)

type GetRentalQuery struct {
	RentalID string
}

func (q GetRentalQuery) Key() string { return getRentalKey }

type GetRentalHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetRentalHandler) Handle(ctx context.Context, q GetRentalQuery) (dto.RentalDetail, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.RentalDetail{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.RentalDetail{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	rental, err := unit.Rentals().ByID(ctx, q.RentalID)
	if err != nil {
		return dto.RentalDetail{}, err
	}
	return dto.MapRentalDetail(*rental), nil
}

var _ queries.Handler[GetRentalQuery, dto.RentalDetail] = (*GetRentalHandler)(nil)

// ListTrailerRentalsQuery returns the rentals overlapping a date span.
type ListTrailerRentalsQuery struct {
	TrailerID string
	From      civil.Date
	To        civil.Date
}

func (q ListTrailerRentalsQuery) Key() string { return listTrailerRentalsKey }

type ListTrailerRentalsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListTrailerRentalsHandler) Handle(ctx context.Context, q ListTrailerRentalsQuery) (dto.RentalCollection, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.RentalCollection{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.RentalCollection{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	rentals, err := unit.Rentals().ListByTrailer(ctx, q.TrailerID, q.From, q.To)
	if err != nil {
		return dto.RentalCollection{}, err
	}
	return dto.MapRentalCollection(rentals), nil
}

var _ queries.Handler[ListTrailerRentalsQuery, dto.RentalCollection] = (*ListTrailerRentalsHandler)(nil)
