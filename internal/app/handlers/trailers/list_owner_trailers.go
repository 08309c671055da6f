package trailers

import (
	"context"

	"hitchup/internal/app/dto"
	"hitchup/internal/app/queries"
	"hitchup/internal/app/uow"
	domaintrailers "hitchup/internal/domain/trailers"
)

const listOwnerTrailersKey = "trailers.list_by_owner"

type ListOwnerTrailersQuery struct {
	OwnerID string
}

func (q ListOwnerTrailersQuery) Key() string { return listOwnerTrailersKey }

type ListOwnerTrailersHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListOwnerTrailersHandler) Handle(ctx context.Context, q ListOwnerTrailersQuery) (dto.TrailerCollection, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.TrailerCollection{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.TrailerCollection{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	trailers, err := unit.Trailers().ListByOwner(ctx, domaintrailers.OwnerID(q.OwnerID))
	if err != nil {
		return dto.TrailerCollection{}, err
	}
	return dto.MapTrailerCollection(trailers), nil
}

var _ queries.Handler[ListOwnerTrailersQuery, dto.TrailerCollection] = (*ListOwnerTrailersHandler)(nil)
