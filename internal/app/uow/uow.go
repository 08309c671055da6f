package uow

import (
	"context"

	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	domaintrailers "hitchup/internal/domain/trailers"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Trailers() domaintrailers.Repository
	Templates() domainschedule.TemplateRepository
	BlockedPeriods() domainschedule.BlockedPeriodRepository
	Rentals() domainrental.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
