package memory

import (
	"context"
	"errors"

	"hitchup/internal/app/uow"
	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	domaintrailers "hitchup/internal/domain/trailers"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	TrailersRepo  domaintrailers.Repository
	TemplatesRepo domainschedule.TemplateRepository
	BlockedRepo   domainschedule.BlockedPeriodRepository
	RentalsRepo   domainrental.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.TrailersRepo == nil || f.TemplatesRepo == nil || f.BlockedRepo == nil || f.RentalsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		trailers:  f.TrailersRepo,
		templates: f.TemplatesRepo,
		blocked:   f.BlockedRepo,
		rentals:   f.RentalsRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	trailers  domaintrailers.Repository
	templates domainschedule.TemplateRepository
	blocked   domainschedule.BlockedPeriodRepository
	rentals   domainrental.Repository
}

func (u *Unit) Trailers() domaintrailers.Repository {
	return u.trailers
}

func (u *Unit) Templates() domainschedule.TemplateRepository {
	return u.templates
}

func (u *Unit) BlockedPeriods() domainschedule.BlockedPeriodRepository {
	return u.blocked
}

func (u *Unit) Rentals() domainrental.Repository {
	return u.rentals
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
