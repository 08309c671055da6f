package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hitchup/internal/app/uow"
	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	domaintrailers "hitchup/internal/domain/trailers"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	TrailersRepo  domaintrailers.Repository
	TemplatesRepo domainschedule.TemplateRepository
	BlockedRepo   domainschedule.BlockedPeriodRepository
	RentalsRepo   domainrental.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(f.DB.ReadConcern())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:        f.DB,
		session:   session,
		trailers:  f.TrailersRepo,
		templates: f.TemplatesRepo,
		blocked:   f.BlockedRepo,
		rentals:   f.RentalsRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
