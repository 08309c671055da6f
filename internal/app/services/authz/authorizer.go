package authz

import (
	"context"
	"errors"

	"hitchup/internal/app/uow"
	domaintrailers "hitchup/internal/domain/trailers"
)

var (
	ErrOwnerRequired = errors.New("authz: owner id required")
	ErrNotOwner      = errors.New("authz: caller does not own the trailer")
)

// TrailerScoped is implemented by commands that mutate one trailer's calendar
// on behalf of an owner.
type TrailerScoped interface {
	TrailerOwner() (trailerID, ownerID string)
}

// OwnerAuthorizer rejects trailer mutations issued by anyone but the owner.
// Messages that are not trailer scoped pass through untouched.
type OwnerAuthorizer struct {
	Factory uow.UoWFactory
}

func (a OwnerAuthorizer) Authorize(ctx context.Context, message any) error {
	scoped, ok := message.(TrailerScoped)
	if !ok {
		return nil
	}
	trailerID, ownerID := scoped.TrailerOwner()
	if ownerID == "" {
		return ErrOwnerRequired
	}

	unit, err := a.Factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	defer unit.Rollback(ctx)

	trailer, err := unit.Trailers().ByID(ctx, domaintrailers.TrailerID(trailerID))
	if err != nil {
		return err
	}
	if !trailer.OwnedBy(domaintrailers.OwnerID(ownerID)) {
		return ErrNotOwner
	}
	return nil
}
