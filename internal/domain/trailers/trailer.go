package trailers

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired    = errors.New("trailers: id is required")
	ErrOwnerRequired = errors.New("trailers: owner id is required")
	ErrTitleRequired = errors.New("trailers: title is required")
	ErrNotFound      = errors.New("trailers: not found")
	ErrNotListed     = errors.New("trailers: trailer is not listed")
)

type TrailerID string

type OwnerID string

type State string

const (
	StateDraft    State = "DRAFT"
	StateListed   State = "LISTED"
	StateUnlisted State = "UNLISTED"
)

// Trailer is the rentable resource a calendar hangs off. The marketplace
// catalog (photos, pricing, search) lives in another service; this one
// keeps only what availability needs.
type Trailer struct {
	ID          TrailerID
	Owner       OwnerID
	Title       string
	Description string
	City        string
	State       State
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository interface {
	ByID(ctx context.Context, id TrailerID) (*Trailer, error)
	ListByOwner(ctx context.Context, owner OwnerID) ([]*Trailer, error)
	ListAll(ctx context.Context) ([]*Trailer, error)
	Save(ctx context.Context, trailer *Trailer) error
}

type CreateParams struct {
	ID          TrailerID
	Owner       OwnerID
	Title       string
	Description string
	City        string
	Now         time.Time
}

func NewTrailer(params CreateParams) (*Trailer, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Trailer{
		ID:          params.ID,
		Owner:       params.Owner,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		City:        strings.TrimSpace(params.City),
		State:       StateDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (t *Trailer) List(now time.Time) {
	t.State = StateListed
	t.UpdatedAt = now.UTC()
}

func (t *Trailer) Unlist(now time.Time) {
	t.State = StateUnlisted
	t.UpdatedAt = now.UTC()
}

// OwnedBy reports whether the user may edit this trailer's calendar.
func (t *Trailer) OwnedBy(owner OwnerID) bool {
	return t.Owner == owner
}
