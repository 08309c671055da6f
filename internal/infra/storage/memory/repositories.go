package memory

import (
	"context"
	"sort"
	"sync"

	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
	domaintrailers "hitchup/internal/domain/trailers"
)

// TrailerRepository is an in-memory implementation for demo and test setups.
type TrailerRepository struct {
	mu    sync.RWMutex
	items map[domaintrailers.TrailerID]*domaintrailers.Trailer
}

func NewTrailerRepository() *TrailerRepository {
	return &TrailerRepository{items: make(map[domaintrailers.TrailerID]*domaintrailers.Trailer)}
}

func (r *TrailerRepository) ByID(ctx context.Context, id domaintrailers.TrailerID) (*domaintrailers.Trailer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	trailer, ok := r.items[id]
	if !ok {
		return nil, domaintrailers.ErrNotFound
	}
	return cloneTrailer(trailer), nil
}

func (r *TrailerRepository) ListByOwner(ctx context.Context, owner domaintrailers.OwnerID) ([]*domaintrailers.Trailer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domaintrailers.Trailer
	for _, trailer := range r.items {
		if trailer.Owner == owner {
			out = append(out, cloneTrailer(trailer))
		}
	}
	sortTrailers(out)
	return out, nil
}

func (r *TrailerRepository) ListAll(ctx context.Context) ([]*domaintrailers.Trailer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domaintrailers.Trailer, 0, len(r.items))
	for _, trailer := range r.items {
		out = append(out, cloneTrailer(trailer))
	}
	sortTrailers(out)
	return out, nil
}

func (r *TrailerRepository) Save(ctx context.Context, trailer *domaintrailers.Trailer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[trailer.ID] = cloneTrailer(trailer)
	return nil
}

func cloneTrailer(t *domaintrailers.Trailer) *domaintrailers.Trailer {
	clone := *t
	return &clone
}

func sortTrailers(list []*domaintrailers.Trailer) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}

// TemplateRepository keeps one weekly template per trailer.
type TemplateRepository struct {
	mu    sync.RWMutex
	items map[string]*domainschedule.WeeklyTemplate
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{items: make(map[string]*domainschedule.WeeklyTemplate)}
}

func (r *TemplateRepository) ByTrailer(ctx context.Context, trailerID string) (*domainschedule.WeeklyTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.items[trailerID]
	if !ok {
		return nil, domainschedule.ErrTemplateNotFound
	}
	return cloneTemplate(tpl), nil
}

func (r *TemplateRepository) Save(ctx context.Context, tpl *domainschedule.WeeklyTemplate) error {
	if tpl.TrailerID == "" {
		return domainschedule.ErrTrailerIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[tpl.TrailerID] = cloneTemplate(tpl)
	return nil
}

func cloneTemplate(tpl *domainschedule.WeeklyTemplate) *domainschedule.WeeklyTemplate {
	clone := *tpl
	clone.Days = make(map[string][]domainschedule.TemplateSlot, len(tpl.Days))
	for day, slots := range tpl.Days {
		clone.Days[day] = append([]domainschedule.TemplateSlot(nil), slots...)
	}
	return &clone
}

// BlockedPeriodRepository stores blocked periods per trailer.
type BlockedPeriodRepository struct {
	mu    sync.RWMutex
	items map[string]domainschedule.BlockedPeriod
}

func NewBlockedPeriodRepository() *BlockedPeriodRepository {
	return &BlockedPeriodRepository{items: make(map[string]domainschedule.BlockedPeriod)}
}

func (r *BlockedPeriodRepository) ListByTrailer(ctx context.Context, trailerID string) ([]domainschedule.BlockedPeriod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domainschedule.BlockedPeriod
	for _, p := range r.items {
		if p.TrailerID == trailerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Start.Compare(out[j].Start); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *BlockedPeriodRepository) Add(ctx context.Context, period domainschedule.BlockedPeriod) error {
	if period.ID == "" {
		return domainschedule.ErrPeriodIDRequired
	}
	if err := period.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.TrailerID == period.TrailerID && existing.Overlaps(period) {
			return domainschedule.ErrPeriodOverlap
		}
	}
	r.items[period.ID] = period
	return nil
}

func (r *BlockedPeriodRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainschedule.ErrPeriodNotFound
	}
	delete(r.items, id)
	return nil
}

// RentalRepository stores the rental projection fed by booking events.
type RentalRepository struct {
	mu    sync.RWMutex
	items map[string]domainrental.Rental
}

func NewRentalRepository() *RentalRepository {
	return &RentalRepository{items: make(map[string]domainrental.Rental)}
}

func (r *RentalRepository) ByID(ctx context.Context, id string) (*domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rental, ok := r.items[id]
	if !ok {
		return nil, domainrental.ErrNotFound
	}
	return &rental, nil
}

func (r *RentalRepository) ListByTrailer(ctx context.Context, trailerID string, from, to civil.Date) ([]domainrental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domainrental.Rental
	for _, rental := range r.items {
		if rental.TrailerID != trailerID {
			continue
		}
		if rental.End.Before(from) || rental.Start.After(to) {
			continue
		}
		out = append(out, rental)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Start.Compare(out[j].Start); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *RentalRepository) Upsert(ctx context.Context, rental *domainrental.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rental.ID] = *rental
	return nil
}
