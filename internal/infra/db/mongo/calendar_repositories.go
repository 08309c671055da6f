package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrental "hitchup/internal/domain/rental"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
	domaintrailers "hitchup/internal/domain/trailers"
)

// TrailerRepository persists trailers in the trailers collection.
type TrailerRepository struct {
	col *mongo.Collection
}

func NewTrailerRepository(db *mongo.Database) *TrailerRepository {
	return &TrailerRepository{col: db.Collection("trailers")}
}

func (r *TrailerRepository) ByID(ctx context.Context, id domaintrailers.TrailerID) (*domaintrailers.Trailer, error) {
	var doc trailerDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintrailers.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *TrailerRepository) ListByOwner(ctx context.Context, owner domaintrailers.OwnerID) ([]*domaintrailers.Trailer, error) {
	return r.list(ctx, bson.M{"owner_id": string(owner)})
}

func (r *TrailerRepository) ListAll(ctx context.Context) ([]*domaintrailers.Trailer, error) {
	return r.list(ctx, bson.M{})
}

func (r *TrailerRepository) list(ctx context.Context, filter bson.M) ([]*domaintrailers.Trailer, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domaintrailers.Trailer
	for cur.Next(ctx) {
		var doc trailerDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cur.Err()
}

func (r *TrailerRepository) Save(ctx context.Context, trailer *domaintrailers.Trailer) error {
	doc := newTrailerDocument(trailer)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type trailerDocument struct {
	ID          string `bson:"_id"`
	OwnerID     string `bson:"owner_id"`
	Title       string `bson:"title"`
	Description string `bson:"description"`
	City        string `bson:"city"`
	State       string `bson:"state"`
	CreatedAt   int64  `bson:"created_at"`
	UpdatedAt   int64  `bson:"updated_at"`
}

func newTrailerDocument(t *domaintrailers.Trailer) trailerDocument {
	return trailerDocument{
		ID:          string(t.ID),
		OwnerID:     string(t.Owner),
		Title:       t.Title,
		Description: t.Description,
		City:        t.City,
		State:       string(t.State),
		CreatedAt:   t.CreatedAt.UnixMilli(),
		UpdatedAt:   t.UpdatedAt.UnixMilli(),
	}
}

func (d trailerDocument) toDomain() *domaintrailers.Trailer {
	return &domaintrailers.Trailer{
		ID:          domaintrailers.TrailerID(d.ID),
		Owner:       domaintrailers.OwnerID(d.OwnerID),
		Title:       d.Title,
		Description: d.Description,
		City:        d.City,
		State:       domaintrailers.State(d.State),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}

// TemplateRepository persists one weekly template document per trailer.
type TemplateRepository struct {
	col *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{col: db.Collection("weekly_templates")}
}

func (r *TemplateRepository) ByTrailer(ctx context.Context, trailerID string) (*domainschedule.WeeklyTemplate, error) {
	var doc templateDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": trailerID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainschedule.ErrTemplateNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *TemplateRepository) Save(ctx context.Context, tpl *domainschedule.WeeklyTemplate) error {
	if tpl.TrailerID == "" {
		return domainschedule.ErrTrailerIDRequired
	}
	doc := newTemplateDocument(tpl)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type templateDocument struct {
	ID        string                                   `bson:"_id"`
	Days      map[string][]domainschedule.TemplateSlot `bson:"days"`
	UpdatedAt int64                                    `bson:"updated_at"`
}

func newTemplateDocument(tpl *domainschedule.WeeklyTemplate) templateDocument {
	return templateDocument{
		ID:        tpl.TrailerID,
		Days:      tpl.Days,
		UpdatedAt: tpl.UpdatedAt.UnixMilli(),
	}
}

func (d templateDocument) toDomain() *domainschedule.WeeklyTemplate {
	days := d.Days
	if days == nil {
		days = make(map[string][]domainschedule.TemplateSlot)
	}
	return &domainschedule.WeeklyTemplate{
		TrailerID: d.ID,
		Days:      days,
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}

// BlockedPeriodRepository persists blocked periods keyed by period id.
type BlockedPeriodRepository struct {
	col *mongo.Collection
}

func NewBlockedPeriodRepository(db *mongo.Database) *BlockedPeriodRepository {
	return &BlockedPeriodRepository{col: db.Collection("blocked_periods")}
}

func (r *BlockedPeriodRepository) ListByTrailer(ctx context.Context, trailerID string) ([]domainschedule.BlockedPeriod, error) {
	cur, err := r.col.Find(ctx, bson.M{"trailer_id": trailerID},
		options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []domainschedule.BlockedPeriod
	for cur.Next(ctx) {
		var doc blockedPeriodDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		period, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, period)
	}
	return out, cur.Err()
}

func (r *BlockedPeriodRepository) Add(ctx context.Context, period domainschedule.BlockedPeriod) error {
	if period.ID == "" {
		return domainschedule.ErrPeriodIDRequired
	}
	if err := period.Validate(); err != nil {
		return err
	}
	existing, err := r.ListByTrailer(ctx, period.TrailerID)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.Overlaps(period) {
			return domainschedule.ErrPeriodOverlap
		}
	}
	_, err = r.col.InsertOne(ctx, newBlockedPeriodDocument(period))
	return err
}

func (r *BlockedPeriodRepository) Remove(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainschedule.ErrPeriodNotFound
	}
	return nil
}

type blockedPeriodDocument struct {
	ID        string `bson:"_id"`
	TrailerID string `bson:"trailer_id"`
	Start     string `bson:"start"`
	End       string `bson:"end"`
	Reason    string `bson:"reason,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

func newBlockedPeriodDocument(p domainschedule.BlockedPeriod) blockedPeriodDocument {
	return blockedPeriodDocument{
		ID:        p.ID,
		TrailerID: p.TrailerID,
		Start:     p.Start.String(),
		End:       p.End.String(),
		Reason:    p.Reason,
		CreatedAt: p.CreatedAt.UnixMilli(),
	}
}

func (d blockedPeriodDocument) toDomain() (domainschedule.BlockedPeriod, error) {
	start, err := civil.Parse(d.Start)
	if err != nil {
		return domainschedule.BlockedPeriod{}, err
	}
	end, err := civil.Parse(d.End)
	if err != nil {
		return domainschedule.BlockedPeriod{}, err
	}
	return domainschedule.BlockedPeriod{
		ID:        d.ID,
		TrailerID: d.TrailerID,
		Start:     start,
		End:       end,
		Reason:    d.Reason,
		CreatedAt: timestampToTime(d.CreatedAt),
	}, nil
}

// RentalRepository persists the rental projection fed by booking events.
type RentalRepository struct {
	col *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	return &RentalRepository{col: db.Collection("rental_projection")}
}

func (r *RentalRepository) ByID(ctx context.Context, id string) (*domainrental.Rental, error) {
	var doc rentalDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrental.ErrNotFound
		}
		return nil, err
	}
	rental, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *RentalRepository) ListByTrailer(ctx context.Context, trailerID string, from, to civil.Date) ([]domainrental.Rental, error) {
	filter := bson.M{
		"trailer_id": trailerID,
		"start":      bson.M{"$lte": to.String()},
		"end":        bson.M{"$gte": from.String()},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []domainrental.Rental
	for cur.Next(ctx) {
		var doc rentalDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rental, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rental)
	}
	return out, cur.Err()
}

func (r *RentalRepository) Upsert(ctx context.Context, rental *domainrental.Rental) error {
	doc := newRentalDocument(rental)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type rentalDocument struct {
	ID        string `bson:"_id"`
	TrailerID string `bson:"trailer_id"`
	RenterID  string `bson:"renter_id"`
	Start     string `bson:"start"`
	End       string `bson:"end"`
	Status    string `bson:"status"`
	UpdatedAt int64  `bson:"updated_at"`
}

func newRentalDocument(r *domainrental.Rental) rentalDocument {
	return rentalDocument{
		ID:        r.ID,
		TrailerID: r.TrailerID,
		RenterID:  r.RenterID,
		Start:     r.Start.String(),
		End:       r.End.String(),
		Status:    string(r.Status),
		UpdatedAt: r.UpdatedAt.UnixMilli(),
	}
}

func (d rentalDocument) toDomain() (domainrental.Rental, error) {
	start, err := civil.Parse(d.Start)
	if err != nil {
		return domainrental.Rental{}, err
	}
	end, err := civil.Parse(d.End)
	if err != nil {
		return domainrental.Rental{}, err
	}
	return domainrental.Rental{
		ID:        d.ID,
		TrailerID: d.TrailerID,
		RenterID:  d.RenterID,
		Start:     start,
		End:       end,
		Status:    domainrental.Status(d.Status),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
