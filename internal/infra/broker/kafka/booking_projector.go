package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"hitchup/internal/app/uow"
	domainrental "hitchup/internal/domain/rental"
	"hitchup/internal/domain/shared/civil"
)

// DedupeStore marks processed event ids so redeliveries are skipped.
type DedupeStore interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// BookingProjector consumes booking lifecycle events published by the
// marketplace and maintains the local rental projection. The calendar never
// writes rentals on its own; this is the only writer.
type BookingProjector struct {
	Factory uow.UoWFactory
	Dedupe  DedupeStore
	Logger  *slog.Logger
}

type bookingEnvelope struct {
	ID   string           `json:"id"`
	Type string           `json:"type"`
	Data bookingEventData `json:"data"`
}

type bookingEventData struct {
	BookingID string `json:"booking_id"`
	TrailerID string `json:"trailer_id"`
	RenterID  string `json:"renter_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Status    string `json:"status"`
}

func (p *BookingProjector) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var env bookingEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		// Poison messages are logged and dropped, not retried forever.
		if p.Logger != nil {
			p.Logger.WarnContext(ctx, "undecodable booking event dropped", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
		return nil
	}
	if p.Dedupe != nil && env.ID != "" {
		seen, err := p.Dedupe.Seen(ctx, env.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	rental, err := env.Data.toRental()
	if err != nil {
		if p.Logger != nil {
			p.Logger.WarnContext(ctx, "invalid booking event dropped", "event_id", env.ID, "error", err)
		}
		return nil
	}

	unit, err := p.Factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()
	if err := unit.Rentals().Upsert(ctx, rental); err != nil {
		return err
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true

	if p.Logger != nil {
		p.Logger.InfoContext(ctx, "rental projection updated",
			"rental_id", rental.ID, "trailer_id", rental.TrailerID, "status", rental.Status)
	}
	return nil
}

func (d bookingEventData) toRental() (*domainrental.Rental, error) {
	if d.BookingID == "" || d.TrailerID == "" {
		return nil, fmt.Errorf("kafka: booking event missing ids")
	}
	start, err := civil.Parse(d.Start)
	if err != nil {
		return nil, fmt.Errorf("kafka: booking event start: %w", err)
	}
	end, err := civil.Parse(d.End)
	if err != nil {
		return nil, fmt.Errorf("kafka: booking event end: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("kafka: booking event range inverted")
	}
	return &domainrental.Rental{
		ID:        d.BookingID,
		TrailerID: d.TrailerID,
		RenterID:  d.RenterID,
		Start:     start,
		End:       end,
		Status:    domainrental.Status(d.Status),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

var _ MessageHandler = (*BookingProjector)(nil)
