package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hitchup/internal/app/uow"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
	domaintrailers "hitchup/internal/domain/trailers"
	"hitchup/internal/infra/storage/s3"
)

// SnapshotWorker periodically renders every listed trailer's calendar as an
// iCal document and archives it in object storage. External calendar apps
// subscribe to the archived copies instead of hitting the API.
type SnapshotWorker struct {
	Factory  uow.UoWFactory
	Uploader s3.Uploader
	Interval time.Duration
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Run archives snapshots on every tick until the context ends.
func (w *SnapshotWorker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.SnapshotAll(ctx); err != nil && w.Logger != nil {
				w.Logger.ErrorContext(ctx, "calendar snapshot run failed", "error", err)
			}
		}
	}
}

// SnapshotAll archives one snapshot per listed trailer.
func (w *SnapshotWorker) SnapshotAll(ctx context.Context) error {
	if w.Factory == nil || w.Uploader == nil {
		return errors.New("export: snapshot worker not wired")
	}
	unit, err := w.Factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	defer unit.Rollback(ctx)

	trailers, err := unit.Trailers().ListAll(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	count := 0
	for _, trailer := range trailers {
		if trailer.State != domaintrailers.StateListed {
			continue
		}
		if err := w.snapshotOne(ctx, unit, trailer); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		count++
	}
	if w.Logger != nil {
		w.Logger.InfoContext(ctx, "calendar snapshots archived", "count", count)
	}
	return firstErr
}

func (w *SnapshotWorker) snapshotOne(ctx context.Context, unit uow.UnitOfWork, trailer *domaintrailers.Trailer) error {
	now := w.now()
	today := civil.Today(now)
	window := domainschedule.ViewWindow(today)

	blocked, err := unit.BlockedPeriods().ListByTrailer(ctx, string(trailer.ID))
	if err != nil {
		return err
	}
	rentals, err := unit.Rentals().ListByTrailer(ctx, string(trailer.ID), window.First.First(), window.Last.Last())
	if err != nil {
		return err
	}

	body := Render(Calendar{
		TrailerID:    string(trailer.ID),
		TrailerTitle: trailer.Title,
		Blocked:      blocked,
		Rentals:      rentals,
		GeneratedAt:  now,
	})
	key := fmt.Sprintf("calendars/%s/%s.ics", trailer.ID, today)
	_, err = w.Uploader.Upload(ctx, key, bytes.NewReader(body), "text/calendar")
	return err
}

func (w *SnapshotWorker) now() time.Time {
	if w.Clock != nil {
		return w.Clock()
	}
	return time.Now()
}
