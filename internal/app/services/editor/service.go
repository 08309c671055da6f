package editor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hitchup/internal/app/commands"
	"hitchup/internal/app/dto"
	availabilityhandlers "hitchup/internal/app/handlers/availability"
	"hitchup/internal/app/uow"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
)

var (
	ErrSessionNotFound = errors.New("editor: session not found")
	ErrUnknownPointer  = errors.New("editor: unknown pointer kind")
	ErrUnknownAction   = errors.New("editor: unknown commit action")
	ErrEmptySelection  = errors.New("editor: nothing selected")
)

const defaultSessionTTL = 30 * time.Minute

// PointerEvent is one raw interaction step relayed by the calendar client.
type PointerEvent struct {
	Kind    string  `json:"kind"` // down, move, up, cancel
	Date    string  `json:"date,omitempty"`
	Pointer string  `json:"pointer,omitempty"` // mouse, touch
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type session struct {
	id        string
	trailerID string
	ownerID   string
	selection *domainschedule.Selection
	expiresAt time.Time

	// mu serializes access to selection. Pointer events from one client
	// overlap in flight; the reducer is not safe for concurrent use.
	mu sync.Mutex
}

// Service keeps per-owner date selections server side. A session wraps one
// trailer's selection state machine; commit turns the final selection into a
// block or unblock command on the bus.
type Service struct {
	Bus        commands.Bus
	UoWFactory uow.UoWFactory
	TTL        time.Duration
	Logger     *slog.Logger
	Clock      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(bus commands.Bus, factory uow.UoWFactory, logger *slog.Logger) *Service {
	return &Service{
		Bus:        bus,
		UoWFactory: factory,
		Logger:     logger,
		sessions:   make(map[string]*session),
	}
}

// Begin opens a selection session for a trailer. Dates covered by occupying
// rentals are frozen for the whole session lifetime.
func (s *Service) Begin(ctx context.Context, trailerID, ownerID string) (dto.SelectionState, error) {
	now := s.now()
	today := civil.Today(now)
	window := domainschedule.ViewWindow(today)

	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.SelectionState{}, err
	}
	defer unit.Rollback(ctx)

	rentals, err := unit.Rentals().ListByTrailer(ctx, trailerID, window.First.First(), window.Last.Last())
	if err != nil {
		return dto.SelectionState{}, err
	}
	occupied := func(d civil.Date) bool {
		for _, r := range rentals {
			if r.Occupies(d) {
				return true
			}
		}
		return false
	}

	sess := &session{
		id:        uuid.NewString(),
		trailerID: trailerID,
		ownerID:   ownerID,
		selection: domainschedule.NewSelection(today, occupied),
		expiresAt: now.Add(s.ttl()),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "selection session opened", "session_id", sess.id, "trailer_id", trailerID)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.state(ctx, sess)
}

// Toggle flips one date in or out of the selection.
func (s *Service) Toggle(ctx context.Context, sessionID, date string) (dto.SelectionState, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return dto.SelectionState{}, err
	}
	d, err := civil.Parse(date)
	if err != nil {
		return dto.SelectionState{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.selection.Toggle(d)
	return s.state(ctx, sess)
}

// Pointer feeds a raw pointer event into the selection state machine.
func (s *Service) Pointer(ctx context.Context, sessionID string, ev PointerEvent) (dto.SelectionState, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return dto.SelectionState{}, err
	}
	now := s.now()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	switch strings.ToLower(ev.Kind) {
	case "down":
		d, err := civil.Parse(ev.Date)
		if err != nil {
			return dto.SelectionState{}, err
		}
		sess.selection.PointerDown(d, pointerKind(ev.Pointer), now, ev.X, ev.Y)
	case "move":
		d, err := civil.Parse(ev.Date)
		if err != nil {
			return dto.SelectionState{}, err
		}
		sess.selection.PointerMove(d, now, ev.X, ev.Y)
	case "up":
		sess.selection.PointerUp(now)
	case "cancel":
		sess.selection.CancelDrag()
	default:
		return dto.SelectionState{}, ErrUnknownPointer
	}
	return s.state(ctx, sess)
}

// State reports the current selection and its block/unblock classification.
func (s *Service) State(ctx context.Context, sessionID string) (dto.SelectionState, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return dto.SelectionState{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.state(ctx, sess)
}

// Commit dispatches the selection as a block or unblock command and closes
// the session on success.
func (s *Service) Commit(ctx context.Context, sessionID, action, reason string) (any, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	selected := sess.selection.Selected()
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}
	dates := make([]string, 0, len(selected))
	for _, d := range selected {
		dates = append(dates, d.String())
	}

	var result any
	switch strings.ToLower(action) {
	case "block":
		result, err = commands.Dispatch[availabilityhandlers.BlockRangeCommand, *dto.BlockRangeResult](ctx, s.Bus, availabilityhandlers.BlockRangeCommand{
			TrailerID:       sess.trailerID,
			OwnerID:         sess.ownerID,
			Dates:           dates,
			Reason:          reason,
			IdempotencyKeyV: "selection:" + sess.id + ":block",
		})
	case "unblock":
		result, err = commands.Dispatch[availabilityhandlers.UnblockRangeCommand, *dto.UnblockRangeResult](ctx, s.Bus, availabilityhandlers.UnblockRangeCommand{
			TrailerID:       sess.trailerID,
			OwnerID:         sess.ownerID,
			Dates:           dates,
			IdempotencyKeyV: "selection:" + sess.id + ":unblock",
		})
	default:
		return nil, ErrUnknownAction
	}
	if err != nil {
		return nil, err
	}

	s.drop(sess.id)
	if s.Logger != nil {
		s.Logger.InfoContext(ctx, "selection committed", "session_id", sess.id, "action", action, "dates", len(dates))
	}
	return result, nil
}

// Cancel discards the session without touching the calendar.
func (s *Service) Cancel(sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Sweep drops expired sessions. Run it periodically.
func (s *Service) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, sess := range s.sessions {
		if sess.expiresAt.Before(now) {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}

// state snapshots the selection and its classification. Callers hold sess.mu.
func (s *Service) state(ctx context.Context, sess *session) (dto.SelectionState, error) {
	classification, err := s.classify(ctx, sess)
	if err != nil {
		return dto.SelectionState{}, err
	}
	return dto.MapSelectionState(sess.id, sess.trailerID, sess.selection, classification), nil
}

func (s *Service) classify(ctx context.Context, sess *session) (domainschedule.Classification, error) {
	if sess.selection.Count() == 0 {
		return domainschedule.Classification{}, nil
	}
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return domainschedule.Classification{}, err
	}
	defer unit.Rollback(ctx)

	blocked, err := unit.BlockedPeriods().ListByTrailer(ctx, sess.trailerID)
	if err != nil {
		return domainschedule.Classification{}, err
	}
	return sess.selection.Classify(blocked), nil
}

func (s *Service) lookup(sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.expiresAt.Before(s.now()) {
		delete(s.sessions, sessionID)
		return nil, ErrSessionNotFound
	}
	sess.expiresAt = s.now().Add(s.ttl())
	return sess, nil
}

func (s *Service) drop(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultSessionTTL
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func pointerKind(value string) domainschedule.PointerKind {
	if strings.EqualFold(value, "touch") {
		return domainschedule.PointerTouch
	}
	return domainschedule.PointerMouse
}
