package availability

import (
	"errors"
	"sync"
)

var ErrActionInProgress = errors.New("availability: another calendar mutation is in progress")

// MutationGuard serializes calendar mutations per trailer. Block and unblock
// plans run as several sequential store writes, so a second mutation arriving
// mid-plan would interleave with the first.
type MutationGuard struct {
	mu   sync.Mutex
	busy map[string]bool
}

func NewMutationGuard() *MutationGuard {
	return &MutationGuard{busy: make(map[string]bool)}
}

// Acquire marks the trailer busy. It fails instead of waiting: callers surface
// the conflict to the owner rather than queueing mutations.
func (g *MutationGuard) Acquire(trailerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[trailerID] {
		return ErrActionInProgress
	}
	g.busy[trailerID] = true
	return nil
}

func (g *MutationGuard) Release(trailerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.busy, trailerID)
}
