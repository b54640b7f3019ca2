package orchestrator

import (
	"time"

	"github.com/specialistvlad/tutorburst/internal/session"
)

// Observer receives lifecycle notifications. Implementations must be safe
// for concurrent use; SessionStarted and SessionFinished are called from
// every session goroutine.
type Observer interface {
	SessionStarted(index int)
	SessionFinished(o session.Outcome)
	BurstFinished(sessions int, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) SessionStarted(int)               {}
func (nopObserver) SessionFinished(session.Outcome)  {}
func (nopObserver) BurstFinished(int, time.Duration) {}
