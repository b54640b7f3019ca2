package orchestrator

import (
	"time"

	"github.com/specialistvlad/tutorburst/internal/session"
)

// RunResult is the outcome of one burst. Outcomes has exactly one entry per
// session, ordered by session index.
type RunResult struct {
	RunID    string
	Start    time.Time
	End      time.Time
	Outcomes []session.Outcome
}

// Duration is the wall-clock time needed to absorb the whole burst.
func (r *RunResult) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
