package session

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/tutorburst/internal/driver"
)

// Status is the lifecycle state of a session.
type Status int32

const (
	Pending Status = iota
	Running
	Succeeded
	Failed
	TimedOut
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == Succeeded || s == Failed || s == TimedOut
}

// ErrInvalidTransition is returned when a status change would move
// backwards or leave a terminal state.
var ErrInvalidTransition = errors.New("invalid session status transition")

// Session is one student. Only the goroutine running it may call Start and
// Finish; Outcome is safe to call once that goroutine has been joined.
type Session struct {
	Index  int
	Handle driver.Handle

	status atomic.Int32
	start  time.Time
	end    time.Time
	err    error
}

// New returns a Pending session owning h.
func New(index int, h driver.Handle) *Session {
	return &Session{Index: index, Handle: h}
}

// Status returns the current status.
func (s *Session) Status() Status {
	return Status(s.status.Load())
}

// Start moves the session from Pending to Running and stamps its start time.
func (s *Session) Start(now time.Time) error {
	if !s.status.CompareAndSwap(int32(Pending), int32(Running)) {
		return fmt.Errorf("%w: session %d is %s, cannot start", ErrInvalidTransition, s.Index, s.Status())
	}
	s.start = now
	return nil
}

// Finish moves a Running session into the terminal status and records the
// error detail, if any.
func (s *Session) Finish(status Status, err error, now time.Time) error {
	if !status.Terminal() {
		return fmt.Errorf("%w: %s is not a terminal status", ErrInvalidTransition, status)
	}
	if !s.status.CompareAndSwap(int32(Running), int32(status)) {
		return fmt.Errorf("%w: session %d is %s, cannot finish as %s", ErrInvalidTransition, s.Index, s.Status(), status)
	}
	s.end = now
	s.err = err
	return nil
}

// Close releases the session's handle.
func (s *Session) Close() error {
	if s.Handle == nil {
		return nil
	}
	return s.Handle.Close()
}

// Outcome is an immutable snapshot of a finished session.
type Outcome struct {
	Index  int
	Status Status
	Start  time.Time
	End    time.Time
	Err    error
}

// Duration is the wall-clock time the session spent running.
func (o Outcome) Duration() time.Duration {
	if o.Start.IsZero() || o.End.IsZero() {
		return 0
	}
	return o.End.Sub(o.Start)
}

// Outcome snapshots the session.
func (s *Session) Outcome() Outcome {
	return Outcome{
		Index:  s.Index,
		Status: s.Status(),
		Start:  s.start,
		End:    s.end,
		Err:    s.err,
	}
}
