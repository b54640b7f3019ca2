package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/tutorburst/internal/ctxlog"
	"github.com/specialistvlad/tutorburst/internal/script"
	"github.com/specialistvlad/tutorburst/internal/session"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/specialistvlad/tutorburst/internal/orchestrator"

// Provisioner creates a batch of sessions.
type Provisioner interface {
	Create(ctx context.Context, n int) ([]*session.Session, error)
}

// ScriptBuilder produces the script each session runs.
type ScriptBuilder interface {
	Build(index int) (script.Script, error)
	Validate(n int) error
	PollInterval() time.Duration
}

// Orchestrator wires provisioning, script execution and observation.
type Orchestrator struct {
	provisioner Provisioner
	scripts     ScriptBuilder
	observer    Observer
	tracer      trace.Tracer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets the lifecycle observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithTracerProvider sets where session spans are sent.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) { o.tracer = tp.Tracer(tracerName) }
}

// New returns an Orchestrator. Without options it records nothing beyond
// logs.
func New(p Provisioner, scripts ScriptBuilder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provisioner: p,
		scripts:     scripts,
		observer:    nopObserver{},
		tracer:      noop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run provisions n sessions and bursts them. It returns an error only when
// the batch could not be started: a payload collision, or a
// *session.ProvisioningError.
func (o *Orchestrator) Run(ctx context.Context, n int) (*RunResult, error) {
	logger := ctxlog.FromContext(ctx)

	if err := o.scripts.Validate(n); err != nil {
		return nil, fmt.Errorf("script template rejected: %w", err)
	}

	logger.Info("Provisioning isolated sessions...", "count", n)
	sessions, err := o.provisioner.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	return o.Burst(ctx, sessions)
}

// ErrNotPending is returned by Burst when a session has already started.
var ErrNotPending = errors.New("session is not pending")

// Burst runs every session concurrently and waits for all of them.
// Per-session errors are recorded in the outcomes. The only error is
// ErrNotPending, returned before anything runs; the caller then keeps
// ownership of the sessions.
func (o *Orchestrator) Burst(ctx context.Context, sessions []*session.Session) (*RunResult, error) {
	for _, s := range sessions {
		if st := s.Status(); st != session.Pending {
			return nil, fmt.Errorf("%w: session %d is %s", ErrNotPending, s.Index, st)
		}
	}

	runID := uuid.NewString()
	ctx, logger := ctxlog.With(ctx, "run_id", runID)
	ctx, span := o.tracer.Start(ctx, "burst", trace.WithAttributes(
		attribute.String("burst.run_id", runID),
		attribute.Int("burst.sessions", len(sessions)),
	))
	defer span.End()

	gate := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(len(sessions))
	for _, s := range sessions {
		go func() {
			defer wg.Done()
			<-gate
			o.runSession(ctx, s)
		}()
	}

	logger.Info("🚀 Starting burst", "sessions", len(sessions))
	start := time.Now()
	close(gate)

	logger.Debug("Waiting for all sessions to reach a terminal status...")
	wg.Wait()
	end := time.Now()

	result := &RunResult{
		RunID:    runID,
		Start:    start,
		End:      end,
		Outcomes: make([]session.Outcome, len(sessions)),
	}
	for i, s := range sessions {
		result.Outcomes[i] = s.Outcome()
	}

	o.observer.BurstFinished(len(sessions), result.Duration())
	logger.Info("🏁 Burst finished", "sessions", len(sessions), "duration", result.Duration())
	return result, nil
}

// runSession drives one session from Pending to its terminal status. It
// owns the session and closes its handle before returning. A panic anywhere
// in here, including the handle close and observer calls, stays inside the
// session.
func (o *Orchestrator) runSession(ctx context.Context, s *session.Session) {
	ctx, logger := ctxlog.With(ctx, "session", s.Index)
	ctx, span := o.tracer.Start(ctx, "session", trace.WithAttributes(attribute.Int("session.index", s.Index)))
	defer span.End()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := fmt.Errorf("session %d panicked: %v", s.Index, r)
		span.SetStatus(codes.Error, "panic")
		span.RecordError(err)
		logger.Error("💥 Session panicked", "status", s.Status().String(), "error", err)
		if s.Status() == session.Pending {
			_ = s.Start(time.Now())
		}
		if !s.Status().Terminal() {
			_ = s.Finish(session.Failed, err, time.Now())
		}
	}()

	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn("Failed to close session handle.", "error", err)
		}
	}()

	if err := s.Start(time.Now()); err != nil {
		// Burst only admits Pending sessions, so this is a broken invariant.
		panic(err)
	}
	o.observer.SessionStarted(s.Index)
	logger.Debug("▶️ Session started")

	err := o.execute(ctx, s)
	status := classify(err)
	if ferr := s.Finish(status, err, time.Now()); ferr != nil {
		logger.Error("Session could not finish.", "error", ferr)
		return
	}

	outcome := s.Outcome()
	o.observer.SessionFinished(outcome)
	span.SetAttributes(attribute.String("session.status", status.String()))

	switch status {
	case session.Succeeded:
		logger.Info("✅ Session succeeded", "duration", outcome.Duration())
	case session.TimedOut:
		span.SetStatus(codes.Error, "marker timeout")
		span.RecordError(err)
		logger.Warn("⏱️ Session timed out", "duration", outcome.Duration(), "error", err)
	default:
		span.SetStatus(codes.Error, "step failed")
		span.RecordError(err)
		logger.Error("❌ Session failed", "duration", outcome.Duration(), "error", err)
	}
}

// execute builds and runs the session's script. A panic inside a driver is
// converted into an error so the rest of the burst keeps going.
func (o *Orchestrator) execute(ctx context.Context, s *session.Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session %d panicked: %v", s.Index, r)
		}
	}()

	sc, err := o.scripts.Build(s.Index)
	if err != nil {
		return fmt.Errorf("failed to build script: %w", err)
	}
	return script.Execute(ctx, s.Handle, sc, o.scripts.PollInterval())
}

func classify(err error) session.Status {
	if err == nil {
		return session.Succeeded
	}
	var timeout *script.AssertionTimeout
	if errors.As(err, &timeout) {
		return session.TimedOut
	}
	return session.Failed
}
