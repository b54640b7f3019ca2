package report

import (
	"errors"
	"math"
	"slices"

	"github.com/specialistvlad/tutorburst/internal/orchestrator"
	"github.com/specialistvlad/tutorburst/internal/script"
	"github.com/specialistvlad/tutorburst/internal/session"
)

// Summary is the aggregate view of one burst.
type Summary struct {
	RunID               string         `json:"run_id"`
	Total               int            `json:"total"`
	Succeeded           int            `json:"succeeded"`
	Failed              int            `json:"failed"`
	TimedOut            int            `json:"timed_out"`
	DurationMs          int64          `json:"duration_ms"`
	PerSessionDurations []int64        `json:"per_session_durations_ms"`
	Latency             Latency        `json:"latency_ms"`
	Errors              []SessionError `json:"errors,omitempty"`
}

// Latency holds percentile figures over every session's duration, in
// milliseconds.
type Latency struct {
	Min  int64 `json:"min"`
	Max  int64 `json:"max"`
	Mean int64 `json:"mean"`
	P50  int64 `json:"p50"`
	P95  int64 `json:"p95"`
}

// SessionError describes one session that did not succeed. Step is the
// index of the failing step, or -1 when the failure was not tied to a step.
type SessionError struct {
	Index   int    `json:"index"`
	Status  string `json:"status"`
	Step    int    `json:"step"`
	Message string `json:"message"`
}

// AllSucceeded reports whether every session reached Succeeded.
func (s Summary) AllSucceeded() bool {
	return s.Total > 0 && s.Succeeded == s.Total
}

// Aggregate computes the Summary of r. It does not mutate r.
func Aggregate(r *orchestrator.RunResult) Summary {
	sum := Summary{
		RunID:               r.RunID,
		Total:               len(r.Outcomes),
		DurationMs:          r.Duration().Milliseconds(),
		PerSessionDurations: make([]int64, len(r.Outcomes)),
	}

	for i, o := range r.Outcomes {
		sum.PerSessionDurations[i] = o.Duration().Milliseconds()

		switch o.Status {
		case session.Succeeded:
			sum.Succeeded++
			continue
		case session.TimedOut:
			sum.TimedOut++
		default:
			sum.Failed++
		}
		sum.Errors = append(sum.Errors, sessionError(o))
	}

	sum.Latency = latency(sum.PerSessionDurations)
	return sum
}

func sessionError(o session.Outcome) SessionError {
	e := SessionError{Index: o.Index, Status: o.Status.String(), Step: -1}
	if o.Err == nil {
		return e
	}
	e.Message = o.Err.Error()

	var stepErr *script.StepError
	var timeout *script.AssertionTimeout
	switch {
	case errors.As(o.Err, &timeout):
		e.Step = timeout.Index
	case errors.As(o.Err, &stepErr):
		e.Step = stepErr.Index
	}
	return e
}

func latency(durations []int64) Latency {
	if len(durations) == 0 {
		return Latency{}
	}
	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	var total int64
	for _, d := range sorted {
		total += d
	}
	return Latency{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: total / int64(len(sorted)),
		P50:  percentile(sorted, 50),
		P95:  percentile(sorted, 95),
	}
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []int64, p float64) int64 {
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
