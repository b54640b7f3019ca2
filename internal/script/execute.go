package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/tutorburst/internal/ctxlog"
	"github.com/specialistvlad/tutorburst/internal/driver"
	"github.com/specialistvlad/tutorburst/internal/poller"
)

// Execute runs every step of s against h. It stops at the first failing
// step and returns a *StepError, or an *AssertionTimeout when a marker wait
// ran out of time. A nil return means every step passed.
func Execute(ctx context.Context, h driver.Handle, s Script, pollInterval time.Duration) error {
	logger := ctxlog.FromContext(ctx)

	for i, step := range s.Steps {
		logger.Debug("Running step.", "step_index", i, "step", step.String())
		started := time.Now()

		err := runStep(ctx, h, step, pollInterval)
		if err != nil {
			if errors.Is(err, poller.ErrTimeout) {
				logger.Warn("Marker did not appear in time.", "step_index", i, "step", step.String(), "waited", time.Since(started))
				return &AssertionTimeout{Index: i, Step: step, Err: err}
			}
			logger.Warn("Step failed, skipping the rest of the script.", "step_index", i, "step", step.String(), "error", err)
			return &StepError{Index: i, Step: step, Err: err}
		}
		logger.Debug("Step passed.", "step_index", i, "elapsed", time.Since(started))
	}
	return nil
}

func runStep(ctx context.Context, h driver.Handle, step Step, pollInterval time.Duration) error {
	switch step.Kind {
	case Navigate:
		return h.Navigate(ctx, step.URL)
	case Fill:
		return h.Fill(ctx, step.Selector, step.Text)
	case Click:
		return h.Click(ctx, step.Selector)
	case WaitForMarker:
		return poller.Wait(ctx, step.Timeout, pollInterval, func(pctx context.Context) (bool, error) {
			return h.IsVisible(pctx, step.Selector)
		})
	default:
		return fmt.Errorf("unknown step kind %s", step.Kind)
	}
}
