package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/tutorburst/internal/ctxlog"
	"github.com/specialistvlad/tutorburst/internal/orchestrator"
	"github.com/specialistvlad/tutorburst/internal/report"
	"github.com/specialistvlad/tutorburst/internal/scenario"
	"github.com/specialistvlad/tutorburst/internal/script"
	"github.com/specialistvlad/tutorburst/internal/session"
)

// ErrIncompleteRun is returned in strict mode when at least one session did
// not succeed. The report has still been written.
var ErrIncompleteRun = errors.New("not every session succeeded")

// Run executes one burst and writes its report. The returned Summary is nil
// only when the burst never started.
func (a *App) Run(ctx context.Context) (*report.Summary, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	if err := a.healthCheckServer(); err != nil {
		return nil, err
	}
	defer func() { _ = a.closeHealthCheckServer() }()

	tp, shutdownTracing, err := newTracerProvider(a.config.TracePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("Failed to flush traces.", "error", err)
		}
	}()

	sc, err := scenario.Load(ctx, a.config.ScenarioPath, a.config.Overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	a.logger.Info("Scenario loaded.", "name", sc.Name, "students", sc.StudentCount, "base_url", sc.BaseURL, "timeout", sc.AssertionTimeout)

	drv, err := a.newDriver(ctx, a.config)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s driver: %w", a.config.Driver, err)
	}
	defer func() {
		if err := drv.Close(); err != nil {
			a.logger.Warn("Failed to close driver.", "error", err)
		}
	}()

	orch := orchestrator.New(
		session.NewFactory(drv),
		script.NewTemplate(sc),
		orchestrator.WithObserver(a.recorder),
		orchestrator.WithTracerProvider(tp),
	)

	a.logger.Info("🚀 Starting simulation...", "driver", a.config.Driver)
	res, err := orch.Run(ctx, sc.StudentCount)
	if err != nil {
		return nil, fmt.Errorf("burst aborted: %w", err)
	}

	summary := report.Aggregate(res)
	a.logger.Info(fmt.Sprintf("🏁 Simulated %d students in %d ms", summary.Total, summary.DurationMs),
		"run_id", summary.RunID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"timed_out", summary.TimedOut,
		"p95_ms", summary.Latency.P95,
	)

	if err := a.writeReport(summary); err != nil {
		return &summary, err
	}

	a.logger.Debug("App.Run method finished.")
	if a.config.Strict && !summary.AllSucceeded() {
		return &summary, fmt.Errorf("%w: %d failed, %d timed out of %d", ErrIncompleteRun, summary.Failed, summary.TimedOut, summary.Total)
	}
	return &summary, nil
}

func (a *App) writeReport(s report.Summary) error {
	var w io.Writer = a.outW
	if a.config.ReportPath != "" {
		f, err := os.Create(a.config.ReportPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := report.Write(w, a.config.ReportFormat, s); err != nil {
		return err
	}
	if a.config.ReportPath != "" {
		a.logger.Info("Report written.", "path", a.config.ReportPath, "format", a.config.ReportFormat)
	}
	return nil
}
