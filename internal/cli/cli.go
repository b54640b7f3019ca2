package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/tutorburst/internal/app"
	"github.com/specialistvlad/tutorburst/internal/report"
	"github.com/specialistvlad/tutorburst/internal/scenario"
)

// Exit codes.
const (
	ExitRuntime    = 1
	ExitUsage      = 2
	ExitIncomplete = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// ExitCode maps an error from a run to a process exit code.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, app.ErrIncompleteRun):
		return ExitIncomplete
	default:
		return ExitRuntime
	}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("tutorburst", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
tutorburst - Simulate a burst of students hitting a tutoring app at once.

Usage:
  tutorburst [options] [SCENARIO_PATH]

Arguments:
  SCENARIO_PATH
    Path to a .hcl or .yaml scenario file. Without one, the built-in
    scenario runs against http://localhost:8501.

Options:
`)
		flagSet.PrintDefaults()
	}

	scenarioFlag := flagSet.String("scenario", "", "Path to the scenario file.")
	sFlag := flagSet.String("s", "", "Path to the scenario file (shorthand).")
	studentsFlag := flagSet.Int("students", 0, "Number of concurrent students. Overrides the scenario.")
	baseURLFlag := flagSet.String("base-url", "", "URL of the tutoring app. Overrides the scenario.")
	timeoutFlag := flagSet.Int("timeout-ms", 0, "How long each student waits for the tutor's answer. Overrides the scenario.")
	driverFlag := flagSet.String("driver", app.DriverRod, "Session driver. Options: 'rod' (real browser) or 'http' (no JavaScript).")
	headlessFlag := flagSet.Bool("headless", true, "Run the launched browser without a window.")
	browserBinFlag := flagSet.String("browser-bin", "", "Browser executable for the rod driver.")
	browserURLFlag := flagSet.String("browser-url", "", "DevTools URL of an already running browser for the rod driver.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	reportFormatFlag := flagSet.String("report-format", string(report.FormatJSON), "Report format. Options: 'json' or 'table'.")
	reportFlag := flagSet.String("report", "", "Write the report to this file instead of the output.")
	traceFlag := flagSet.String("trace", "", "Write OpenTelemetry spans for every session to this file.")
	strictFlag := flagSet.Bool("strict", false, "Exit with code 3 unless every student succeeded.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	switch {
	case *scenarioFlag != "":
		path = *scenarioFlag
	case *sFlag != "":
		path = *sFlag
	case flagSet.NArg() > 0:
		path = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("expected at most one scenario path, got %d arguments", flagSet.NArg())}
	}
	slog.Debug("Scenario path determined.", "path", path)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	if _, ok := app.ParseLevel(logLevel); !ok {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ScenarioPath: path,
		Overrides: scenario.Overrides{
			StudentCount: *studentsFlag,
			BaseURL:      *baseURLFlag,
			TimeoutMs:    *timeoutFlag,
		},
		Driver:          strings.ToLower(*driverFlag),
		Headless:        *headlessFlag,
		BrowserBin:      *browserBinFlag,
		BrowserURL:      *browserURLFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		ReportFormat:    report.Format(strings.ToLower(*reportFormatFlag)),
		ReportPath:      *reportFlag,
		TracePath:       *traceFlag,
		Strict:          *strictFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
