package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/tutorburst/internal/report"
	"github.com/specialistvlad/tutorburst/internal/scenario"
)

// Driver names accepted by Config.Driver.
const (
	DriverRod  = "rod"
	DriverHTTP = "http"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ScenarioPath is an .hcl or .yaml scenario. Empty runs the built-in
	// scenario.
	ScenarioPath string
	Overrides    scenario.Overrides

	Driver     string
	Headless   bool
	BrowserBin string
	BrowserURL string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	ReportFormat report.Format
	ReportPath   string
	TracePath    string

	// Strict turns any session that did not succeed into a failed run.
	Strict bool
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error

	switch cfg.Driver {
	case "":
		cfg.Driver = DriverRod
	case DriverRod, DriverHTTP:
	default:
		errs = append(errs, fmt.Errorf("unknown driver %q, must be one of: %s, %s", cfg.Driver, DriverRod, DriverHTTP))
	}

	if cfg.ReportFormat == "" {
		cfg.ReportFormat = report.FormatJSON
	}
	if _, err := report.ParseFormat(string(cfg.ReportFormat)); err != nil {
		errs = append(errs, err)
	}

	if cfg.Overrides.StudentCount < 0 {
		errs = append(errs, fmt.Errorf("students cannot be negative, got %d", cfg.Overrides.StudentCount))
	}
	if cfg.Overrides.TimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("timeout-ms cannot be negative, got %d", cfg.Overrides.TimeoutMs))
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("healthcheck-port %d is out of range", cfg.HealthcheckPort))
	}
	if cfg.Driver == DriverHTTP && (cfg.BrowserBin != "" || cfg.BrowserURL != "") {
		errs = append(errs, errors.New("browser-bin and browser-url only apply to the rod driver"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
