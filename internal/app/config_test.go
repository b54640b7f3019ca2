package app

import (
	"testing"

	"github.com/specialistvlad/tutorburst/internal/report"
	"github.com/specialistvlad/tutorburst/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{})

	require.NoError(t, err)
	assert.Equal(t, DriverRod, cfg.Driver)
	assert.Equal(t, report.FormatJSON, cfg.ReportFormat)
}

func TestNewConfig_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "unknown driver", cfg: Config{Driver: "selenium"}, wantErr: `unknown driver "selenium"`},
		{name: "unknown report format", cfg: Config{ReportFormat: "csv"}, wantErr: `unknown report format "csv"`},
		{name: "negative students", cfg: Config{Overrides: scenario.Overrides{StudentCount: -1}}, wantErr: "students cannot be negative"},
		{name: "negative timeout", cfg: Config{Overrides: scenario.Overrides{TimeoutMs: -5}}, wantErr: "timeout-ms cannot be negative"},
		{name: "port out of range", cfg: Config{HealthcheckPort: 70000}, wantErr: "out of range"},
		{name: "browser flags with http driver", cfg: Config{Driver: DriverHTTP, BrowserURL: "ws://x"}, wantErr: "only apply to the rod driver"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestNewConfig_ReportsEveryProblem(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(Config{Driver: "x", ReportFormat: "y"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
	assert.Contains(t, err.Error(), "unknown report format")
}
