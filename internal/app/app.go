package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/tutorburst/internal/ctxlog"
	"github.com/specialistvlad/tutorburst/internal/driver"
	"github.com/specialistvlad/tutorburst/internal/driver/httpdriver"
	"github.com/specialistvlad/tutorburst/internal/driver/roddriver"
	"github.com/specialistvlad/tutorburst/internal/metrics"
)

// DriverFactory builds the driver a run provisions sessions from.
type DriverFactory func(ctx context.Context, cfg *Config) (driver.Driver, error)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	ctx       context.Context
	logger    *slog.Logger
	config    *Config
	registry  *prometheus.Registry
	recorder  *metrics.Recorder
	newDriver DriverFactory

	httpServer *http.Server
}

// Option customizes an App.
type Option func(*App)

// WithDriverFactory replaces the driver chosen from Config.Driver.
func WithDriverFactory(f DriverFactory) Option {
	return func(a *App) { a.newDriver = f }
}

// NewApp returns a fully initialized App with its own isolated logger and
// metrics registry. Logs go to logW. Unless Config.ReportPath is set, the
// report goes to outW, which then carries nothing else.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	a := &App{
		outW:      outW,
		ctx:       ctxlog.WithLogger(context.Background(), logger),
		logger:    logger,
		config:    cfg,
		registry:  reg,
		recorder:  metrics.NewRecorder(reg),
		newDriver: defaultDriver,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Registry returns the application's metrics registry. This is primarily
// for testing.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

func defaultDriver(ctx context.Context, cfg *Config) (driver.Driver, error) {
	if cfg.Driver == DriverHTTP {
		return httpdriver.New(httpdriver.Config{}), nil
	}
	d, err := roddriver.New(ctx, roddriver.Config{
		ControlURL: cfg.BrowserURL,
		Bin:        cfg.BrowserBin,
		Headless:   cfg.Headless,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
