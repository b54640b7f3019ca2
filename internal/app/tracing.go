package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// newTracerProvider returns a provider writing spans to path as JSON, or a
// no-op provider when path is empty. The returned func flushes and closes.
func newTracerProvider(path string) (trace.TracerProvider, func(context.Context) error, error) {
	if path == "" {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	return tracerProviderTo(f, f)
}

func tracerProviderTo(w io.Writer, c io.Closer) (trace.TracerProvider, func(context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create span exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	shutdown := func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if c != nil {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}
	return tp, shutdown, nil
}
