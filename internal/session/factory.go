package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/tutorburst/internal/ctxlog"
	"github.com/specialistvlad/tutorburst/internal/driver"
	"golang.org/x/sync/errgroup"
)

// Factory provisions batches of isolated sessions from a driver.
type Factory struct {
	driver driver.Driver
}

// NewFactory returns a Factory backed by d.
func NewFactory(d driver.Driver) *Factory {
	return &Factory{driver: d}
}

// Create opens n handles concurrently and returns n Pending sessions ordered
// by index. If any handle fails to open, every handle that did open is
// closed and a *ProvisioningError is returned.
func (f *Factory) Create(ctx context.Context, n int) ([]*Session, error) {
	logger := ctxlog.FromContext(ctx)
	if n < 1 {
		return nil, &ProvisioningError{Index: -1, Requested: n, Err: fmt.Errorf("session count must be at least 1")}
	}
	logger.Debug("Provisioning sessions.", "count", n)
	started := time.Now()

	sessions := make([]*Session, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			h, err := f.driver.Open(gctx, i)
			if err != nil {
				return &ProvisioningError{Index: i, Requested: n, Err: err}
			}
			sessions[i] = New(i, h)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		closed := closeAll(ctx, sessions)
		logger.Error("Provisioning failed, batch abandoned.", "error", err, "closed_handles", closed)
		var pErr *ProvisioningError
		if !errors.As(err, &pErr) {
			pErr = &ProvisioningError{Index: -1, Requested: n, Err: err}
		}
		return nil, pErr
	}

	logger.Debug("All sessions provisioned.", "count", n, "elapsed", time.Since(started))
	return sessions, nil
}

// closeAll closes every non-nil session and reports how many were closed.
func closeAll(ctx context.Context, sessions []*Session) int {
	logger := ctxlog.FromContext(ctx)
	closed := 0
	for _, s := range sessions {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			logger.Warn("Failed to close session handle.", "session", s.Index, "error", err)
		}
		closed++
	}
	return closed
}
