package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/tutorburst/internal/driver"
)

// ErrInjected is the error every scripted failure returns.
var ErrInjected = errors.New("injected failure")

// Action names used in Behavior.FailOn.
const (
	ActionNavigate = "navigate"
	ActionFill     = "fill"
	ActionClick    = "click"
	ActionVisible  = "visible"
)

// Behavior scripts how one fake session reacts.
type Behavior struct {
	// OpenErr makes Driver.Open fail for this index.
	OpenErr error
	// ActionDelay is slept inside every Navigate, Fill and Click.
	ActionDelay time.Duration
	// MarkerAfter is how long after the Click the marker becomes visible.
	MarkerAfter time.Duration
	// NeverMarker keeps the marker hidden forever.
	NeverMarker bool
	// FailOn names the action that returns ErrInjected.
	FailOn string
}

// FakeDriver is a scriptable in-memory driver.Driver.
type FakeDriver struct {
	Default  Behavior
	PerIndex map[int]Behavior

	mu      sync.Mutex
	handles map[int]*FakeHandle

	Opened atomic.Int32
	Closed atomic.Int32
}

var _ driver.Driver = (*FakeDriver)(nil)

// NewFakeDriver returns a driver whose sessions all behave like def unless
// overridden per index.
func NewFakeDriver(def Behavior) *FakeDriver {
	return &FakeDriver{Default: def, PerIndex: map[int]Behavior{}, handles: map[int]*FakeHandle{}}
}

func (d *FakeDriver) behavior(index int) Behavior {
	if b, ok := d.PerIndex[index]; ok {
		return b
	}
	return d.Default
}

// Open implements driver.Driver.
func (d *FakeDriver) Open(ctx context.Context, index int) (driver.Handle, error) {
	b := d.behavior(index)
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	h := &FakeHandle{index: index, behavior: b, driver: d}
	d.mu.Lock()
	d.handles[index] = h
	d.mu.Unlock()
	d.Opened.Add(1)
	return h, nil
}

// Close implements driver.Driver.
func (d *FakeDriver) Close() error { return nil }

// Handle returns the handle opened for index, or nil.
func (d *FakeDriver) Handle(index int) *FakeHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handles[index]
}

// FakeHandle is one fake session. Its state is private to it, so handles
// never observe each other.
type FakeHandle struct {
	index    int
	behavior Behavior
	driver   *FakeDriver

	mu        sync.Mutex
	calls     []string
	filled    map[string]string
	clickedAt time.Time
	closed    bool
}

func (h *FakeHandle) record(call string) {
	h.mu.Lock()
	h.calls = append(h.calls, call)
	h.mu.Unlock()
}

func (h *FakeHandle) act(ctx context.Context, action string) error {
	if h.behavior.ActionDelay > 0 {
		select {
		case <-time.After(h.behavior.ActionDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if h.behavior.FailOn == action {
		return fmt.Errorf("%s on session %d: %w", action, h.index, ErrInjected)
	}
	return nil
}

// Navigate implements driver.Handle.
func (h *FakeHandle) Navigate(ctx context.Context, url string) error {
	h.record(ActionNavigate + " " + url)
	return h.act(ctx, ActionNavigate)
}

// Fill implements driver.Handle.
func (h *FakeHandle) Fill(ctx context.Context, selector, text string) error {
	h.record(ActionFill + " " + selector)
	if err := h.act(ctx, ActionFill); err != nil {
		return err
	}
	h.mu.Lock()
	if h.filled == nil {
		h.filled = map[string]string{}
	}
	h.filled[selector] = text
	h.mu.Unlock()
	return nil
}

// Click implements driver.Handle.
func (h *FakeHandle) Click(ctx context.Context, selector string) error {
	h.record(ActionClick + " " + selector)
	if err := h.act(ctx, ActionClick); err != nil {
		return err
	}
	h.mu.Lock()
	h.clickedAt = time.Now()
	h.mu.Unlock()
	return nil
}

// IsVisible implements driver.Handle. Any selector is treated as the marker.
func (h *FakeHandle) IsVisible(ctx context.Context, selector string) (bool, error) {
	if h.behavior.FailOn == ActionVisible {
		return false, fmt.Errorf("%s on session %d: %w", ActionVisible, h.index, ErrInjected)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.behavior.NeverMarker || h.clickedAt.IsZero() {
		return false, nil
	}
	return time.Since(h.clickedAt) >= h.behavior.MarkerAfter, nil
}

// Close implements driver.Handle.
func (h *FakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.closed = true
		h.driver.Closed.Add(1)
	}
	return nil
}

// Calls returns the recorded action log.
func (h *FakeHandle) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

// Filled returns the text typed into selector.
func (h *FakeHandle) Filled(selector string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.filled[selector]
}

// IsClosed reports whether Close was called.
func (h *FakeHandle) IsClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
