// Package roddriver drives a real Chromium through go-rod. Every session gets
// its own incognito browser context, so cookies and storage never leak
// between simulated students.
package roddriver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/specialistvlad/tutorburst/internal/ctxlog"
	"github.com/specialistvlad/tutorburst/internal/driver"
)

// DefaultActionTimeout bounds how long an action waits for its element.
const DefaultActionTimeout = 10 * time.Second

const closeTimeout = 5 * time.Second

// Config controls how the browser is obtained.
type Config struct {
	// ControlURL connects to an already running browser. It may be a
	// DevTools websocket URL or anything launcher.ResolveURL accepts, such
	// as "localhost:9222". When empty a browser is launched.
	ControlURL string
	// Bin is the browser executable. Empty lets the launcher find or
	// download one.
	Bin string
	// Headless hides the launched browser window.
	Headless bool
	// ActionTimeout bounds Navigate, Fill and Click.
	ActionTimeout time.Duration
}

// Driver owns one browser connection shared by every session. It owns the
// browser process only when it launched it.
type Driver struct {
	cfg      Config
	browser  *rod.Browser
	ws       *cdp.WebSocket
	launcher *launcher.Launcher

	mu     sync.Mutex
	closed bool
}

var _ driver.Driver = (*Driver)(nil)

// New launches or connects to a browser.
func New(ctx context.Context, cfg Config) (*Driver, error) {
	logger := ctxlog.FromContext(ctx)
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = DefaultActionTimeout
	}

	d := &Driver{cfg: cfg}
	controlURL := cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(cfg.Headless)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		d.launcher = l
		controlURL = u
		logger.Debug("Browser launched.", "control_url", controlURL, "headless", cfg.Headless)
	}

	if d.launcher == nil && !strings.HasPrefix(controlURL, "ws") {
		u, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve browser url %q: %w", controlURL, err)
		}
		controlURL = u
	}

	ws := &cdp.WebSocket{}
	if err := ws.Connect(ctx, controlURL, nil); err != nil {
		d.kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	browser := rod.New().Client(cdp.New().Start(ws)).Context(ctx)
	if err := browser.Connect(); err != nil {
		_ = ws.Close()
		d.kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	d.ws = ws
	d.browser = browser
	logger.Info("🌐 Browser connected", "control_url", controlURL)
	return d, nil
}

// Open creates an incognito context with one blank page.
func (d *Driver) Open(ctx context.Context, index int) (driver.Handle, error) {
	incognito, err := d.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create incognito context for session %d: %w", index, err)
	}
	page, err := incognito.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("failed to open page for session %d: %w", index, err)
	}
	return &handle{context: incognito, page: page, timeout: d.cfg.ActionTimeout}, nil
}

// Close disconnects from the browser. A browser this driver launched is
// also shut down. A browser reached through Config.ControlURL keeps running.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var err error
	if d.launcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		err = d.browser.Context(ctx).Close()
		cancel()
	}
	if cerr := d.ws.Close(); cerr != nil && err == nil && d.launcher == nil {
		err = cerr
	}
	d.kill()
	return err
}

func (d *Driver) kill() {
	if d.launcher == nil {
		return
	}
	d.launcher.Kill()
	d.launcher.Cleanup()
}

type handle struct {
	context *rod.Browser
	page    *rod.Page
	timeout time.Duration
}

func (h *handle) scoped(ctx context.Context) (*rod.Page, context.CancelFunc) {
	actx, cancel := context.WithTimeout(ctx, h.timeout)
	return h.page.Context(actx), cancel
}

func (h *handle) Navigate(ctx context.Context, url string) error {
	page, cancel := h.scoped(ctx)
	defer cancel()
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for %s to load: %w", url, err)
	}
	return nil
}

func (h *handle) Fill(ctx context.Context, selector, text string) error {
	page, cancel := h.scoped(ctx)
	defer cancel()
	el, err := find(page, selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text in %s: %w", selector, err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("type into %s: %w", selector, err)
	}
	return nil
}

func (h *handle) Click(ctx context.Context, selector string) error {
	page, cancel := h.scoped(ctx)
	defer cancel()
	el, err := find(page, selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (h *handle) IsVisible(ctx context.Context, selector string) (bool, error) {
	sel, err := driver.ParseSelector(selector)
	if err != nil {
		return false, err
	}
	page := h.page.Context(ctx)

	var (
		has bool
		el  *rod.Element
	)
	if sel.Kind == driver.Text {
		has, el, err = page.HasX(sel.XPath())
	} else {
		has, el, err = page.Has(sel.Value)
	}
	if err != nil {
		return false, fmt.Errorf("query %s: %w", selector, err)
	}
	if !has {
		return false, nil
	}
	visible, err := el.Visible()
	if err != nil {
		return false, fmt.Errorf("check visibility of %s: %w", selector, err)
	}
	return visible, nil
}

// Close disposes of the incognito context. It does not use the session's
// context, which may already be cancelled.
func (h *handle) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return h.context.Context(ctx).Close()
}

// find waits, within the page's context, for selector to match.
func find(page *rod.Page, selector string) (*rod.Element, error) {
	sel, err := driver.ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	var el *rod.Element
	if sel.Kind == driver.Text {
		el, err = page.ElementX(sel.XPath())
	} else {
		el, err = page.Element(sel.Value)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", driver.ErrNoElement, selector)
		}
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	return el, nil
}
