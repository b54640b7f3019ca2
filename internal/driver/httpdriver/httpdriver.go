// Package httpdriver simulates a student without a browser. It fetches pages
// with net/http, keeps a private cookie jar per session, queries the DOM with
// goquery and submits HTML forms the way a browser would. It does not run
// JavaScript.
package httpdriver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/specialistvlad/tutorburst/internal/driver"
)

// DefaultRequestTimeout bounds a single HTTP exchange.
const DefaultRequestTimeout = 30 * time.Second

const userAgent = "tutorburst/1.0"

// Config tunes the HTTP driver.
type Config struct {
	RequestTimeout time.Duration
	// Transport is shared by every session. Nil uses a clone of
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// Driver hands out isolated HTTP sessions.
type Driver struct {
	cfg Config
}

var _ driver.Driver = (*Driver)(nil)

// New returns a Driver.
func New(cfg Config) *Driver {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.MaxIdleConnsPerHost = 256
		cfg.Transport = t
	}
	return &Driver{cfg: cfg}
}

// Open returns a handle with its own cookie jar.
func (d *Driver) Open(ctx context.Context, index int) (driver.Handle, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar for session %d: %w", index, err)
	}
	return &Handle{
		client: &http.Client{
			Jar:       jar,
			Timeout:   d.cfg.RequestTimeout,
			Transport: d.cfg.Transport,
		},
	}, nil
}

// Close releases idle connections.
func (d *Driver) Close() error {
	if t, ok := d.cfg.Transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
	return nil
}

// Handle is one HTTP session: a cookie jar and the current document.
type Handle struct {
	client *http.Client
	doc    *goquery.Document
	url    *url.URL
}

// Jar exposes the session's cookies.
func (h *Handle) Jar() http.CookieJar { return h.client.Jar }

// Navigate loads url as the current document.
func (h *Handle) Navigate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return h.load(req)
}

// Fill sets the value of an input or the content of a textarea in the
// current document.
func (h *Handle) Fill(ctx context.Context, selector, text string) error {
	el, err := h.find(selector)
	if err != nil {
		return err
	}
	switch goquery.NodeName(el) {
	case "textarea":
		el.SetText(text)
	case "input":
		el.SetAttr("value", text)
	default:
		return fmt.Errorf("%s matched a <%s>, which cannot be filled", selector, goquery.NodeName(el))
	}
	return nil
}

// Click follows a link or submits the form that owns a submit button.
func (h *Handle) Click(ctx context.Context, selector string) error {
	el, err := h.find(selector)
	if err != nil {
		return err
	}

	if goquery.NodeName(el) == "a" {
		href, ok := el.Attr("href")
		if !ok {
			return fmt.Errorf("%s is a link without href", selector)
		}
		target, err := h.url.Parse(strings.TrimSpace(href))
		if err != nil {
			return fmt.Errorf("invalid link %q: %w", href, err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		return h.load(req)
	}

	if !isSubmitter(el) {
		return fmt.Errorf("%s matched a <%s>; only links and submit buttons can be clicked without a browser", selector, goquery.NodeName(el))
	}
	form := el.Closest("form")
	if form.Length() == 0 {
		return fmt.Errorf("%s is not inside a form", selector)
	}
	req, err := h.formRequest(ctx, form, el)
	if err != nil {
		return err
	}
	return h.load(req)
}

// IsVisible reports whether selector matches an element in the current
// document that is not hidden by itself or an ancestor.
func (h *Handle) IsVisible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if h.doc == nil {
		return false, nil
	}
	matches, err := query(h.doc.Selection, selector)
	if err != nil {
		return false, err
	}
	visible := false
	matches.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		visible = !hidden(s)
		return !visible
	})
	return visible, nil
}

// Close drops the current document and idle connections of this session.
func (h *Handle) Close() error {
	h.doc = nil
	h.client.CloseIdleConnections()
	return nil
}

func (h *Handle) load(req *http.Request) error {
	req.Header.Set("User-Agent", userAgent)
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: unexpected status %s", req.Method, req.URL, resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to parse HTML from %s: %w", req.URL, err)
	}
	h.doc = doc
	h.url = resp.Request.URL
	return nil
}

func (h *Handle) find(selector string) (*goquery.Selection, error) {
	if h.doc == nil {
		return nil, fmt.Errorf("no page loaded, cannot look up %s", selector)
	}
	matches, err := query(h.doc.Selection, selector)
	if err != nil {
		return nil, err
	}
	if matches.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", driver.ErrNoElement, selector)
	}
	return matches.First(), nil
}
