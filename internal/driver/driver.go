package driver

import (
	"context"
	"errors"
)

// Driver provisions isolated interaction handles. Two handles returned by the
// same Driver must never share cookies or storage.
type Driver interface {
	// Open provisions the handle for the session with the given index. The
	// index is informational; drivers may use it for logging or naming.
	Open(ctx context.Context, index int) (Handle, error)
	// Close releases driver-wide resources such as a launched browser.
	Close() error
}

// Handle is one simulated user's view of the application. A Handle is owned
// by exactly one goroutine for its whole lifetime and is not safe for
// concurrent use.
type Handle interface {
	Navigate(ctx context.Context, url string) error
	Fill(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	// IsVisible reports whether selector currently matches a visible element.
	// It must not wait for the element to appear.
	IsVisible(ctx context.Context, selector string) (bool, error)
	Close() error
}

// ErrNoElement is returned when a selector matches nothing.
var ErrNoElement = errors.New("no element matches selector")
