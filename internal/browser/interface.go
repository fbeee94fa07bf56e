// internal/browser/interface.go
package browser

import (
	"context"
	"time"
)

// Session is one live, automation-controlled browser instance. All checks of a
// run share a single Session, so page state left behind by one check is visible
// to the next. A Session is used from one goroutine only.
type Session interface {
	// Navigate loads url in the current tab.
	Navigate(ctx context.Context, url string) error

	// WaitPresent blocks until an element matching loc exists in the DOM or
	// timeout elapses. On expiry the error wraps ErrTimeout.
	WaitPresent(ctx context.Context, loc Locator, timeout time.Duration) (Element, error)

	// WaitVisible is WaitPresent with the extra requirement that the element
	// is rendered and visible.
	WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) (Element, error)

	// Screenshot returns a PNG of the current viewport.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close ends the session and releases the browser process.
	Close(ctx context.Context) error
}

// Element is a handle on one node of the current page.
type Element interface {
	Click(ctx context.Context) error
	// SendKeys types into the element. For a file input the keys are a local
	// file path and the file is attached to the control.
	SendKeys(ctx context.Context, keys string) error
	IsDisplayed(ctx context.Context) (bool, error)
	// Attribute returns the live value of the named attribute or property.
	Attribute(ctx context.Context, name string) (string, error)
	// Locator reports how the element was found.
	Locator() Locator
}
