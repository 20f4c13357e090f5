// Package browser is the element-location capability the page objects are
// written against. Driver abstracts one isolated browser page; the
// Playwright implementation lives in playwright.go and an in-memory double
// in browsertest.
package browser

import (
	"context"
	"time"
)

// Driver drives one page of one isolated browser session.
//
// Every method that waits for the page is bounded: timeouts come from the
// explicit argument, the driver default, or the context deadline, whichever
// is shortest. A wait that runs out returns an error coded errs.Timeout.
type Driver interface {
	// Goto loads path (resolved against the base URL) and waits for
	// DOMContentLoaded.
	Goto(ctx context.Context, path string) error
	// WaitLoad waits for the current navigation to reach DOMContentLoaded.
	WaitLoad(ctx context.Context) error

	Fill(ctx context.Context, q Query, value string) error
	Click(ctx context.Context, q Query) error
	Check(ctx context.Context, q Query) error
	ScrollIntoView(ctx context.Context, q Query) error

	WaitVisible(ctx context.Context, q Query, timeout time.Duration) error
	WaitHidden(ctx context.Context, q Query, timeout time.Duration) error
	IsVisible(ctx context.Context, q Query) (bool, error)

	Text(ctx context.Context, q Query) (string, error)
	InputValue(ctx context.Context, q Query) (string, error)
	Attribute(ctx context.Context, q Query, name string) (string, error)
	Count(ctx context.Context, q Query) (int, error)

	URL() string
	Title(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
}
