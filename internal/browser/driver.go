// File: internal/browser/driver.go
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that an element matching a selector did not appear
// within its bounded wait. Callers treat this as "element missing", never as a
// process-level failure.
var ErrNotFound = errors.New("element not found within wait timeout")

// Driver is the capability surface the listing flow and the browser-backed
// price source depend on. Every element operation carries a bounded wait so a
// slow page does not fail spuriously and a broken page does not hang.
//
// Implementations must be safe for use from a single goroutine at a time; the
// browser context is exclusively owned by its session.
type Driver interface {
	// Navigate loads the given URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until an element matching sel is visible, or returns
	// ErrNotFound once the wait elapses.
	WaitVisible(ctx context.Context, sel string, wait time.Duration) error
	// Click locates an element within the wait and clicks it.
	Click(ctx context.Context, sel string, wait time.Duration) error
	// SendKeys locates an element within the wait and types text into it.
	SendKeys(ctx context.Context, sel, text string, wait time.Duration) error
	// UploadFile locates a file input within the wait and attaches the file at
	// the given absolute path.
	UploadFile(ctx context.Context, sel, path string, wait time.Duration) error
	// Texts returns the text content of every element matching sel. A selector
	// that matches nothing yields an empty slice, not an error, once the wait
	// for the first match elapses.
	Texts(ctx context.Context, sel string, wait time.Duration) ([]string, error)
}

// Session extends Driver with the lifecycle the flow owns: one acquisition,
// guaranteed release.
type Session interface {
	Driver
	Close() error
}

// TabOpener opens a scoped page within an already-running browser. The
// browser-backed price source uses this to scrape in its own tab without
// disturbing the page the listing flow is on.
type TabOpener interface {
	NewTab(ctx context.Context) (Session, error)
}
