// File: internal/mocks/driver.go
// Scriptable fake browser session for deterministic state-machine and
// adapter tests. Every element is present unless scripted missing or failing.
package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/draftbay/lister-cli/internal/browser"
)

// Call records one driver operation.
type Call struct {
	Op       string
	Selector string
	Value    string
}

// FakeSession implements browser.Session.
type FakeSession struct {
	mu    sync.Mutex
	calls []Call

	// CloseCount counts release calls; the flow must land on exactly one.
	CloseCount int
	// CloseErr is returned from Close.
	CloseErr error

	// Missing selectors behave as never appearing: ops on them return
	// browser.ErrNotFound after "waiting".
	Missing map[string]bool
	// Errors maps a selector to a scripted non-ErrNotFound failure.
	Errors map[string]error
	// NavigateErrs maps a URL to a scripted navigation failure.
	NavigateErrs map[string]error
	// SendKeysErrs maps typed text to a scripted failure, so a single item's
	// entry can fail while the same field works for every other item.
	SendKeysErrs map[string]error
	// NewTabErr, when set, makes NewTab fail.
	NewTabErr error
	// TextsBySel maps a selector to the element texts it yields.
	TextsBySel map[string][]string
}

func NewFakeSession() *FakeSession {
	return &FakeSession{
		Missing:      map[string]bool{},
		Errors:       map[string]error{},
		NavigateErrs: map[string]error{},
		SendKeysErrs: map[string]error{},
		TextsBySel:   map[string][]string{},
	}
}

func (f *FakeSession) record(op, sel, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Selector: sel, Value: value})
}

// Calls returns a copy of the recorded operations in order.
func (f *FakeSession) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsFor returns the recorded operations matching op.
func (f *FakeSession) CallsFor(op string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeSession) elementErr(sel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.Errors[sel]; ok {
		return err
	}
	if f.Missing[sel] {
		return fmt.Errorf("%w: %q", browser.ErrNotFound, sel)
	}
	return nil
}

func (f *FakeSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("navigate", "", url)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.NavigateErrs[url]
}

func (f *FakeSession) WaitVisible(ctx context.Context, sel string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("wait_visible", sel, "")
	return f.elementErr(sel)
}

func (f *FakeSession) Click(ctx context.Context, sel string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("click", sel, "")
	return f.elementErr(sel)
}

func (f *FakeSession) SendKeys(ctx context.Context, sel, text string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("send_keys", sel, text)
	f.mu.Lock()
	if err, ok := f.SendKeysErrs[text]; ok {
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()
	return f.elementErr(sel)
}

func (f *FakeSession) UploadFile(ctx context.Context, sel, path string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("upload_file", sel, path)
	return f.elementErr(sel)
}

func (f *FakeSession) Texts(ctx context.Context, sel string, _ time.Duration) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.record("texts", sel, "")
	if err := f.elementErr(sel); err != nil {
		if errors.Is(err, browser.ErrNotFound) {
			// Matches the real driver: no elements within the wait is zero
			// results for text extraction.
			return nil, nil
		}
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.TextsBySel[sel], nil
}

// NewTab hands the same fake back; tab closes therefore also bump CloseCount.
func (f *FakeSession) NewTab(ctx context.Context) (browser.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.record("new_tab", "", "")
	if f.NewTabErr != nil {
		return nil, f.NewTabErr
	}
	return f, nil
}

func (f *FakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseCount++
	return f.CloseErr
}
