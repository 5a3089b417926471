// File: internal/browser/session.go
// ChromeSession owns a single Chrome instance driven over CDP for the lifetime
// of one run. The allocator reuses a persistent user profile so cookies (and
// any prior sign-in) carry over, and the usual automation tells are suppressed
// so the marketplace UI behaves as it would for a human operator.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/draftbay/lister-cli/internal/config"
)

// webdriverMask hides the one signal naive bot checks look at first.
const webdriverMask = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// ChromeSession implements Session on top of chromedp.
type ChromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewSession launches Chrome with the configured profile and returns the owned
// session. Launch failure (missing binary, locked profile, dead allocator) is
// fatal to the run and reported to the caller; there is no retry.
func NewSession(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ChromeSession, error) {
	opts := allocatorOptions(cfg.Browser)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		logger:      logger.Named("session"),
	}

	launchTimeout := cfg.Browser.LaunchTimeout
	if launchTimeout <= 0 {
		launchTimeout = 60 * time.Second
	}
	launchCtx, launchCancel := context.WithTimeout(browserCtx, launchTimeout)
	defer launchCancel()

	// Running the first action starts the browser process. Masking the
	// webdriver flag must happen before any page loads, so it rides along.
	err := chromedp.Run(launchCtx,
		emulation.SetUserAgentOverride(cfg.Browser.UserAgent),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(webdriverMask).Do(ctx)
			return err
		}),
	)
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	s.logger.Info("Browser session acquired.",
		zap.String("profile", cfg.Browser.ProfileDirectory),
		zap.Bool("headless", cfg.Browser.Headless))
	return s, nil
}

// allocatorOptions translates the browser config into exec-allocator flags.
func allocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1440, 900),
	)
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	if cfg.ProfileDirectory != "" {
		opts = append(opts, chromedp.Flag("profile-directory", cfg.ProfileDirectory))
	}
	if cfg.BinaryLocation != "" {
		opts = append(opts, chromedp.ExecPath(cfg.BinaryLocation))
	}
	return opts
}

// NewTab opens a fresh page in the same browser process. The tab shares the
// profile (cookies, sign-in state) but has its own lifetime; closing it never
// touches the session's main page.
func (s *ChromeSession) NewTab(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, tabCancel := chromedp.NewContext(s.ctx)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return &ChromeSession{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: func() {},
		logger:      s.logger.Named("tab"),
	}, nil
}

// opContext derives a bounded operation context from the session context while
// still honoring cancellation of the caller's context.
func (s *ChromeSession) opContext(ctx context.Context, wait time.Duration) (context.Context, context.CancelFunc) {
	opCtx, opCancel := context.WithTimeout(s.ctx, wait)
	stop := context.AfterFunc(ctx, opCancel)
	return opCtx, func() {
		stop()
		opCancel()
	}
}

// Navigate loads the URL and waits for the document body to be ready.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))

	opCtx, cancel := s.opContext(ctx, 90*time.Second)
	defer cancel()

	if err := chromedp.Run(opCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until sel is visible or the wait elapses.
func (s *ChromeSession) WaitVisible(ctx context.Context, sel string, wait time.Duration) error {
	opCtx, cancel := s.opContext(ctx, wait)
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
		return s.mapElementErr(opCtx, ctx, sel, err)
	}
	return nil
}

// Click waits for sel and clicks it.
func (s *ChromeSession) Click(ctx context.Context, sel string, wait time.Duration) error {
	opCtx, cancel := s.opContext(ctx, wait)
	defer cancel()

	err := chromedp.Run(opCtx,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.ScrollIntoView(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
	)
	if err != nil {
		return s.mapElementErr(opCtx, ctx, sel, err)
	}
	return nil
}

// SendKeys waits for sel and types text into it.
func (s *ChromeSession) SendKeys(ctx context.Context, sel, text string, wait time.Duration) error {
	opCtx, cancel := s.opContext(ctx, wait)
	defer cancel()

	err := chromedp.Run(opCtx,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, text, chromedp.ByQuery),
	)
	if err != nil {
		return s.mapElementErr(opCtx, ctx, sel, err)
	}
	return nil
}

// UploadFile attaches the file at path to the input matching sel. File inputs
// are frequently hidden behind styled buttons, so only presence is required,
// not visibility.
func (s *ChromeSession) UploadFile(ctx context.Context, sel, path string, wait time.Duration) error {
	opCtx, cancel := s.opContext(ctx, wait)
	defer cancel()

	err := chromedp.Run(opCtx,
		chromedp.WaitReady(sel, chromedp.ByQuery),
		chromedp.SetUploadFiles(sel, []string{path}, chromedp.ByQuery),
	)
	if err != nil {
		return s.mapElementErr(opCtx, ctx, sel, err)
	}
	return nil
}

// Texts returns the text content of all elements matching sel. If no element
// appears within the wait, the result is an empty slice: for scraping,
// "nothing matched" is an answer, not a failure.
func (s *ChromeSession) Texts(ctx context.Context, sel string, wait time.Duration) ([]string, error) {
	if err := s.WaitVisible(ctx, sel, wait); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	opCtx, cancel := s.opContext(ctx, wait)
	defer cancel()

	var texts []string
	script := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(e => e.textContent)`, sel)
	if err := chromedp.Run(opCtx, chromedp.Evaluate(script, &texts)); err != nil {
		return nil, fmt.Errorf("extract %q: %w", sel, err)
	}
	return texts, nil
}

// Close releases the browser. Safe to call more than once; only the first call
// does work, and every exit path of a run must reach it.
func (s *ChromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Info("Releasing browser session.")
		// Graceful shutdown first so the profile is not left locked.
		if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("browser shutdown: %w", err)
		}
		s.cancel()
		s.allocCancel()
	})
	return s.closeErr
}

// mapElementErr folds a bounded-wait expiry into ErrNotFound while preserving
// caller/session cancellation as-is.
func (s *ChromeSession) mapElementErr(opCtx, callerCtx context.Context, sel string, err error) error {
	if callerCtx.Err() != nil {
		return callerCtx.Err()
	}
	if s.ctx.Err() != nil {
		return fmt.Errorf("session closed: %w", s.ctx.Err())
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) || strings.Contains(err.Error(), "deadline exceeded") {
		return fmt.Errorf("%w: %q", ErrNotFound, sel)
	}
	return fmt.Errorf("element %q: %w", sel, err)
}
