// File: internal/flow/flow.go
// The listing flow state machine. It exclusively owns the browser session for
// one run: sign in (with an optional human-resolved CAPTCHA pause), navigate
// to the prelist page, then walk every item through search, disambiguation,
// condition, title and photo attach. A failure inside one item's sequence is
// contained to that item; a failure before the item loop is fatal to the run.
// Either way the session is released exactly once before the flow returns.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/draftbay/lister-cli/internal/browser"
	"github.com/draftbay/lister-cli/internal/config"
	"github.com/draftbay/lister-cli/internal/items"
	"github.com/draftbay/lister-cli/internal/pricing"
)

// Pricer supplies the reference price for an item before its UI sequence.
type Pricer interface {
	Aggregate(ctx context.Context, product string) (pricing.AggregatedPrice, error)
}

// FatalError marks a failure above the per-item boundary: browser loss,
// missing authentication fields, unrecoverable navigation. It always escapes
// to the caller, after session release.
type FatalError struct {
	State State
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal at %s: %v", e.State, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// ItemResult is the per-item line of the final report. Every discovered item
// gets exactly one, whether its sequence succeeded or where it broke.
type ItemResult struct {
	Item       items.ItemTask
	Price      pricing.AggregatedPrice
	PriceKnown bool
	FailedAt   State
	Err        error
}

// Succeeded reports whether the item made it through photo attach.
func (r ItemResult) Succeeded() bool { return r.Err == nil }

// Flow drives one listing run.
type Flow struct {
	sess       browser.Session
	sel        Selectors
	cfg        *config.Config
	pricer     Pricer
	classifier items.Classifier
	logger     *zap.Logger

	state  atomic.Int32
	resume chan struct{}
}

// Option adjusts a Flow at construction.
type Option func(*Flow)

// WithSelectors overrides the default selector table.
func WithSelectors(sel Selectors) Option {
	return func(f *Flow) { f.sel = sel }
}

// New builds a flow that owns sess for the duration of one Run.
func New(cfg *config.Config, sess browser.Session, pricer Pricer, classifier items.Classifier, logger *zap.Logger, opts ...Option) *Flow {
	f := &Flow{
		sess:       sess,
		sel:        DefaultSelectors(),
		cfg:        cfg,
		pricer:     pricer,
		classifier: classifier,
		logger:     logger.Named("flow"),
		resume:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the flow's current observable state.
func (f *Flow) State() State { return State(f.state.Load()) }

func (f *Flow) setState(s State) {
	f.state.Store(int32(s))
	f.logger.Debug("State transition.", zap.Stringer("state", s))
}

// Resume acknowledges that the operator has resolved the pending challenge.
// Safe to call from any goroutine and at any time; a signal sent while no
// challenge is pending is consumed by the next one.
func (f *Flow) Resume() {
	select {
	case f.resume <- struct{}{}:
	default:
	}
}

// Run executes the whole flow for the given tasks and returns one result per
// task. The session is released on every exit path, including fatal sign-in
// failures, before the error surfaces.
func (f *Flow) Run(ctx context.Context, tasks []items.ItemTask) (results []ItemResult, err error) {
	defer func() {
		if closeErr := f.sess.Close(); closeErr != nil {
			f.logger.Warn("Session release reported an error.", zap.Error(closeErr))
		}
		if err == nil {
			f.setState(StateComplete)
		}
	}()

	if err := f.signIn(ctx); err != nil {
		return nil, err
	}

	f.setState(StateOnPrelistPage)
	if err := f.sess.Navigate(ctx, f.cfg.Flow.PrelistURL); err != nil {
		return nil, &FatalError{State: StateOnPrelistPage, Err: fmt.Errorf("navigate to prelist page: %w", err)}
	}

	results = make([]ItemResult, 0, len(tasks))
	for _, task := range tasks {
		if ctx.Err() != nil {
			return results, &FatalError{State: f.State(), Err: ctx.Err()}
		}
		results = append(results, f.runItem(ctx, task))
	}
	return results, nil
}

// signIn walks the machine from Init to SignedIn. Any failure in here is
// fatal: without authentication there is nothing to isolate per item.
func (f *Flow) signIn(ctx context.Context) error {
	f.setState(StateSignedOut)
	if err := f.sess.Navigate(ctx, f.cfg.Flow.SignInURL); err != nil {
		return &FatalError{State: StateSignedOut, Err: fmt.Errorf("navigate to sign-in page: %w", err)}
	}

	if err := f.captchaGate(ctx); err != nil {
		return &FatalError{State: f.State(), Err: err}
	}

	if err := f.authenticate(ctx); err != nil {
		return &FatalError{State: StateSignedOut, Err: err}
	}

	f.setState(StateSignedIn)
	f.logger.Info("Signed in.")
	return nil
}

// captchaGate probes for a challenge indicator after the sign-in page loads.
// Absence within the probe window is the expected common case and proceeds
// silently. Presence suspends the machine in CaptchaPending until the
// operator calls Resume, the configured ceiling passes, or the run context
// is cancelled.
func (f *Flow) captchaGate(ctx context.Context) error {
	err := f.sess.WaitVisible(ctx, f.sel.CaptchaIndicator, f.cfg.Flow.CaptchaProbeWait)
	if errors.Is(err, browser.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("probe for challenge: %w", err)
	}

	f.setState(StateCaptchaPending)
	f.logger.Warn("Challenge detected; waiting for the operator to resolve it.")

	var ceiling <-chan time.Time
	if wait := f.cfg.Flow.CaptchaResolveWait; wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		ceiling = timer.C
	}

	select {
	case <-f.resume:
		f.logger.Info("Operator acknowledged the challenge; resuming.")
		return nil
	case <-ceiling:
		return fmt.Errorf("challenge was not resolved within %v", f.cfg.Flow.CaptchaResolveWait)
	case <-ctx.Done():
		return fmt.Errorf("aborted while waiting for challenge resolution: %w", ctx.Err())
	}
}

// authenticate supplies credentials to the two sequential sign-in fields.
// A missing or renamed field here cannot be worked around.
func (f *Flow) authenticate(ctx context.Context) error {
	wait := f.cfg.Flow.StepTimeout

	if err := f.sess.SendKeys(ctx, f.sel.EmailField, f.cfg.Ebay.Email, wait); err != nil {
		return fmt.Errorf("enter account identifier: %w", err)
	}
	if err := f.sess.Click(ctx, f.sel.ContinueButton, wait); err != nil {
		return fmt.Errorf("continue past identifier: %w", err)
	}
	if err := f.sess.SendKeys(ctx, f.sel.PasswordField, f.cfg.Ebay.Password, wait); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}
	if err := f.sess.Click(ctx, f.sel.SignInButton, wait); err != nil {
		return fmt.Errorf("submit sign-in: %w", err)
	}
	return nil
}

// runItem performs the UI sequence for one task. Every failure is caught
// here: logged with the item's identity, recorded in the result, and the
// caller moves on to the next item.
func (f *Flow) runItem(ctx context.Context, task items.ItemTask) ItemResult {
	res := ItemResult{Item: task}
	itemLog := f.logger.With(zap.String("image", task.ImagePath))

	name, err := f.classifier.Classify(ctx, task.ImagePath)
	if err != nil {
		f.setState(StateSearching)
		res.FailedAt = StateSearching
		res.Err = fmt.Errorf("classify product: %w", err)
		itemLog.Warn("Item skipped: no product label.", zap.Error(err))
		return res
	}
	task.ProductName = name
	res.Item = task
	itemLog = itemLog.With(zap.String("product", name))

	price, err := f.pricer.Aggregate(ctx, name)
	switch {
	case err == nil:
		res.Price = price
		res.PriceKnown = true
		itemLog.Info("Reference price resolved.",
			zap.Float64("price", price.Value),
			zap.Int("source_count", price.SourceCount),
			zap.Strings("sources", price.Sources))
	case errors.Is(err, pricing.ErrUnavailable):
		itemLog.Info("No reference price available from any source.")
	default:
		itemLog.Warn("Price aggregation failed.", zap.Error(err))
	}

	wait := f.cfg.Flow.StepTimeout
	steps := []struct {
		state State
		run   func(context.Context) error
	}{
		{StateSearching, func(ctx context.Context) error {
			if err := f.sess.SendKeys(ctx, f.sel.KeywordBox, name, wait); err != nil {
				return err
			}
			return f.sess.Click(ctx, f.sel.KeywordSearchButton, wait)
		}},
		{StateDisambiguating, func(ctx context.Context) error {
			return f.sess.Click(ctx, f.sel.ContinueWithoutMatch, wait)
		}},
		{StateConditionSelected, func(ctx context.Context) error {
			return f.sess.Click(ctx, f.sel.ConditionButton, wait)
		}},
		{StateTitleEntered, func(ctx context.Context) error {
			return f.sess.SendKeys(ctx, f.sel.TitleField, name, wait)
		}},
		{StatePhotoAttached, func(ctx context.Context) error {
			if err := f.sess.Click(ctx, f.sel.AddPhotosButton, wait); err != nil {
				return err
			}
			return f.sess.UploadFile(ctx, f.sel.PhotoFileInput, task.ImagePath, wait)
		}},
	}

	for _, step := range steps {
		f.setState(step.state)
		if err := step.run(ctx); err != nil {
			res.FailedAt = step.state
			res.Err = err
			itemLog.Warn("Item sequence failed; continuing with next item.",
				zap.Stringer("step", step.state),
				zap.Error(err))
			return res
		}
	}

	f.setState(StateItemDone)
	itemLog.Info("Listing staged through photo attach.")
	return res
}
