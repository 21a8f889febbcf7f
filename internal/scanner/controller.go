package scanner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/presenzahq/presenza/internal/client"
)

// ErrEmptyToken is returned by SubmitManual when the typed token is blank.
// It is rejected locally; no request is made.
var ErrEmptyToken = errors.New("scanner: token must not be empty")

// DefaultClearDelay is how long a success message stays on screen before
// the controller clears it.
const DefaultClearDelay = 3 * time.Second

// Submitter sends a decoded or hand-typed token to the server.
// *client.Client satisfies it.
type Submitter interface {
	Scan(ctx context.Context, token string, userID int64, action string) (*client.ScanResult, error)
}

// State is a snapshot of what the UI should show.
type State struct {
	Scanning bool
	Result   *client.ScanResult
	Err      error
}

// Controller drives the scan screen: at most one capture session at a
// time, a manual-entry fallback, and a result panel whose success message
// clears itself after a short delay. Errors stay visible until the next
// attempt.
type Controller struct {
	submitter Submitter
	userID    int64
	action    string

	clearDelay time.Duration
	onChange   func(State)

	mu         sync.Mutex
	session    *Session
	cancel     context.CancelFunc
	result     *client.ScanResult
	err        error
	clearTimer *time.Timer
	generation int
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithClearDelay overrides the success auto-clear delay.
func WithClearDelay(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.clearDelay = d
	}
}

// WithOnChange registers a callback invoked with a state snapshot after
// every transition. The callback runs with the controller unlocked.
func WithOnChange(fn func(State)) ControllerOption {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// NewController builds a controller for one employee and one action kind.
func NewController(submitter Submitter, userID int64, action string, opts ...ControllerOption) *Controller {
	c := &Controller{
		submitter:  submitter,
		userID:     userID,
		action:     action,
		clearDelay: DefaultClearDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAction switches which punch the next submission performs.
func (c *Controller) SetAction(action string) {
	c.mu.Lock()
	c.action = action
	c.mu.Unlock()
}

// Start opens a capture session. If one is already running this is a
// no-op: the new source is closed and the active session keeps its
// camera.
func (c *Controller) Start(ctx context.Context, source FrameSource, decoder Decoder) {
	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		_ = source.Close() //nolint:errcheck
		return
	}

	c.result = nil
	c.err = nil
	c.stopClearTimerLocked()

	sessCtx, cancel := context.WithCancel(ctx)
	sess := newSession(source, decoder,
		func(token string) { c.handleToken(sessCtx, token) },
		func(err error) { c.handleSessionError(err) },
	)
	c.session = sess
	c.cancel = cancel
	c.mu.Unlock()

	c.notify()
	go sess.run(sessCtx)
}

// Stop ends the active session, if any, without submitting anything.
func (c *Controller) Stop() {
	c.mu.Lock()
	sess, cancel := c.session, c.cancel
	c.session = nil
	c.cancel = nil
	c.mu.Unlock()

	if sess != nil {
		sess.Stop()
		cancel()
		c.notify()
	}
}

// SubmitManual sends a hand-typed token. Blank input is rejected before
// any request is made.
func (c *Controller) SubmitManual(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		c.setError(ErrEmptyToken)
		return ErrEmptyToken
	}
	c.submit(ctx, token)

	c.mu.Lock()
	err := c.err
	c.mu.Unlock()
	return err
}

// Scanning reports whether a capture session is active.
func (c *Controller) Scanning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Snapshot returns the current UI state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Scanning: c.session != nil, Result: c.result, Err: c.err}
}

func (c *Controller) handleToken(ctx context.Context, token string) {
	c.clearSession()
	c.submit(ctx, token)
}

func (c *Controller) handleSessionError(err error) {
	c.clearSession()
	c.setError(err)
}

// clearSession drops the session reference once the session has already
// stopped itself.
func (c *Controller) clearSession() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.session = nil
	c.cancel = nil
	c.mu.Unlock()
}

func (c *Controller) submit(ctx context.Context, token string) {
	c.mu.Lock()
	action := c.action
	c.mu.Unlock()

	result, err := c.submitter.Scan(ctx, token, c.userID, action)

	c.mu.Lock()
	c.stopClearTimerLocked()
	if err != nil {
		c.result = nil
		c.err = err
		c.mu.Unlock()
		c.notify()
		return
	}

	c.result = result
	c.err = nil
	c.generation++
	gen := c.generation
	c.clearTimer = time.AfterFunc(c.clearDelay, func() { c.clearResult(gen) })
	c.mu.Unlock()
	c.notify()
}

// clearResult wipes a success message after the display delay. The
// generation check keeps a stale timer from erasing a newer result.
func (c *Controller) clearResult(gen int) {
	c.mu.Lock()
	if gen != c.generation || c.result == nil {
		c.mu.Unlock()
		return
	}
	c.result = nil
	c.clearTimer = nil
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) setError(err error) {
	c.mu.Lock()
	c.stopClearTimerLocked()
	c.result = nil
	c.err = err
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) stopClearTimerLocked() {
	if c.clearTimer != nil {
		c.clearTimer.Stop()
		c.clearTimer = nil
	}
	c.generation++
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.Snapshot())
}
