// Package testutil provides the shared fakes the package tests are built on:
// a scriptable page driver and a manual clock.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/seatwatch/seatwatch/internal/browser"
	"github.com/seatwatch/seatwatch/internal/target"
)

// FakeDriver implements browser.Driver. By default every Open returns the
// configured Session; set OpenFunc for per-call behavior.
type FakeDriver struct {
	mu sync.Mutex

	// Session is returned by Open when OpenFunc is nil.
	Session *FakeSession
	// OpenErr, when set, makes every Open fail.
	OpenErr error
	// OpenFunc overrides Open entirely.
	OpenFunc func(ctx context.Context, t *target.Target) (browser.Session, error)

	opens int
}

func (d *FakeDriver) Open(ctx context.Context, t *target.Target) (browser.Session, error) {
	d.mu.Lock()
	d.opens++
	d.mu.Unlock()

	if d.OpenFunc != nil {
		return d.OpenFunc(ctx, t)
	}
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	if d.Session != nil {
		return d.Session, nil
	}
	return &FakeSession{}, nil
}

// Opens returns how many times Open was called.
func (d *FakeDriver) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

// FakeSession implements browser.Session. Zero value: every stage succeeds,
// no challenge, probe sees nothing available, no confirmation. Set the
// *Func fields to script behavior; calls and captures are recorded.
type FakeSession struct {
	mu sync.Mutex

	ProbeFunc               func(ctx context.Context) (browser.Snapshot, error)
	AuthenticateFunc        func(ctx context.Context) (bool, error)
	NavigateToSelectionFunc func(ctx context.Context) error
	DetectChallengeFunc     func(ctx context.Context) (bool, error)
	SolveChallengeFunc      func(ctx context.Context) (bool, error)
	SelectInventoryFunc     func(ctx context.Context, qty int) (bool, error)
	PayFunc                 func(ctx context.Context) (bool, error)
	ExtractConfirmationFunc func(ctx context.Context) (*browser.Confirmation, error)

	calls    []string
	captures []string
	closed   bool
}

func (s *FakeSession) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *FakeSession) Probe(ctx context.Context) (browser.Snapshot, error) {
	s.record("probe")
	if s.ProbeFunc != nil {
		return s.ProbeFunc(ctx)
	}
	return browser.Snapshot{}, nil
}

func (s *FakeSession) Authenticate(ctx context.Context) (bool, error) {
	s.record("authenticate")
	if s.AuthenticateFunc != nil {
		return s.AuthenticateFunc(ctx)
	}
	return true, nil
}

func (s *FakeSession) NavigateToSelection(ctx context.Context) error {
	s.record("navigate_to_selection")
	if s.NavigateToSelectionFunc != nil {
		return s.NavigateToSelectionFunc(ctx)
	}
	return nil
}

func (s *FakeSession) DetectChallenge(ctx context.Context) (bool, error) {
	s.record("detect_challenge")
	if s.DetectChallengeFunc != nil {
		return s.DetectChallengeFunc(ctx)
	}
	return false, nil
}

func (s *FakeSession) SolveChallenge(ctx context.Context) (bool, error) {
	s.record("solve_challenge")
	if s.SolveChallengeFunc != nil {
		return s.SolveChallengeFunc(ctx)
	}
	return true, nil
}

func (s *FakeSession) SelectInventory(ctx context.Context, qty int) (bool, error) {
	s.record("select_inventory")
	if s.SelectInventoryFunc != nil {
		return s.SelectInventoryFunc(ctx, qty)
	}
	return true, nil
}

func (s *FakeSession) Pay(ctx context.Context) (bool, error) {
	s.record("pay")
	if s.PayFunc != nil {
		return s.PayFunc(ctx)
	}
	return true, nil
}

func (s *FakeSession) ExtractConfirmation(ctx context.Context) (*browser.Confirmation, error) {
	s.record("extract_confirmation")
	if s.ExtractConfirmationFunc != nil {
		return s.ExtractConfirmationFunc(ctx)
	}
	return nil, nil
}

func (s *FakeSession) Capture(ctx context.Context, label string) (browser.ArtifactRef, error) {
	s.mu.Lock()
	s.captures = append(s.captures, label)
	s.mu.Unlock()
	return browser.ArtifactRef{Label: label, Path: "/dev/null/" + label, CapturedAt: time.Now()}, nil
}

func (s *FakeSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Calls returns the ordered method calls made on the session, captures
// excluded.
func (s *FakeSession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Captures returns the ordered capture labels.
func (s *FakeSession) Captures() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.captures...)
}

// Closed reports whether Close was called.
func (s *FakeSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ManualClock implements clock.Clock without real time. Sleep returns
// immediately, records the requested duration, and advances the clock by it.
type ManualClock struct {
	mu sync.Mutex

	// OnSleep, when set, is consulted after each recorded sleep; returning
	// an error makes Sleep fail, which tests use to stop loops.
	OnSleep func(d time.Duration) error

	now    time.Time
	sleeps []time.Duration
}

// NewManualClock creates a clock starting at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	hook := c.OnSleep
	c.mu.Unlock()

	if hook != nil {
		return hook(d)
	}
	return nil
}

// Advance moves the clock forward without recording a sleep.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Sleeps returns the recorded sleep durations in order.
func (c *ManualClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}
