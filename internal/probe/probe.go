// Package probe performs single availability checks against a target. A
// Prober holds no per-target state: each Check opens a fresh page session,
// reads availability, and closes the session. Classification of failures
// into recoverable probe errors happens here so the scheduler never has to
// inspect driver internals.
package probe

import (
	"context"
	"time"

	"github.com/seatwatch/seatwatch/internal/browser"
	"github.com/seatwatch/seatwatch/internal/clock"
	"github.com/seatwatch/seatwatch/internal/errors"
	"github.com/seatwatch/seatwatch/internal/logging"
	"github.com/seatwatch/seatwatch/internal/target"
)

// Result is the classified outcome of one availability check.
type Result struct {
	// Available reports purchasable inventory on the page.
	Available bool
	// SoldOut reports an explicit sold-out marker.
	SoldOut bool
	// CheckedAt is when the check completed.
	CheckedAt time.Time
}

// Prober runs availability checks through a page driver.
type Prober struct {
	driver  browser.Driver
	clk     clock.Clock
	timeout time.Duration
	logger  *logging.Logger
}

// New creates a prober. timeout bounds one whole check, session open
// included.
func New(driver browser.Driver, clk clock.Clock, timeout time.Duration, logger *logging.Logger) *Prober {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Prober{driver: driver, clk: clk, timeout: timeout, logger: logger}
}

// Check performs one availability check for the target. Any driver failure
// comes back as a *errors.ProbeError: recoverable, recorded by the caller,
// never fatal to scheduling.
func (p *Prober) Check(ctx context.Context, t *target.Target) (Result, error) {
	checkCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	sess, err := p.driver.Open(checkCtx, t)
	if err != nil {
		return Result{}, errors.NewProbeError("failed to open event page", err).WithTargetID(t.ID)
	}
	defer sess.Close()

	snap, err := sess.Probe(checkCtx)
	if err != nil {
		return Result{}, errors.NewProbeError("failed to read availability", err).WithTargetID(t.ID)
	}

	res := Result{
		Available: snap.Available,
		SoldOut:   snap.SoldOut,
		CheckedAt: p.clk.Now(),
	}
	p.logger.Debug("availability check complete",
		"target_id", t.ID,
		"available", res.Available,
		"sold_out", res.SoldOut,
	)
	return res, nil
}
