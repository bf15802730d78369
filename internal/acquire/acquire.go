// Package acquire drives the purchase pipeline for a target whose tickets
// just became available: authenticate, select inventory, clear challenges,
// pay, verify the confirmation. One attempt runs the stages strictly in
// order; the whole pipeline retries from the top with linear backoff until
// it succeeds or exhausts its budget. At most one live acquisition exists
// per target, enforced here by an admission check — a conflicting trigger is
// dropped, never queued.
package acquire

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/seatwatch/seatwatch/internal/browser"
	"github.com/seatwatch/seatwatch/internal/clock"
	"github.com/seatwatch/seatwatch/internal/config"
	"github.com/seatwatch/seatwatch/internal/errors"
	"github.com/seatwatch/seatwatch/internal/event"
	"github.com/seatwatch/seatwatch/internal/logging"
	"github.com/seatwatch/seatwatch/internal/target"
)

// Result summarizes a finished acquisition.
type Result struct {
	TargetID string
	// Confirmation is set only on success.
	Confirmation *browser.Confirmation
	// Attempts is how many pipeline runs were made.
	Attempts int
	// Artifacts is the diagnostic trail across all attempts.
	Artifacts []string
	// FailureReason is the last attempt's failure, empty on success.
	FailureReason string
}

// Succeeded reports whether the acquisition ended with a verified
// confirmation.
func (r *Result) Succeeded() bool {
	return r.Confirmation != nil
}

// Orchestrator owns the acquisition pipeline and its admission control.
type Orchestrator struct {
	driver   browser.Driver
	registry *target.Registry
	bookings *BookingStore
	bus      *event.Bus
	clk      clock.Clock
	cfg      config.PurchaseConfig
	logger   *logging.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// New creates an orchestrator. bus and bookings may be nil.
func New(driver browser.Driver, registry *target.Registry, bookings *BookingStore, bus *event.Bus, clk clock.Clock, cfg config.PurchaseConfig, logger *logging.Logger) *Orchestrator {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Orchestrator{
		driver:   driver,
		registry: registry,
		bookings: bookings,
		bus:      bus,
		clk:      clk,
		cfg:      cfg,
		logger:   logger,
		active:   make(map[string]struct{}),
	}
}

// Active reports whether an acquisition is currently live for the target.
// The scheduler uses this to quiesce probing during an attempt.
func (o *Orchestrator) Active(targetID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, live := o.active[targetID]
	return live
}

// admit reserves the target for this acquisition.
func (o *Orchestrator) admit(targetID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, live := o.active[targetID]; live {
		return fmt.Errorf("target %s: %w", targetID, errors.ErrAttemptInProgress)
	}
	o.active[targetID] = struct{}{}
	return nil
}

func (o *Orchestrator) release(targetID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, targetID)
}

// Acquire runs the pipeline to a terminal outcome. A conflicting trigger
// returns ErrAttemptInProgress immediately; the caller drops it.
func (o *Orchestrator) Acquire(ctx context.Context, t *target.Target) (*Result, error) {
	if err := o.admit(t.ID); err != nil {
		o.logger.Warn("acquisition already in progress, dropping trigger", "target_id", t.ID)
		return nil, err
	}
	defer o.release(t.ID)

	logger := o.logger.WithTarget(t.ID)
	result := &Result{TargetID: t.ID}

	maxRetries := o.cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result.Attempts = attempt
		o.publish(event.NewAttemptStartedEvent(t.ID, t.Name, attempt, maxRetries))

		att, conf := o.runAttempt(ctx, t, attempt)
		result.Artifacts = append(result.Artifacts, att.Artifacts...)

		if conf != nil {
			result.Confirmation = conf
			o.finishSuccess(t, conf, logger)
			return result, nil
		}

		result.FailureReason = att.FailureReason
		logger.Warn("attempt failed",
			"attempt", attempt,
			"max_retries", maxRetries,
			"reason", att.FailureReason,
		)

		if err := ctx.Err(); err != nil {
			o.finishFailure(t, result, logger)
			return result, err
		}
		if attempt < maxRetries {
			// Linear backoff, a floor between attempts.
			delay := o.cfg.BaseRetryDelay() * time.Duration(attempt)
			if err := o.clk.Sleep(ctx, delay); err != nil {
				o.finishFailure(t, result, logger)
				return result, err
			}
		}
	}

	o.finishFailure(t, result, logger)
	return result, fmt.Errorf("target %s after %d attempts: %w", t.ID, result.Attempts, errors.ErrRetriesExhausted)
}

// finishSuccess writes the purchase back: booking record, target status,
// success event.
func (o *Orchestrator) finishSuccess(t *target.Target, conf *browser.Confirmation, logger *logging.Logger) {
	logger.Info("purchase confirmed", "confirmation_id", conf.ID, "amount", conf.Amount)

	if o.bookings != nil {
		if _, err := o.bookings.Save(t, conf); err != nil {
			// The purchase happened; a failed local record is log-worthy only.
			logger.Error("failed to persist booking record", "error", err)
		}
	}
	if err := o.registry.UpdateStatus(t.ID, func(s *target.Status) {
		s.LastError = ""
	}); err != nil {
		logger.Error("failed to update target after purchase", "error", err)
	}

	o.publish(event.NewAcquisitionSucceededEvent(t.ID, t.Name, conf.ID, conf.Amount, t.Quantity))
}

// finishFailure records the terminal failure on the target and reports it.
// Tracking stays enabled: the next availability episode gets a fresh chance.
func (o *Orchestrator) finishFailure(t *target.Target, result *Result, logger *logging.Logger) {
	logger.Error("acquisition failed",
		"attempts", result.Attempts,
		"reason", result.FailureReason,
	)

	if err := o.registry.UpdateStatus(t.ID, func(s *target.Status) {
		s.LastError = result.FailureReason
	}); err != nil {
		logger.Error("failed to record acquisition failure", "error", err)
	}

	o.publish(event.NewAcquisitionFailedEvent(t.ID, t.Name, result.FailureReason, result.Attempts, result.Artifacts))
}

func (o *Orchestrator) publish(e event.Event) {
	if o.bus != nil {
		o.bus.Publish(e)
	}
}
