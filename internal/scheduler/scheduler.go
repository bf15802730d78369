// Package scheduler runs the adaptive monitoring loop: one concurrent probe
// cycle per enabled target, with the poll cadence tightening as a target's
// predicted on-sale time approaches. An unavailable-to-available transition
// triggers the acquisition pipeline exactly once per availability episode.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/seatwatch/seatwatch/internal/acquire"
	"github.com/seatwatch/seatwatch/internal/clock"
	"github.com/seatwatch/seatwatch/internal/config"
	"github.com/seatwatch/seatwatch/internal/event"
	"github.com/seatwatch/seatwatch/internal/logging"
	"github.com/seatwatch/seatwatch/internal/probe"
	"github.com/seatwatch/seatwatch/internal/target"
)

// Mode selects how Run behaves.
type Mode int

const (
	// ModeContinuous keeps probing until the context is cancelled.
	ModeContinuous Mode = iota
	// ModeSinglePass probes every enabled target once and returns.
	ModeSinglePass
)

// Scheduler owns the per-target probe loops.
type Scheduler struct {
	registry     *target.Registry
	prober       *probe.Prober
	orchestrator *acquire.Orchestrator
	bus          *event.Bus
	clk          clock.Clock
	logger       *logging.Logger

	base             time.Duration
	accelerated      time.Duration
	window           time.Duration
	autoPurchase     bool
	disableOnSuccess bool

	mu      sync.Mutex
	running map[string]struct{}
	wg      conc.WaitGroup
}

// New creates a scheduler. orchestrator and bus may be nil; without an
// orchestrator availability transitions are reported but not acted on.
func New(registry *target.Registry, prober *probe.Prober, orchestrator *acquire.Orchestrator, bus *event.Bus, clk clock.Clock, cfg *config.Config, logger *logging.Logger) *Scheduler {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Scheduler{
		registry:         registry,
		prober:           prober,
		orchestrator:     orchestrator,
		bus:              bus,
		clk:              clk,
		logger:           logger,
		base:             cfg.Monitor.BaseInterval(),
		accelerated:      cfg.Monitor.AcceleratedInterval(),
		window:           cfg.Monitor.AcceleratedWindow(),
		autoPurchase:     cfg.Purchase.AutoPurchase,
		disableOnSuccess: cfg.Purchase.DisableOnSuccess,
		running:          make(map[string]struct{}),
	}
}

// Run executes the selected mode. In single-pass mode the returned count is
// how many enabled targets are currently available; in continuous mode it is
// always 0 and Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, mode Mode) (int, error) {
	switch mode {
	case ModeSinglePass:
		return s.runOnce(ctx)
	default:
		return 0, s.runContinuous(ctx)
	}
}

// runOnce probes every enabled target concurrently, exactly once. Probes
// that detect a transition still hand off to the orchestrator, so the pass
// also waits for any triggered acquisitions before returning.
func (s *Scheduler) runOnce(ctx context.Context) (int, error) {
	var available atomic.Int64
	var wg conc.WaitGroup

	for _, t := range s.registry.Enabled() {
		wg.Go(func() {
			res, ok := s.probeOnce(ctx, t.ID)
			if ok && res.Available {
				available.Add(1)
			}
		})
	}
	wg.Wait()
	s.wg.Wait()

	return int(available.Load()), ctx.Err()
}

// runContinuous starts one probe loop per enabled target and keeps them in
// sync with registry reloads until the context is cancelled.
func (s *Scheduler) runContinuous(ctx context.Context) error {
	s.Resync(ctx)
	<-ctx.Done()
	s.wg.Wait()
	return ctx.Err()
}

// Resync starts probe loops for enabled targets that do not have one yet.
// Loops whose targets were removed or disabled exit on their own; callers
// invoke Resync after the registry reloads from an external edit.
func (s *Scheduler) Resync(ctx context.Context) {
	for _, t := range s.registry.Enabled() {
		s.mu.Lock()
		if _, live := s.running[t.ID]; live {
			s.mu.Unlock()
			continue
		}
		s.running[t.ID] = struct{}{}
		s.mu.Unlock()

		id := t.ID
		s.wg.Go(func() {
			defer func() {
				s.mu.Lock()
				delete(s.running, id)
				s.mu.Unlock()
			}()
			s.watchTarget(ctx, id)
		})
	}
}

// watchTarget is one target's perpetual probe cycle. The computed delay is a
// floor between probes, never a deadline: a slow probe just means the next
// one starts immediately after the floor elapses.
func (s *Scheduler) watchTarget(ctx context.Context, id string) {
	logger := s.logger.WithTarget(id)
	logger.Info("watching target")

	for {
		t, err := s.registry.Get(id)
		if err != nil {
			logger.Info("target removed, stopping watch")
			return
		}
		if !t.TrackingEnabled {
			logger.Info("tracking disabled, stopping watch")
			return
		}

		// Quiesce while an acquisition is live for this target; the
		// admission guard prevents re-entrant acquisition, and probing the
		// same page mid-purchase helps nobody.
		if s.orchestrator != nil && s.orchestrator.Active(id) {
			logger.Debug("acquisition in progress, skipping probe")
		} else {
			s.probeOnce(ctx, id)
		}

		delay := s.nextDelay(t, s.clk.Now())
		if err := s.clk.Sleep(ctx, delay); err != nil {
			return
		}
	}
}

// probeOnce performs one availability check and folds the outcome into the
// persisted record. Returns the result and whether the probe succeeded.
// Probe failures are recorded and reported, never fatal to the loop.
func (s *Scheduler) probeOnce(ctx context.Context, id string) (probe.Result, bool) {
	t, err := s.registry.Get(id)
	if err != nil {
		return probe.Result{}, false
	}
	logger := s.logger.WithTarget(id)

	res, err := s.prober.Check(ctx, t)
	if err != nil {
		var consecutive int
		updErr := s.registry.UpdateStatus(id, func(st *target.Status) {
			st.MergeError(err.Error(), s.clk.Now())
			consecutive = st.ConsecutiveErrors
		})
		if updErr != nil {
			logger.Error("failed to record probe error", "error", updErr)
		}
		logger.Warn("probe failed", "error", err, "consecutive_errors", consecutive)
		s.publish(event.NewProbeFailedEvent(id, err.Error(), consecutive))
		return probe.Result{}, false
	}

	wasAvailable := t.Status.Available
	if err := s.registry.UpdateStatus(id, func(st *target.Status) {
		st.MergeCheck(res.Available, res.SoldOut, res.CheckedAt)
	}); err != nil {
		logger.Error("failed to persist probe result", "error", err)
	}

	switch {
	case !wasAvailable && res.Available && !res.SoldOut:
		// A fresh availability episode: trigger acquisition exactly once.
		// Re-triggering requires availability to lapse and return.
		logger.Info("target became available", "url", t.URL)
		s.publish(event.NewTargetAvailableEvent(t.ID, t.Name, t.URL))
		s.trigger(ctx, t)
	case wasAvailable && res.SoldOut:
		logger.Info("target sold out")
		s.publish(event.NewTargetSoldOutEvent(t.ID, t.Name))
	}

	return res, true
}

// trigger hands the target to the orchestrator on its own task so probing of
// other targets is never blocked by a purchase.
func (s *Scheduler) trigger(ctx context.Context, t *target.Target) {
	if s.orchestrator == nil || !s.autoPurchase {
		return
	}

	s.wg.Go(func() {
		res, err := s.orchestrator.Acquire(ctx, t)
		if err != nil {
			// ErrAttemptInProgress and exhausted retries are already
			// logged and reported by the orchestrator.
			return
		}
		if res.Succeeded() && s.disableOnSuccess {
			if err := s.registry.SetTracking(t.ID, false); err != nil {
				s.logger.Error("failed to disable tracking after purchase", "target_id", t.ID, "error", err)
			}
		}
	})
}

// nextDelay computes the probe cadence floor for a target. Inside the
// acceleration window before the predicted on-sale time the accelerated
// interval applies; a predicted time already in the past counts as inside
// the window, since the sale could open any moment.
func (s *Scheduler) nextDelay(t *target.Target, now time.Time) time.Duration {
	if t.PredictedOnSale == nil {
		return s.base
	}
	if until := t.PredictedOnSale.Sub(now); until > s.window {
		return s.base
	}
	return s.accelerated
}

func (s *Scheduler) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
