package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seatwatch/seatwatch/internal/acquire"
	"github.com/seatwatch/seatwatch/internal/browser"
	"github.com/seatwatch/seatwatch/internal/clock"
	"github.com/seatwatch/seatwatch/internal/event"
	"github.com/seatwatch/seatwatch/internal/logging"
	"github.com/seatwatch/seatwatch/internal/notify"
	"github.com/seatwatch/seatwatch/internal/probe"
	"github.com/seatwatch/seatwatch/internal/scheduler"
	"github.com/seatwatch/seatwatch/internal/target"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor all enabled targets continuously",
	Long: `Watch every enabled target, accelerating polling inside each target's
on-sale window. When inventory appears the purchase pipeline runs
automatically (unless purchase.auto_purchase is off). Stops cleanly on
Ctrl-C; in-flight probes and attempts run to their next checkpoint first.

Edits to the targets file from another terminal (seatwatch add/remove/
enable/disable) are picked up without a restart.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var logger *logging.Logger
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(cfg.Paths.ResolveDataDir(), cfg.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		defer logger.Close()
	} else {
		logger = logging.NopLogger()
	}

	registry, err := target.NewRegistry(cfg.Paths.ResolveTargetsFile(), logger)
	if err != nil {
		return err
	}
	if len(registry.Enabled()) == 0 {
		return fmt.Errorf("no enabled targets to watch; add one with 'seatwatch add <url>'")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Notifications hang off the event bus; the scheduler and orchestrator
	// publish, sinks consume.
	bus := event.NewBus()
	sinks := []notify.Notifier{notify.NewLogSink(logger)}
	if cfg.Notify.Enabled && cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.Notify.WebhookURL, cfg.Notify.WebhookTimeout(), logger))
	}
	fan := notify.NewFanOut(logger, sinks...)
	notify.BindBus(bus, fan)
	defer fan.Wait()

	clk := clock.NewSystem()
	artifacts := browser.NewArtifactStore(cfg.Paths.ResolveArtifactsDir())
	driver := browser.NewChromeDriver(cfg.Browser, artifacts, logger)
	prober := probe.New(driver, clk, cfg.Monitor.ProbeTimeout(), logger)
	bookings := acquire.NewBookingStore(cfg.Paths.ResolveBookingsDir())
	orchestrator := acquire.New(driver, registry, bookings, bus, clk, cfg.Purchase, logger)
	sched := scheduler.New(registry, prober, orchestrator, bus, clk, cfg, logger)

	// Pick up external edits to the targets file while watching.
	go func() {
		err := registry.Watch(ctx, func(count int) {
			bus.Publish(event.NewRegistryReloadedEvent(count))
			sched.Resync(ctx)
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("snapshot watcher stopped", "error", err)
		}
	}()

	fmt.Printf("Watching %d target(s). Ctrl-C to stop.\n", len(registry.Enabled()))
	logger.Info("monitoring started", "targets", len(registry.Enabled()))

	_, err = sched.Run(ctx, scheduler.ModeContinuous)
	if err != nil && ctx.Err() != nil {
		// Normal shutdown path.
		fmt.Println("Stopped.")
		return nil
	}
	return err
}
