package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seatwatch/seatwatch/internal/browser"
	"github.com/seatwatch/seatwatch/internal/clock"
	"github.com/seatwatch/seatwatch/internal/probe"
	"github.com/seatwatch/seatwatch/internal/scheduler"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every enabled target once and report availability",
	Long: `Run a single availability pass over all enabled targets, persist the
results, and print how many are currently available. No purchase is
attempted.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	enabled := registry.Enabled()
	if len(enabled) == 0 {
		fmt.Println("No enabled targets.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.NewSystem()
	driver := browser.NewChromeDriver(cfg.Browser, nil, nil)
	prober := probe.New(driver, clk, cfg.Monitor.ProbeTimeout(), nil)
	sched := scheduler.New(registry, prober, nil, nil, clk, cfg, nil)

	count, err := sched.Run(ctx, scheduler.ModeSinglePass)
	if err != nil {
		return err
	}

	fmt.Printf("Checked %d target(s): %d available\n", len(enabled), count)
	return nil
}
