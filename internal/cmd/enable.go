package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Resume tracking a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTracking(args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Pause tracking a target without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTracking(args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

func setTracking(id string, enabled bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := openRegistry(cfg)
	if err != nil {
		return err
	}
	if err := registry.SetTracking(id, enabled); err != nil {
		return fmt.Errorf("failed to update target: %w", err)
	}

	if enabled {
		fmt.Printf("Tracking enabled for %s\n", id)
	} else {
		fmt.Printf("Tracking disabled for %s\n", id)
	}
	return nil
}
