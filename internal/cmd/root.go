// Package cmd wires the seatwatch CLI: registry management commands plus the
// long-running watch loop. Commands stay thin; the work happens in the
// scheduler, orchestrator, and registry packages.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seatwatch/seatwatch/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "seatwatch",
	Short: "Ticket availability monitor and acquisition pipeline",
	Long: `Seatwatch watches ticketing pages for events whose tickets are not on
sale yet, accelerates polling as the predicted on-sale time approaches, and
drives an automated purchase pipeline the moment inventory appears.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/seatwatch/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/seatwatch")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SEATWATCH")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SEATWATCH_MONITOR_BASE_INTERVAL_SECONDS for monitor.base_interval_seconds
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
