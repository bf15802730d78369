package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete seatwatch configuration
type Config struct {
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Purchase PurchaseConfig `mapstructure:"purchase"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Paths    PathsConfig    `mapstructure:"paths"`
}

// MonitorConfig controls the adaptive probe scheduler
type MonitorConfig struct {
	// BaseIntervalSeconds is the normal delay between probes of one target
	BaseIntervalSeconds int `mapstructure:"base_interval_seconds"`
	// AcceleratedIntervalSeconds is the probe delay used when a target's
	// predicted on-sale time falls inside the accelerated window
	AcceleratedIntervalSeconds int `mapstructure:"accelerated_interval_seconds"`
	// AcceleratedWindowMinutes is how long before the predicted on-sale time
	// the scheduler switches to the accelerated interval
	AcceleratedWindowMinutes int `mapstructure:"accelerated_window_minutes"`
	// ProbeTimeoutSeconds bounds a single availability check
	ProbeTimeoutSeconds int `mapstructure:"probe_timeout_seconds"`
}

// PurchaseConfig controls the acquisition pipeline
type PurchaseConfig struct {
	// AutoPurchase starts the acquisition pipeline automatically when a
	// target becomes available. When false, availability is only notified.
	AutoPurchase bool `mapstructure:"auto_purchase"`
	// MaxRetries is the number of full pipeline attempts per availability episode
	MaxRetries int `mapstructure:"max_retries"`
	// BaseRetryDelaySeconds is multiplied by the attempt number for the delay
	// between pipeline attempts (linear backoff — inventory windows are short)
	BaseRetryDelaySeconds int `mapstructure:"base_retry_delay_seconds"`
	// StageTimeoutSeconds bounds each collaborator call inside the pipeline.
	// A timeout is treated identically to a reported failure.
	StageTimeoutSeconds int `mapstructure:"stage_timeout_seconds"`
	// DisableOnSuccess turns off tracking for a target after a verified purchase
	DisableOnSuccess bool `mapstructure:"disable_on_success"`
}

// BrowserConfig controls the chromedp-backed page driver
type BrowserConfig struct {
	// Headless runs the browser without a visible window
	Headless bool `mapstructure:"headless"`
	// UserAgent overrides the browser user agent; empty uses the browser default
	UserAgent string `mapstructure:"user_agent"`
	// NavigationTimeoutSeconds bounds page navigations
	NavigationTimeoutSeconds int `mapstructure:"navigation_timeout_seconds"`
	// ExecPath points at a specific Chrome/Chromium binary; empty lets
	// chromedp find one
	ExecPath string `mapstructure:"exec_path"`
	// UserDataDir is a persistent browser profile directory. A profile that
	// is already signed in to the ticketing site skips the login prompt.
	UserDataDir string `mapstructure:"user_data_dir"`
}

// NotifyConfig controls outbound notifications
type NotifyConfig struct {
	// Enabled turns notification delivery on or off globally
	Enabled bool `mapstructure:"enabled"`
	// WebhookURL receives JSON notifications when set
	WebhookURL string `mapstructure:"webhook_url"`
	// WebhookTimeoutSeconds bounds a single webhook delivery.
	// Delivery is fire-and-forget; a timeout is only logged.
	WebhookTimeoutSeconds int `mapstructure:"webhook_timeout_seconds"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether file logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// PathsConfig controls where seatwatch stores data
type PathsConfig struct {
	// DataDir is the base directory for all seatwatch state.
	// Defaults to ~/.seatwatch. Supports ~ for home directory expansion.
	DataDir string `mapstructure:"data_dir"`
	// TargetsFile overrides the snapshot location; empty uses
	// {data_dir}/targets.json
	TargetsFile string `mapstructure:"targets_file"`
	// ArtifactsDir overrides where stage captures are written; empty uses
	// {data_dir}/artifacts
	ArtifactsDir string `mapstructure:"artifacts_dir"`
	// BookingsDir overrides where purchase records are written; empty uses
	// {data_dir}/bookings
	BookingsDir string `mapstructure:"bookings_dir"`
}

// BaseInterval returns the base probe interval as a time.Duration
func (c *MonitorConfig) BaseInterval() time.Duration {
	return time.Duration(c.BaseIntervalSeconds) * time.Second
}

// AcceleratedInterval returns the accelerated probe interval as a time.Duration
func (c *MonitorConfig) AcceleratedInterval() time.Duration {
	return time.Duration(c.AcceleratedIntervalSeconds) * time.Second
}

// AcceleratedWindow returns the accelerated window as a time.Duration
func (c *MonitorConfig) AcceleratedWindow() time.Duration {
	return time.Duration(c.AcceleratedWindowMinutes) * time.Minute
}

// ProbeTimeout returns the probe timeout as a time.Duration
func (c *MonitorConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// BaseRetryDelay returns the base retry delay as a time.Duration
func (c *PurchaseConfig) BaseRetryDelay() time.Duration {
	return time.Duration(c.BaseRetryDelaySeconds) * time.Second
}

// StageTimeout returns the per-stage timeout as a time.Duration
func (c *PurchaseConfig) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSeconds) * time.Second
}

// NavigationTimeout returns the navigation timeout as a time.Duration
func (c *BrowserConfig) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSeconds) * time.Second
}

// WebhookTimeout returns the webhook delivery timeout as a time.Duration
func (c *NotifyConfig) WebhookTimeout() time.Duration {
	return time.Duration(c.WebhookTimeoutSeconds) * time.Second
}

// ResolveDataDir returns the resolved data directory path.
// If DataDir starts with ~, it expands to the user's home directory.
func (p *PathsConfig) ResolveDataDir() string {
	path := p.DataDir
	if path == "" {
		path = "~/.seatwatch"
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return path
}

// ResolveTargetsFile returns the resolved snapshot path.
func (p *PathsConfig) ResolveTargetsFile() string {
	if p.TargetsFile != "" {
		return p.TargetsFile
	}
	return filepath.Join(p.ResolveDataDir(), "targets.json")
}

// ResolveArtifactsDir returns the resolved artifacts directory.
func (p *PathsConfig) ResolveArtifactsDir() string {
	if p.ArtifactsDir != "" {
		return p.ArtifactsDir
	}
	return filepath.Join(p.ResolveDataDir(), "artifacts")
}

// ResolveBookingsDir returns the resolved bookings directory.
func (p *PathsConfig) ResolveBookingsDir() string {
	if p.BookingsDir != "" {
		return p.BookingsDir
	}
	return filepath.Join(p.ResolveDataDir(), "bookings")
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			BaseIntervalSeconds:        60,
			AcceleratedIntervalSeconds: 5,
			AcceleratedWindowMinutes:   30,
			ProbeTimeoutSeconds:        30,
		},
		Purchase: PurchaseConfig{
			AutoPurchase:          true,
			MaxRetries:            3,
			BaseRetryDelaySeconds: 5,
			StageTimeoutSeconds:   60,
			DisableOnSuccess:      true,
		},
		Browser: BrowserConfig{
			Headless:                 true,
			UserAgent:                "",
			NavigationTimeoutSeconds: 30,
			ExecPath:                 "",
		},
		Notify: NotifyConfig{
			Enabled:               true,
			WebhookURL:            "",
			WebhookTimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Paths: PathsConfig{
			DataDir:      "~/.seatwatch",
			TargetsFile:  "",
			ArtifactsDir: "",
			BookingsDir:  "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Monitor defaults
	viper.SetDefault("monitor.base_interval_seconds", defaults.Monitor.BaseIntervalSeconds)
	viper.SetDefault("monitor.accelerated_interval_seconds", defaults.Monitor.AcceleratedIntervalSeconds)
	viper.SetDefault("monitor.accelerated_window_minutes", defaults.Monitor.AcceleratedWindowMinutes)
	viper.SetDefault("monitor.probe_timeout_seconds", defaults.Monitor.ProbeTimeoutSeconds)

	// Purchase defaults
	viper.SetDefault("purchase.auto_purchase", defaults.Purchase.AutoPurchase)
	viper.SetDefault("purchase.max_retries", defaults.Purchase.MaxRetries)
	viper.SetDefault("purchase.base_retry_delay_seconds", defaults.Purchase.BaseRetryDelaySeconds)
	viper.SetDefault("purchase.stage_timeout_seconds", defaults.Purchase.StageTimeoutSeconds)
	viper.SetDefault("purchase.disable_on_success", defaults.Purchase.DisableOnSuccess)

	// Browser defaults
	viper.SetDefault("browser.headless", defaults.Browser.Headless)
	viper.SetDefault("browser.user_agent", defaults.Browser.UserAgent)
	viper.SetDefault("browser.navigation_timeout_seconds", defaults.Browser.NavigationTimeoutSeconds)
	viper.SetDefault("browser.exec_path", defaults.Browser.ExecPath)
	viper.SetDefault("browser.user_data_dir", defaults.Browser.UserDataDir)

	// Notify defaults
	viper.SetDefault("notify.enabled", defaults.Notify.Enabled)
	viper.SetDefault("notify.webhook_url", defaults.Notify.WebhookURL)
	viper.SetDefault("notify.webhook_timeout_seconds", defaults.Notify.WebhookTimeoutSeconds)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Paths defaults
	viper.SetDefault("paths.data_dir", defaults.Paths.DataDir)
	viper.SetDefault("paths.targets_file", defaults.Paths.TargetsFile)
	viper.SetDefault("paths.artifacts_dir", defaults.Paths.ArtifactsDir)
	viper.SetDefault("paths.bookings_dir", defaults.Paths.BookingsDir)
}

// Load unmarshals the current viper state into a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the directory where the seatwatch config file lives.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "seatwatch")
}
