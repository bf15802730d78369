package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default monitor config
	if cfg.Monitor.BaseIntervalSeconds != 60 {
		t.Errorf("Monitor.BaseIntervalSeconds = %d, want 60", cfg.Monitor.BaseIntervalSeconds)
	}
	if cfg.Monitor.AcceleratedIntervalSeconds != 5 {
		t.Errorf("Monitor.AcceleratedIntervalSeconds = %d, want 5", cfg.Monitor.AcceleratedIntervalSeconds)
	}
	if cfg.Monitor.AcceleratedWindowMinutes != 30 {
		t.Errorf("Monitor.AcceleratedWindowMinutes = %d, want 30", cfg.Monitor.AcceleratedWindowMinutes)
	}

	// Verify default purchase config
	if !cfg.Purchase.AutoPurchase {
		t.Error("Purchase.AutoPurchase should be true by default")
	}
	if cfg.Purchase.MaxRetries != 3 {
		t.Errorf("Purchase.MaxRetries = %d, want 3", cfg.Purchase.MaxRetries)
	}
	if cfg.Purchase.BaseRetryDelaySeconds != 5 {
		t.Errorf("Purchase.BaseRetryDelaySeconds = %d, want 5", cfg.Purchase.BaseRetryDelaySeconds)
	}
	if !cfg.Purchase.DisableOnSuccess {
		t.Error("Purchase.DisableOnSuccess should be true by default")
	}

	// Verify default browser config
	if !cfg.Browser.Headless {
		t.Error("Browser.Headless should be true by default")
	}

	// Verify default logging config
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	// Defaults must pass their own validation
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("Default() config failed validation: %v", ValidationErrors(errs))
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()

	if got := cfg.Monitor.BaseInterval(); got != 60*time.Second {
		t.Errorf("BaseInterval() = %v, want 60s", got)
	}
	if got := cfg.Monitor.AcceleratedInterval(); got != 5*time.Second {
		t.Errorf("AcceleratedInterval() = %v, want 5s", got)
	}
	if got := cfg.Monitor.AcceleratedWindow(); got != 30*time.Minute {
		t.Errorf("AcceleratedWindow() = %v, want 30m", got)
	}
	if got := cfg.Purchase.BaseRetryDelay(); got != 5*time.Second {
		t.Errorf("BaseRetryDelay() = %v, want 5s", got)
	}
	if got := cfg.Purchase.StageTimeout(); got != 60*time.Second {
		t.Errorf("StageTimeout() = %v, want 60s", got)
	}
}

func TestResolvePaths(t *testing.T) {
	p := PathsConfig{DataDir: "/var/lib/seatwatch"}

	if got := p.ResolveTargetsFile(); got != filepath.Join("/var/lib/seatwatch", "targets.json") {
		t.Errorf("ResolveTargetsFile() = %q", got)
	}
	if got := p.ResolveArtifactsDir(); got != filepath.Join("/var/lib/seatwatch", "artifacts") {
		t.Errorf("ResolveArtifactsDir() = %q", got)
	}
	if got := p.ResolveBookingsDir(); got != filepath.Join("/var/lib/seatwatch", "bookings") {
		t.Errorf("ResolveBookingsDir() = %q", got)
	}

	// Explicit overrides win
	p.TargetsFile = "/tmp/custom.json"
	if got := p.ResolveTargetsFile(); got != "/tmp/custom.json" {
		t.Errorf("ResolveTargetsFile() with override = %q", got)
	}
}

func TestResolveDataDirExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	p := PathsConfig{DataDir: "~/.seatwatch"}

	if got := p.ResolveDataDir(); got != "/home/tester/.seatwatch" {
		t.Errorf("ResolveDataDir() = %q, want /home/tester/.seatwatch", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "zero base interval",
			mutate: func(c *Config) { c.Monitor.BaseIntervalSeconds = 0 },
			field:  "monitor.base_interval_seconds",
		},
		{
			name:   "accelerated slower than base",
			mutate: func(c *Config) { c.Monitor.AcceleratedIntervalSeconds = 120 },
			field:  "monitor.accelerated_interval_seconds",
		},
		{
			name:   "negative window",
			mutate: func(c *Config) { c.Monitor.AcceleratedWindowMinutes = -1 },
			field:  "monitor.accelerated_window_minutes",
		},
		{
			name:   "zero max retries",
			mutate: func(c *Config) { c.Purchase.MaxRetries = 0 },
			field:  "purchase.max_retries",
		},
		{
			name:   "negative retry delay",
			mutate: func(c *Config) { c.Purchase.BaseRetryDelaySeconds = -5 },
			field:  "purchase.base_retry_delay_seconds",
		},
		{
			name:   "bad webhook URL",
			mutate: func(c *Config) { c.Notify.WebhookURL = "not a url" },
			field:  "notify.webhook_url",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
			field:  "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("Validate() found no errors")
			}

			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors %v do not mention field %s", errs, tt.field)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Monitor.BaseIntervalSeconds = 0
	cfg.Purchase.MaxRetries = 0
	cfg.Logging.Level = "bogus"

	errs := cfg.Validate()
	if len(errs) < 3 {
		t.Errorf("Validate() returned %d errors, want at least 3: %v", len(errs), ValidationErrors(errs))
	}
}

func TestValidationErrorsFormatting(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a.b", Value: 0, Message: "must be positive"},
		{Field: "c.d", Value: "x", Message: "unknown value"},
	}

	msg := errs.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	for _, want := range []string{"a.b", "c.d", "2 validation errors"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}

	single := ValidationErrors{errs[0]}
	if single.Error() != errs[0].Error() {
		t.Errorf("single-error formatting should match the error itself")
	}

	var empty ValidationErrors
	if empty.Error() != "" {
		t.Error("empty ValidationErrors should format as empty string")
	}
}
