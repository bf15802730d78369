package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "monitor.base_interval_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateMonitor()...)
	errors = append(errors, c.validatePurchase()...)
	errors = append(errors, c.validateBrowser()...)
	errors = append(errors, c.validateNotify()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateMonitor() []ValidationError {
	var errors []ValidationError

	if c.Monitor.BaseIntervalSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "monitor.base_interval_seconds",
			Value:   c.Monitor.BaseIntervalSeconds,
			Message: "must be at least 1 second",
		})
	}
	if c.Monitor.AcceleratedIntervalSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "monitor.accelerated_interval_seconds",
			Value:   c.Monitor.AcceleratedIntervalSeconds,
			Message: "must be at least 1 second",
		})
	}
	if c.Monitor.AcceleratedIntervalSeconds > c.Monitor.BaseIntervalSeconds {
		errors = append(errors, ValidationError{
			Field:   "monitor.accelerated_interval_seconds",
			Value:   c.Monitor.AcceleratedIntervalSeconds,
			Message: "must not exceed the base interval",
		})
	}
	if c.Monitor.AcceleratedWindowMinutes < 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.accelerated_window_minutes",
			Value:   c.Monitor.AcceleratedWindowMinutes,
			Message: "must not be negative",
		})
	}
	if c.Monitor.ProbeTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "monitor.probe_timeout_seconds",
			Value:   c.Monitor.ProbeTimeoutSeconds,
			Message: "must be at least 1 second",
		})
	}

	return errors
}

func (c *Config) validatePurchase() []ValidationError {
	var errors []ValidationError

	if c.Purchase.MaxRetries < 1 {
		errors = append(errors, ValidationError{
			Field:   "purchase.max_retries",
			Value:   c.Purchase.MaxRetries,
			Message: "must be at least 1",
		})
	}
	if c.Purchase.BaseRetryDelaySeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "purchase.base_retry_delay_seconds",
			Value:   c.Purchase.BaseRetryDelaySeconds,
			Message: "must not be negative",
		})
	}
	if c.Purchase.StageTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "purchase.stage_timeout_seconds",
			Value:   c.Purchase.StageTimeoutSeconds,
			Message: "must be at least 1 second",
		})
	}

	return errors
}

func (c *Config) validateBrowser() []ValidationError {
	var errors []ValidationError

	if c.Browser.NavigationTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "browser.navigation_timeout_seconds",
			Value:   c.Browser.NavigationTimeoutSeconds,
			Message: "must be at least 1 second",
		})
	}

	return errors
}

func (c *Config) validateNotify() []ValidationError {
	var errors []ValidationError

	if c.Notify.WebhookURL != "" {
		u, err := url.Parse(c.Notify.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, ValidationError{
				Field:   "notify.webhook_url",
				Value:   c.Notify.WebhookURL,
				Message: "must be a valid http(s) URL",
			})
		}
	}
	if c.Notify.WebhookTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "notify.webhook_timeout_seconds",
			Value:   c.Notify.WebhookTimeoutSeconds,
			Message: "must be at least 1 second",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must not be negative",
		})
	}
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must not be negative",
		})
	}

	return errors
}
