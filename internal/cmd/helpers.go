package cmd

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/seatwatch/seatwatch/internal/config"
	"github.com/seatwatch/seatwatch/internal/target"
)

// eventCodePattern matches ticketing-site event codes like ET00312876.
var eventCodePattern = regexp.MustCompile(`(?i)^et\d+$`)

// loadConfig reads and validates the effective configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// openRegistry loads the target snapshot for a short-lived command.
func openRegistry(cfg *config.Config) (*target.Registry, error) {
	return target.NewRegistry(cfg.Paths.ResolveTargetsFile(), nil)
}

// targetIDFromURL derives a stable target ID from the page URL: the event
// code path segment when present, otherwise the last non-empty segment.
func targetIDFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing target URL: %w", err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if eventCodePattern.MatchString(segments[i]) {
			return strings.ToUpper(segments[i]), nil
		}
	}
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i], nil
		}
	}
	return "", fmt.Errorf("cannot derive a target ID from %q, pass --id", raw)
}

// parseOnSale accepts the on-sale flag in RFC 3339 or a few friendlier local
// forms.
func parseOnSale(raw string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	} {
		if ts, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse on-sale time %q (want RFC 3339 or \"2006-01-02 15:04\")", raw)
}
