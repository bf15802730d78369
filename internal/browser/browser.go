// Package browser defines the page-driver contract the prober and the
// acquisition pipeline work against, plus the chromedp-backed implementation
// that drives a real Chrome instance. Everything site-specific — selector
// heuristics, challenge frames, confirmation markup — lives behind the
// Session interface so the rest of the system stays testable with fakes.
package browser

import (
	"context"
	"time"

	"github.com/seatwatch/seatwatch/internal/target"
)

// Snapshot is what one availability probe observed on the event page.
type Snapshot struct {
	// Available reports purchasable inventory: a booking entry point was
	// visible and no sold-out marker was shown.
	Available bool
	// SoldOut reports that the page explicitly showed a sold-out marker.
	SoldOut bool
}

// Confirmation is the purchase outcome extracted from the confirmation page.
// A purchase without a confirmation ID did not happen, whatever the payment
// step claimed.
type Confirmation struct {
	ID     string  `json:"confirmation_id"`
	Amount float64 `json:"total_amount"`
	Venue  string  `json:"venue,omitempty"`
	Date   string  `json:"date,omitempty"`
}

// ArtifactRef points at a diagnostic artifact captured during an attempt.
type ArtifactRef struct {
	Label      string    `json:"label"`
	Path       string    `json:"path"`
	CapturedAt time.Time `json:"captured_at"`
}

// Driver opens page sessions against a target's URL.
type Driver interface {
	// Open navigates a fresh session to the target's page. The caller owns
	// the returned session and must Close it; sessions are never shared
	// across concurrent tasks.
	Open(ctx context.Context, t *target.Target) (Session, error)
}

// Session is one live page against a single target. Methods map onto the
// acquisition stages; each takes a context that bounds the interaction.
type Session interface {
	// Probe checks the page for availability without touching any state.
	Probe(ctx context.Context) (Snapshot, error)

	// Authenticate ensures the session is signed in. Returns false when the
	// site demands credentials this session cannot supply.
	Authenticate(ctx context.Context) (bool, error)

	// NavigateToSelection moves from the event page into ticket selection.
	NavigateToSelection(ctx context.Context) error

	// DetectChallenge reports whether an interstitial challenge (CAPTCHA)
	// is blocking the page.
	DetectChallenge(ctx context.Context) (bool, error)

	// SolveChallenge attempts to clear a detected challenge. Returns false
	// when the challenge could not be solved.
	SolveChallenge(ctx context.Context) (bool, error)

	// SelectInventory picks qty tickets, preferring the target's sections.
	// Returns false when the desired inventory could not be selected.
	SelectInventory(ctx context.Context, qty int) (bool, error)

	// Pay drives the payment step. Returns false when payment was declined
	// or could not be submitted.
	Pay(ctx context.Context) (bool, error)

	// ExtractConfirmation reads the confirmation page. Returns nil (no
	// error) when no confirmation is present.
	ExtractConfirmation(ctx context.Context) (*Confirmation, error)

	// Capture stores a diagnostic artifact of the current page state.
	Capture(ctx context.Context, label string) (ArtifactRef, error)

	// Close releases the session and its browser resources.
	Close() error
}
