// Package notify delivers outbound alerts for the milestones a user cares
// about: inventory appeared, an acquisition attempt started, and how it
// ended. Delivery is fire-and-forget; a slow or broken sink never holds up
// probing or the purchase pipeline.
package notify

// Notifier receives acquisition milestones. Implementations must return
// quickly or be wrapped in a FanOut, which dispatches asynchronously.
type Notifier interface {
	// Available signals that inventory appeared for a target.
	Available(n AvailableNote)
	// AttemptStarted signals the beginning of a pipeline attempt.
	AttemptStarted(n AttemptNote)
	// Succeeded signals a verified purchase.
	Succeeded(n SuccessNote)
	// Failed signals a terminally failed acquisition.
	Failed(n FailureNote)
}

// AvailableNote describes an availability transition.
type AvailableNote struct {
	TargetID string `json:"target_id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

// AttemptNote describes the start of a pipeline attempt.
type AttemptNote struct {
	TargetID    string `json:"target_id"`
	Name        string `json:"name"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}

// SuccessNote describes a verified purchase.
type SuccessNote struct {
	TargetID       string  `json:"target_id"`
	Name           string  `json:"name"`
	ConfirmationID string  `json:"confirmation_id"`
	Amount         float64 `json:"amount"`
	Quantity       int     `json:"quantity"`
}

// FailureNote describes an acquisition that exhausted its retries.
type FailureNote struct {
	TargetID  string   `json:"target_id"`
	Name      string   `json:"name"`
	Reason    string   `json:"reason"`
	Attempts  int      `json:"attempts"`
	Artifacts []string `json:"artifacts,omitempty"`
}
