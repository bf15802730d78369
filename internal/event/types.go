// Package event defines event types for decoupling seatwatch components.
// These events enable communication between the scheduler, the acquisition
// orchestrator, and notification sinks without direct dependencies.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "target.available", "attempt.failed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Target Events
// -----------------------------------------------------------------------------

// TargetAvailableEvent is emitted when a probe detects an
// unavailable-to-available transition for a target.
type TargetAvailableEvent struct {
	baseEvent
	TargetID string // Unique identifier for the target
	Name     string // Human-readable target name
	URL      string // Page the availability was detected on
}

// NewTargetAvailableEvent creates a TargetAvailableEvent.
func NewTargetAvailableEvent(targetID, name, url string) TargetAvailableEvent {
	return TargetAvailableEvent{
		baseEvent: newBaseEvent("target.available"),
		TargetID:  targetID,
		Name:      name,
		URL:       url,
	}
}

// TargetSoldOutEvent is emitted when a probe finds a previously available
// target sold out, ending the availability episode.
type TargetSoldOutEvent struct {
	baseEvent
	TargetID string
	Name     string
}

// NewTargetSoldOutEvent creates a TargetSoldOutEvent.
func NewTargetSoldOutEvent(targetID, name string) TargetSoldOutEvent {
	return TargetSoldOutEvent{
		baseEvent: newBaseEvent("target.sold_out"),
		TargetID:  targetID,
		Name:      name,
	}
}

// ProbeFailedEvent is emitted when an availability check fails.
// Probe failures never stop the probe cycle.
type ProbeFailedEvent struct {
	baseEvent
	TargetID          string
	Reason            string
	ConsecutiveErrors int // Error count after this failure
}

// NewProbeFailedEvent creates a ProbeFailedEvent.
func NewProbeFailedEvent(targetID, reason string, consecutiveErrors int) ProbeFailedEvent {
	return ProbeFailedEvent{
		baseEvent:         newBaseEvent("probe.failed"),
		TargetID:          targetID,
		Reason:            reason,
		ConsecutiveErrors: consecutiveErrors,
	}
}

// RegistryReloadedEvent is emitted when the target registry reloads its
// snapshot after an external change to the targets file.
type RegistryReloadedEvent struct {
	baseEvent
	TargetCount int
}

// NewRegistryReloadedEvent creates a RegistryReloadedEvent.
func NewRegistryReloadedEvent(targetCount int) RegistryReloadedEvent {
	return RegistryReloadedEvent{
		baseEvent:   newBaseEvent("registry.reloaded"),
		TargetCount: targetCount,
	}
}

// -----------------------------------------------------------------------------
// Acquisition Events
// -----------------------------------------------------------------------------

// AttemptStartedEvent is emitted when the orchestrator begins a pipeline attempt.
type AttemptStartedEvent struct {
	baseEvent
	TargetID    string
	Name        string
	Attempt     int // 1-based attempt number
	MaxAttempts int
}

// NewAttemptStartedEvent creates an AttemptStartedEvent.
func NewAttemptStartedEvent(targetID, name string, attempt, maxAttempts int) AttemptStartedEvent {
	return AttemptStartedEvent{
		baseEvent:   newBaseEvent("attempt.started"),
		TargetID:    targetID,
		Name:        name,
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
	}
}

// AcquisitionSucceededEvent is emitted once per availability episode when the
// pipeline reaches a verified confirmation.
type AcquisitionSucceededEvent struct {
	baseEvent
	TargetID       string
	Name           string
	ConfirmationID string
	Amount         float64
	Quantity       int
}

// NewAcquisitionSucceededEvent creates an AcquisitionSucceededEvent.
func NewAcquisitionSucceededEvent(targetID, name, confirmationID string, amount float64, quantity int) AcquisitionSucceededEvent {
	return AcquisitionSucceededEvent{
		baseEvent:      newBaseEvent("acquisition.succeeded"),
		TargetID:       targetID,
		Name:           name,
		ConfirmationID: confirmationID,
		Amount:         amount,
		Quantity:       quantity,
	}
}

// AcquisitionFailedEvent is emitted when the pipeline exhausts its retries.
// Artifacts carries the full diagnostic trail for post-mortem inspection.
type AcquisitionFailedEvent struct {
	baseEvent
	TargetID  string
	Name      string
	Reason    string
	Attempts  int
	Artifacts []string // Ordered capture refs, one per stage transition
}

// NewAcquisitionFailedEvent creates an AcquisitionFailedEvent.
func NewAcquisitionFailedEvent(targetID, name, reason string, attempts int, artifacts []string) AcquisitionFailedEvent {
	return AcquisitionFailedEvent{
		baseEvent: newBaseEvent("acquisition.failed"),
		TargetID:  targetID,
		Name:      name,
		Reason:    reason,
		Attempts:  attempts,
		Artifacts: artifacts,
	}
}
