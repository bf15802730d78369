package notify

import (
	"github.com/seatwatch/seatwatch/internal/event"
)

// BindBus subscribes the notifier to the acquisition milestones on the bus.
// The scheduler and orchestrator publish events; they never hold sink
// references. Returns the subscription IDs for teardown.
func BindBus(bus *event.Bus, n Notifier) []string {
	return []string{
		bus.Subscribe("target.available", func(e event.Event) {
			if ev, ok := e.(event.TargetAvailableEvent); ok {
				n.Available(AvailableNote{TargetID: ev.TargetID, Name: ev.Name, URL: ev.URL})
			}
		}),
		bus.Subscribe("attempt.started", func(e event.Event) {
			if ev, ok := e.(event.AttemptStartedEvent); ok {
				n.AttemptStarted(AttemptNote{
					TargetID:    ev.TargetID,
					Name:        ev.Name,
					Attempt:     ev.Attempt,
					MaxAttempts: ev.MaxAttempts,
				})
			}
		}),
		bus.Subscribe("acquisition.succeeded", func(e event.Event) {
			if ev, ok := e.(event.AcquisitionSucceededEvent); ok {
				n.Succeeded(SuccessNote{
					TargetID:       ev.TargetID,
					Name:           ev.Name,
					ConfirmationID: ev.ConfirmationID,
					Amount:         ev.Amount,
					Quantity:       ev.Quantity,
				})
			}
		}),
		bus.Subscribe("acquisition.failed", func(e event.Event) {
			if ev, ok := e.(event.AcquisitionFailedEvent); ok {
				n.Failed(FailureNote{
					TargetID:  ev.TargetID,
					Name:      ev.Name,
					Reason:    ev.Reason,
					Attempts:  ev.Attempts,
					Artifacts: ev.Artifacts,
				})
			}
		}),
	}
}
