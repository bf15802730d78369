// Package target defines the watched-opportunity record and the durable
// registry that owns it. The registry is the single writer of persisted
// target state: every mutation rewrites the full JSON snapshot atomically
// (write-temp-then-rename), so a crash mid-write never corrupts the file.
package target

import "time"

// Target is one watched opportunity: a ticketing page that will (or may)
// have purchasable inventory at some point.
type Target struct {
	// ID is the stable unique identifier, usually the event code from the
	// page URL.
	ID string `json:"id"`
	// Name is the human-readable event name.
	Name string `json:"name"`
	// URL is the opaque locator the page driver navigates to.
	URL string `json:"url"`
	// Venue and City describe where the event happens.
	Venue string `json:"venue,omitempty"`
	City  string `json:"city,omitempty"`
	// EventDate is the date of the event itself (YYYY-MM-DD), informational.
	EventDate string `json:"event_date,omitempty"`
	// PredictedOnSale, when set, is when tickets are expected to go on
	// sale. The scheduler accelerates polling as this time approaches.
	PredictedOnSale *time.Time `json:"predicted_on_sale,omitempty"`
	// Quantity is how many tickets to acquire.
	Quantity int `json:"quantity"`
	// PriceCeiling caps the per-ticket price; 0 means no limit.
	PriceCeiling float64 `json:"price_ceiling,omitempty"`
	// PreferredSections lists seating sections in preference order.
	PreferredSections []string `json:"preferred_sections,omitempty"`
	// TrackingEnabled controls whether the scheduler watches this target.
	TrackingEnabled bool `json:"tracking_enabled"`

	// Status is the probe-derived state. It is mutated only through
	// Registry.UpdateStatus, replaced as a unit per check.
	Status Status `json:"status"`
}

// Status is the mutable, probe-derived half of a target record.
type Status struct {
	// Available reports purchasable inventory at the last check.
	Available bool `json:"available"`
	// SoldOut reports an explicit sold-out marker at the last check.
	SoldOut bool `json:"sold_out"`
	// LastChecked is when the last probe (success or failure) finished.
	LastChecked *time.Time `json:"last_checked,omitempty"`
	// LastAvailable is when inventory was last seen.
	LastAvailable *time.Time `json:"last_available,omitempty"`
	// CheckCount is the total number of probes, failures included.
	CheckCount int `json:"check_count"`
	// ConsecutiveErrors counts probe failures since the last success.
	ConsecutiveErrors int `json:"consecutive_errors"`
	// LastError is the most recent probe or acquisition failure, empty
	// once things recover.
	LastError string `json:"last_error,omitempty"`
}

// MergeCheck folds one successful probe result into the status. A success
// resets the error streak whatever it observed.
func (s *Status) MergeCheck(available, soldOut bool, at time.Time) {
	s.Available = available
	s.SoldOut = soldOut
	s.LastChecked = &at
	s.CheckCount++
	s.ConsecutiveErrors = 0
	s.LastError = ""
	if available {
		s.LastAvailable = &at
	}
}

// MergeError folds one failed probe into the status. Availability is left
// as last observed: an unreadable page says nothing about inventory.
func (s *Status) MergeError(reason string, at time.Time) {
	s.LastChecked = &at
	s.CheckCount++
	s.ConsecutiveErrors++
	s.LastError = reason
}

// clone returns a copy with no shared pointers.
func (s Status) clone() Status {
	c := s
	if s.LastChecked != nil {
		ts := *s.LastChecked
		c.LastChecked = &ts
	}
	if s.LastAvailable != nil {
		ts := *s.LastAvailable
		c.LastAvailable = &ts
	}
	return c
}

// Clone returns a deep copy of the target. The registry hands out clones so
// callers can never mutate persisted state behind its back.
func (t *Target) Clone() *Target {
	c := *t
	if t.PredictedOnSale != nil {
		ts := *t.PredictedOnSale
		c.PredictedOnSale = &ts
	}
	if t.PreferredSections != nil {
		c.PreferredSections = append([]string(nil), t.PreferredSections...)
	}
	c.Status = t.Status.clone()
	return &c
}
