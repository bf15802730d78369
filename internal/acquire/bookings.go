package acquire

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seatwatch/seatwatch/internal/browser"
	"github.com/seatwatch/seatwatch/internal/errors"
	"github.com/seatwatch/seatwatch/internal/target"
)

// BookingRecord is the durable summary of one verified purchase.
type BookingRecord struct {
	TargetID       string    `json:"target_id"`
	Name           string    `json:"name"`
	ConfirmationID string    `json:"confirmation_id"`
	Amount         float64   `json:"total_amount"`
	Quantity       int       `json:"quantity"`
	Venue          string    `json:"venue,omitempty"`
	Date           string    `json:"date,omitempty"`
	PurchasedAt    time.Time `json:"purchased_at"`
}

// BookingStore writes one JSON record per verified purchase.
type BookingStore struct {
	dir string
}

// NewBookingStore creates a store rooted at dir.
func NewBookingStore(dir string) *BookingStore {
	return &BookingStore{dir: dir}
}

// Save persists the purchase record and returns its path.
func (s *BookingStore) Save(t *target.Target, conf *browser.Confirmation) (string, error) {
	rec := BookingRecord{
		TargetID:       t.ID,
		Name:           t.Name,
		ConfirmationID: conf.ID,
		Amount:         conf.Amount,
		Quantity:       t.Quantity,
		Venue:          conf.Venue,
		Date:           conf.Date,
		PurchasedAt:    time.Now(),
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", errors.NewPersistenceError("failed to encode booking record", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", errors.NewPersistenceError("failed to create bookings directory", err).WithPath(s.dir)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", t.ID, conf.ID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.NewPersistenceError("failed to write booking record", err).WithPath(path)
	}
	return path, nil
}

// Load reads a booking record back, for the CLI and tests.
func (s *BookingStore) Load(path string) (*BookingRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewPersistenceError("failed to read booking record", err).WithPath(path)
	}
	var rec BookingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.NewPersistenceError("failed to decode booking record", err).WithPath(path)
	}
	return &rec, nil
}
