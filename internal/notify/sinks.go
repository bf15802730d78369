package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/seatwatch/seatwatch/internal/logging"
)

// LogSink writes every notification to the structured log. Always on: even
// with no webhook configured, the log is the system of record.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a sink writing through the given logger.
func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Available(n AvailableNote) {
	s.logger.Info("tickets available", "target_id", n.TargetID, "name", n.Name, "url", n.URL)
}

func (s *LogSink) AttemptStarted(n AttemptNote) {
	s.logger.Info("acquisition attempt started",
		"target_id", n.TargetID, "name", n.Name,
		"attempt", n.Attempt, "max_attempts", n.MaxAttempts)
}

func (s *LogSink) Succeeded(n SuccessNote) {
	s.logger.Info("purchase confirmed",
		"target_id", n.TargetID, "name", n.Name,
		"confirmation_id", n.ConfirmationID, "amount", n.Amount, "quantity", n.Quantity)
}

func (s *LogSink) Failed(n FailureNote) {
	s.logger.Error("acquisition failed",
		"target_id", n.TargetID, "name", n.Name,
		"reason", n.Reason, "attempts", n.Attempts)
}

// WebhookSink POSTs each notification as JSON to a configured URL.
// Delivery failures are logged, never surfaced: a dead webhook must not
// affect monitoring.
type WebhookSink struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  *logging.Logger
}

// NewWebhookSink creates a sink posting to url. timeout bounds one delivery.
func NewWebhookSink(url string, timeout time.Duration, logger *logging.Logger) *WebhookSink {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &WebhookSink{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

func (s *WebhookSink) Available(n AvailableNote) {
	s.post("target.available", n)
}

func (s *WebhookSink) AttemptStarted(n AttemptNote) {
	s.post("attempt.started", n)
}

func (s *WebhookSink) Succeeded(n SuccessNote) {
	s.post("acquisition.succeeded", n)
}

func (s *WebhookSink) Failed(n FailureNote) {
	s.post("acquisition.failed", n)
}

// post delivers one notification envelope. Called from FanOut goroutines, so
// blocking here is acceptable.
func (s *WebhookSink) post(kind string, payload any) {
	body, err := json.Marshal(struct {
		Kind    string    `json:"kind"`
		SentAt  time.Time `json:"sent_at"`
		Payload any       `json:"payload"`
	}{Kind: kind, SentAt: time.Now(), Payload: payload})
	if err != nil {
		s.logger.Error("failed to encode webhook payload", "kind", kind, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to build webhook request", "kind", kind, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("webhook delivery failed", "kind", kind, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Warn("webhook delivery rejected", "kind", kind, "status", resp.StatusCode)
		return
	}
	s.logger.Debug("webhook delivered", "kind", kind, "status", resp.StatusCode)
}

// FanOut dispatches each notification to every sink on its own goroutine,
// with panic recovery. Wait drains in-flight deliveries on shutdown.
type FanOut struct {
	sinks  []Notifier
	logger *logging.Logger
	wg     sync.WaitGroup
}

// NewFanOut creates a fan-out over the given sinks.
func NewFanOut(logger *logging.Logger, sinks ...Notifier) *FanOut {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &FanOut{sinks: sinks, logger: logger}
}

func (f *FanOut) Available(n AvailableNote) { f.dispatch(func(s Notifier) { s.Available(n) }) }

func (f *FanOut) AttemptStarted(n AttemptNote) {
	f.dispatch(func(s Notifier) { s.AttemptStarted(n) })
}

func (f *FanOut) Succeeded(n SuccessNote) { f.dispatch(func(s Notifier) { s.Succeeded(n) }) }

func (f *FanOut) Failed(n FailureNote) { f.dispatch(func(s Notifier) { s.Failed(n) }) }

func (f *FanOut) dispatch(call func(Notifier)) {
	for _, sink := range f.sinks {
		f.wg.Add(1)
		go func(s Notifier) {
			defer f.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					f.logger.Error("notification sink panicked", "panic", fmt.Sprintf("%v", r))
				}
			}()
			call(s)
		}(sink)
	}
}

// Wait blocks until all in-flight deliveries finish.
func (f *FanOut) Wait() {
	f.wg.Wait()
}
