// Package errors provides centralized error definitions and error handling utilities
// for the seatwatch codebase. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - ProbeError: a single availability check against a target failed
//   - StageError: a pipeline stage's collaborator call failed or timed out
//   - PersistenceError: the target registry snapshot could not be written
//
// Sentinel errors represent common terminal conditions:
//   - ErrAttemptInProgress: an acquisition is already active for the target
//   - ErrRetriesExhausted: the pipeline failed on every allowed attempt
//   - ErrTargetNotFound / ErrTargetExists: registry lookups
//
// # Usage
//
// Creating errors:
//
//	// A probe failure, recorded on the target but never fatal to the loop
//	err := errors.NewProbeError("availability check failed", cause).WithTargetID("ET001")
//
//	// A stage failure, aborting the current attempt
//	err := errors.NewStageError("payment rejected", cause).WithStage("paying")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrAttemptInProgress) { ... }
//
//	var probeErr *errors.ProbeError
//	if errors.As(err, &probeErr) { ... }
//
//	if errors.IsRetryable(err) { ... }
//
// # Error Classification
//
// ProbeError is always retryable: the scheduler records it and probes again on the
// normal cadence. StageError is retryable at the pipeline level only — the attempt
// that hit it is dead. PersistenceError is retried once at the write site and then
// surfaced for that mutation alone.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Registry-related sentinel errors
var (
	// ErrTargetNotFound indicates that a target could not be found in the registry.
	ErrTargetNotFound = New("target not found")
	// ErrTargetExists indicates that a target with the same ID is already registered.
	ErrTargetExists = New("target already registered")
	// ErrSnapshotCorrupted indicates that the registry snapshot could not be decoded.
	ErrSnapshotCorrupted = New("registry snapshot corrupted")
)

// Acquisition-related sentinel errors
var (
	// ErrAttemptInProgress indicates that an acquisition attempt is already
	// active for the target. The new trigger is dropped, never queued.
	ErrAttemptInProgress = New("acquisition attempt already in progress")
	// ErrRetriesExhausted indicates that the pipeline failed on every allowed attempt.
	ErrRetriesExhausted = New("acquisition retries exhausted")
	// ErrNoConfirmation indicates that payment reported success but no
	// confirmation identifier could be extracted. Confirmation is the only
	// proof of a completed purchase, so this is a failure.
	ErrNoConfirmation = New("no confirmation identifier")
	// ErrChallengeUnsolved indicates that a CAPTCHA challenge was detected
	// but could not be solved.
	ErrChallengeUnsolved = New("challenge unsolved")
	// ErrTrackingDisabled indicates that an operation was requested for a
	// target whose tracking is turned off.
	ErrTrackingDisabled = New("tracking disabled for target")
)

// General sentinel errors
var (
	// ErrTimeout indicates that a collaborator call timed out.
	// A timeout is treated identically to a reported failure.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// DomainError is the base interface for all seatwatch errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type DomainError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message   string
	cause     error
	severity  Severity
	retryable bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ProbeError represents a failed availability check: a network or DOM failure
// while reading a target's page. It never stops the scheduling loop — the
// target is probed again after the normal delay.
//
// Example:
//
//	err := errors.NewProbeError("availability check failed", cause)
//	err = err.WithTargetID("ET00312876")
type ProbeError struct {
	baseError
	TargetID string
}

// NewProbeError creates a new ProbeError.
func NewProbeError(message string, cause error) *ProbeError {
	return &ProbeError{
		baseError: baseError{
			message:   message,
			cause:     cause,
			severity:  SeverityWarning,
			retryable: true,
		},
	}
}

// WithTargetID adds a target ID to the error context.
func (e *ProbeError) WithTargetID(id string) *ProbeError {
	e.TargetID = id
	return e
}

// Error returns the formatted error message.
func (e *ProbeError) Error() string {
	prefix := "probe error"
	if e.TargetID != "" {
		prefix = fmt.Sprintf("probe error [target=%s]", e.TargetID)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ProbeError) Is(target error) bool {
	if _, ok := target.(*ProbeError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// StageError represents a pipeline stage failure: a collaborator call that
// failed or timed out. It aborts the current acquisition attempt; the
// orchestrator may retry the whole pipeline from the start.
//
// Example:
//
//	err := errors.NewStageError("payment rejected", cause).
//		WithStage("paying").
//		WithAttempt(2)
type StageError struct {
	baseError
	Stage   string
	Attempt int
}

// NewStageError creates a new StageError.
func NewStageError(message string, cause error) *StageError {
	return &StageError{
		baseError: baseError{
			message:   message,
			cause:     cause,
			severity:  SeverityError,
			retryable: true, // retryable at pipeline level, never at stage level
		},
	}
}

// WithStage adds the failing stage name to the error context.
func (e *StageError) WithStage(stage string) *StageError {
	e.Stage = stage
	return e
}

// WithAttempt adds the attempt number to the error context.
func (e *StageError) WithAttempt(n int) *StageError {
	e.Attempt = n
	return e
}

// Error returns the formatted error message.
func (e *StageError) Error() string {
	var parts []string
	if e.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage=%s", e.Stage))
	}
	if e.Attempt > 0 {
		parts = append(parts, fmt.Sprintf("attempt=%d", e.Attempt))
	}

	prefix := "stage error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("stage error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *StageError) Is(target error) bool {
	if _, ok := target.(*StageError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// PersistenceError represents a failed registry snapshot write. The write is
// retried once immediately at the call site; a second failure surfaces this
// error for that mutation only, never for the whole monitoring process.
//
// Example:
//
//	err := errors.NewPersistenceError("snapshot write failed", cause).WithPath(path)
type PersistenceError struct {
	baseError
	Path string
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(message string, cause error) *PersistenceError {
	return &PersistenceError{
		baseError: baseError{
			message:   message,
			cause:     cause,
			severity:  SeverityCritical,
			retryable: false,
		},
	}
}

// WithPath adds the snapshot path to the error context.
func (e *PersistenceError) WithPath(path string) *PersistenceError {
	e.Path = path
	return e
}

// Error returns the formatted error message.
func (e *PersistenceError) Error() string {
	prefix := "persistence error"
	if e.Path != "" {
		prefix = fmt.Sprintf("persistence error [path=%s]", e.Path)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *PersistenceError) Is(target error) bool {
	if _, ok := target.(*PersistenceError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable reports whether the error is transient and the operation may
// succeed on retry. Errors that don't implement DomainError are treated as
// non-retryable.
func IsRetryable(err error) bool {
	var de DomainError
	if errors.As(err, &de) {
		return de.IsRetryable()
	}
	return false
}

// SeverityOf returns the severity of the error, or SeverityError for errors
// that carry no severity of their own.
func SeverityOf(err error) Severity {
	var de DomainError
	if errors.As(err, &de) {
		return de.Severity()
	}
	return SeverityError
}
