// Package errors provides centralized error definitions and error handling utilities
// for flightdash. It defines the dashboard's error taxonomy, error constructors
// with context wrapping, and classification helpers used at the view-adapter
// boundary to turn failures into renderable states.
//
// # Error Types
//
// Data errors describe problems with fetched or summarized series:
//   - EmptyInputError: a transform was asked to summarize zero elements
//   - MalformedSeriesError: an ingested payload has inconsistent shapes
//   - SourceError: a data source could not produce a series
//
// Control-flow signals are not user-visible failures:
//   - StaleFetchError: a superseded fetch result was intentionally dropped
//
// Out-of-domain filter and cursor values are never errors; the store clamps
// them silently.
//
// # Usage
//
//	_, err := numeric.DomainOf(nil)
//	if errors.Is(err, errors.ErrEmptyInput) { ... }
//
//	var malformed *errors.MalformedSeriesError
//	if errors.As(err, &malformed) { ... }
//
//	if errors.IsStale(err) { return } // drop silently
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

var (
	// ErrEmptyInput indicates a summary was requested over zero elements.
	ErrEmptyInput = New("empty input")
	// ErrMalformedSeries indicates inconsistent series shapes in a payload.
	ErrMalformedSeries = New("malformed series")
	// ErrStaleFetch indicates a fetch result was superseded by a newer request.
	ErrStaleFetch = New("stale fetch discarded")
	// ErrSourceUnavailable indicates a data source could not be reached or read.
	ErrSourceUnavailable = New("data source unavailable")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// DashError is the base interface for all flightdash errors.
type DashError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if a re-fetch may succeed.
	IsRetryable() bool

	// IsUserFacing returns true if the message is safe to show in a view.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error        { return e.cause }
func (e *baseError) Severity() Severity   { return e.severity }
func (e *baseError) IsRetryable() bool    { return e.retryable }
func (e *baseError) IsUserFacing() bool   { return e.userFacing }
func (e *baseError) causeIs(t error) bool { return e.cause != nil && errors.Is(e.cause, t) }

// -----------------------------------------------------------------------------
// Data Errors
// -----------------------------------------------------------------------------

// EmptyInputError is returned when a transform must summarize zero elements
// and no sane default exists (for example the min/max domain of nothing).
type EmptyInputError struct {
	baseError
	Op string
}

// NewEmptyInputError creates an EmptyInputError for the named operation.
func NewEmptyInputError(op string) *EmptyInputError {
	return &EmptyInputError{
		baseError: baseError{
			message:    "cannot summarize zero values",
			severity:   SeverityWarning,
			userFacing: true,
		},
		Op: op,
	}
}

// Error returns the formatted error message.
func (e *EmptyInputError) Error() string {
	if e.Op == "" {
		return "empty input: " + e.message
	}
	return fmt.Sprintf("empty input [op=%s]: %s", e.Op, e.message)
}

// Is matches ErrEmptyInput and any *EmptyInputError.
func (e *EmptyInputError) Is(target error) bool {
	if target == ErrEmptyInput {
		return true
	}
	if _, ok := target.(*EmptyInputError); ok {
		return true
	}
	return e.causeIs(target)
}

// MalformedSeriesError is returned when an ingested payload's parallel arrays
// disagree in length or the payload fits no accepted shape.
//
// Example:
//
//	err := errors.NewMalformedSeriesError("losses", "length mismatch").WithLengths(300, 299)
//	fmt.Println(err) // "malformed series [series=losses, lengths=300/299]: length mismatch"
type MalformedSeriesError struct {
	baseError
	Series  string
	Lengths []int
}

// NewMalformedSeriesError creates a MalformedSeriesError.
func NewMalformedSeriesError(series, reason string) *MalformedSeriesError {
	return &MalformedSeriesError{
		baseError: baseError{
			message:    reason,
			severity:   SeverityError,
			userFacing: true,
		},
		Series: series,
	}
}

// WithLengths records the conflicting lengths.
func (e *MalformedSeriesError) WithLengths(lengths ...int) *MalformedSeriesError {
	e.Lengths = append([]int(nil), lengths...)
	return e
}

// WithCause attaches an underlying decode error.
func (e *MalformedSeriesError) WithCause(cause error) *MalformedSeriesError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *MalformedSeriesError) Error() string {
	var parts []string
	if e.Series != "" {
		parts = append(parts, "series="+e.Series)
	}
	if len(e.Lengths) > 0 {
		ls := make([]string, len(e.Lengths))
		for i, l := range e.Lengths {
			ls[i] = fmt.Sprint(l)
		}
		parts = append(parts, "lengths="+strings.Join(ls, "/"))
	}

	prefix := "malformed series"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("malformed series [%s]", strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is matches ErrMalformedSeries and any *MalformedSeriesError.
func (e *MalformedSeriesError) Is(target error) bool {
	if target == ErrMalformedSeries {
		return true
	}
	if _, ok := target.(*MalformedSeriesError); ok {
		return true
	}
	return e.causeIs(target)
}

// SourceError is returned when a data source fails to produce a series.
type SourceError struct {
	baseError
	Source string
	Series string
}

// NewSourceError creates a SourceError. Source errors are retryable by default.
func NewSourceError(source, series string, cause error) *SourceError {
	return &SourceError{
		baseError: baseError{
			message:    "fetch failed",
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
		Source: source,
		Series: series,
	}
}

// WithRetryable sets whether the error is retryable.
func (e *SourceError) WithRetryable(r bool) *SourceError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *SourceError) Error() string {
	prefix := fmt.Sprintf("source error [source=%s, series=%s]", e.Source, e.Series)
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is matches ErrSourceUnavailable, any *SourceError, or the wrapped cause.
func (e *SourceError) Is(target error) bool {
	if target == ErrSourceUnavailable {
		return true
	}
	if _, ok := target.(*SourceError); ok {
		return true
	}
	return e.causeIs(target)
}

// -----------------------------------------------------------------------------
// Control-Flow Signals
// -----------------------------------------------------------------------------

// StaleFetchError signals that a fetch result was dropped because a newer
// fetch for the same key started after it. It is never shown to users.
type StaleFetchError struct {
	baseError
	Key        string
	Generation uint64
	Latest     uint64
}

// NewStaleFetchError creates a StaleFetchError.
func NewStaleFetchError(key string, generation, latest uint64) *StaleFetchError {
	return &StaleFetchError{
		baseError: baseError{
			message:  "superseded by newer request",
			severity: SeverityDebug,
		},
		Key:        key,
		Generation: generation,
		Latest:     latest,
	}
}

// Error returns the formatted error message.
func (e *StaleFetchError) Error() string {
	return fmt.Sprintf("stale fetch [key=%s, gen=%d, latest=%d]: %s", e.Key, e.Generation, e.Latest, e.message)
}

// Is matches ErrStaleFetch and any *StaleFetchError.
func (e *StaleFetchError) Is(target error) bool {
	if target == ErrStaleFetch {
		return true
	}
	_, ok := target.(*StaleFetchError)
	return ok
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsStale reports whether err signals a discarded, superseded fetch.
func IsStale(err error) bool {
	return err != nil && Is(err, ErrStaleFetch)
}

// IsRetryable returns true if re-fetching may succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var de DashError
	if As(err, &de) {
		return de.IsRetryable()
	}
	return Is(err, ErrSourceUnavailable)
}

// IsUserFacing returns true if the error message is safe to display in a view.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var de DashError
	if As(err, &de) {
		return de.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement DashError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var de DashError
	if As(err, &de) {
		return de.Severity()
	}
	return SeverityError
}

// UserMessage returns a message suitable for a view's failed state.
// Internal errors are replaced with a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsUserFacing(err) {
		return err.Error()
	}
	return "load failed"
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
