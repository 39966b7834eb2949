// Package event defines the dashboard's change notifications and the
// synchronous bus that carries them from the shared cursor/filter store to
// view adapters and renderers.
//
// Event types follow the pattern "category.action":
//   - cursor.changed, filter.changed, domain.changed
//   - data.loaded, data.failed, fetch.discarded
package event

import (
	"time"

	"github.com/Iron-Ham/flightdash/internal/series"
)

// Event type identifiers.
const (
	TypeCursorChanged  = "cursor.changed"
	TypeFilterChanged  = "filter.changed"
	TypeDomainChanged  = "domain.changed"
	TypeDataLoaded     = "data.loaded"
	TypeDataFailed     = "data.failed"
	TypeFetchDiscarded = "fetch.discarded"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Store Events
// -----------------------------------------------------------------------------

// CursorChangedEvent is emitted when the shared cursor moves or is cleared.
type CursorChangedEvent struct {
	baseEvent
	Cursor   *int   // New cursor; nil means no selection
	Previous *int   // Cursor before the change
	Rehomed  bool   // True when the store moved the cursor to keep it inside a filter
	Version  uint64 // Store version after the change
}

// NewCursorChangedEvent creates a CursorChangedEvent.
func NewCursorChangedEvent(cursor, previous *int, rehomed bool, version uint64) CursorChangedEvent {
	return CursorChangedEvent{
		baseEvent: newBaseEvent(TypeCursorChanged),
		Cursor:    cursor,
		Previous:  previous,
		Rehomed:   rehomed,
		Version:   version,
	}
}

// FilterChangedEvent is emitted when a time or altitude filter is committed.
type FilterChangedEvent struct {
	baseEvent
	Dimension series.Dimension
	Filter    *series.Range // Committed (clamped) filter; nil means unfiltered
	Version   uint64
}

// NewFilterChangedEvent creates a FilterChangedEvent.
func NewFilterChangedEvent(dim series.Dimension, filter *series.Range, version uint64) FilterChangedEvent {
	return FilterChangedEvent{
		baseEvent: newBaseEvent(TypeFilterChanged),
		Dimension: dim,
		Filter:    filter,
		Version:   version,
	}
}

// DomainChangedEvent is emitted when a discovered domain is set or replaced.
type DomainChangedEvent struct {
	baseEvent
	Dimension series.Dimension
	Domain    series.Range
	Version   uint64
}

// NewDomainChangedEvent creates a DomainChangedEvent.
func NewDomainChangedEvent(dim series.Dimension, domain series.Range, version uint64) DomainChangedEvent {
	return DomainChangedEvent{
		baseEvent: newBaseEvent(TypeDomainChanged),
		Dimension: dim,
		Domain:    domain,
		Version:   version,
	}
}

// -----------------------------------------------------------------------------
// Data Events
// -----------------------------------------------------------------------------

// DataLoadedEvent is emitted when an adapter's raw series finished loading.
type DataLoadedEvent struct {
	baseEvent
	View   string
	Points int
}

// NewDataLoadedEvent creates a DataLoadedEvent.
func NewDataLoadedEvent(view string, points int) DataLoadedEvent {
	return DataLoadedEvent{
		baseEvent: newBaseEvent(TypeDataLoaded),
		View:      view,
		Points:    points,
	}
}

// DataFailedEvent is emitted when an adapter's raw series failed to load.
type DataFailedEvent struct {
	baseEvent
	View  string
	Error string
}

// NewDataFailedEvent creates a DataFailedEvent.
func NewDataFailedEvent(view, errMsg string) DataFailedEvent {
	return DataFailedEvent{
		baseEvent: newBaseEvent(TypeDataFailed),
		View:      view,
		Error:     errMsg,
	}
}

// FetchDiscardedEvent is emitted when a superseded fetch result is dropped.
type FetchDiscardedEvent struct {
	baseEvent
	Key        string
	Generation uint64
	Latest     uint64
}

// NewFetchDiscardedEvent creates a FetchDiscardedEvent.
func NewFetchDiscardedEvent(key string, generation, latest uint64) FetchDiscardedEvent {
	return FetchDiscardedEvent{
		baseEvent:  newBaseEvent(TypeFetchDiscarded),
		Key:        key,
		Generation: generation,
		Latest:     latest,
	}
}
