// Package cursor implements the shared cursor/filter store: the single source
// of truth for the selected time index, the time and altitude filters, and
// their discovered domains during one dashboard session.
//
// Every mutation goes through the Store's methods so clamping and cursor
// re-homing hold at one choke point. Changes are published on an event.Bus
// in the order they were applied. The store never returns errors; invalid
// inputs are clamped or ignored so views are always renderable.
package cursor

import (
	"math"
	"sync"

	"github.com/Iron-Ham/flightdash/internal/event"
	"github.com/Iron-Ham/flightdash/internal/logging"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// Snapshot is an atomic copy of the store state.
type Snapshot struct {
	Cursor         *int          `json:"cursor"`
	TimeFilter     *series.Range `json:"time_filter"`
	AltitudeFilter *series.Range `json:"altitude_filter"`
	TimeDomain     *series.Range `json:"time_domain"`
	AltDomain      *series.Range `json:"alt_domain"`
	Version        uint64        `json:"version"`
}

// Filter returns the filter for dim.
func (s Snapshot) Filter(dim series.Dimension) *series.Range {
	if dim == series.DimAltitude {
		return s.AltitudeFilter
	}
	return s.TimeFilter
}

// Domain returns the domain for dim.
func (s Snapshot) Domain(dim series.Dimension) *series.Range {
	if dim == series.DimAltitude {
		return s.AltDomain
	}
	return s.TimeDomain
}

// HasCursor reports whether a time index is selected.
func (s Snapshot) HasCursor() bool { return s.Cursor != nil }

// Store holds the session's cursor, filters and domains.
type Store struct {
	mu    sync.Mutex
	state Snapshot
	bus   *event.Bus
	log   *logging.Logger
}

// New creates an empty store publishing on bus. A nil bus gets a private one.
func New(bus *event.Bus, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if bus == nil {
		bus = event.NewBus(logger)
	}
	return &Store{bus: bus, log: logger}
}

// Bus returns the bus the store publishes on.
func (s *Store) Bus() *event.Bus { return s.bus }

// Subscribe registers fn for every store event and returns a func that
// removes the subscription.
func (s *Store) Subscribe(fn func(event.Event)) func() {
	ids := []string{
		s.bus.Subscribe(event.TypeCursorChanged, fn),
		s.bus.Subscribe(event.TypeFilterChanged, fn),
		s.bus.Subscribe(event.TypeDomainChanged, fn),
	}
	return func() {
		for _, id := range ids {
			s.bus.Unsubscribe(id)
		}
	}
}

// Snapshot returns a copy of the current state. Pointers in the result never
// alias store internals.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Select sets the cursor to t.
func (s *Store) Select(t int) { s.SetCursor(&t) }

// ClearCursor removes the selection.
func (s *Store) ClearCursor() { s.SetCursor(nil) }

// SetCursor sets or clears the cursor. It does not clamp to filters; that is
// the caller's job. Setting the current value again publishes nothing.
func (s *Store) SetCursor(t *int) {
	var pending []event.Event

	s.mu.Lock()
	if !sameInt(s.state.Cursor, t) {
		pending = append(pending, s.setCursorLocked(copyInt(t), false))
	}
	s.mu.Unlock()

	s.publish(pending)
}

// SetTimeFilter commits a time filter, clamped into the time domain. If the
// cursor lies outside the committed filter it is re-homed to the filter's
// midpoint, published after the filter change. nil removes the filter.
func (s *Store) SetTimeFilter(r *series.Range) { s.setFilter(series.DimTime, r) }

// SetAltitudeFilter commits an altitude filter, clamped into the altitude
// domain. nil removes the filter.
func (s *Store) SetAltitudeFilter(r *series.Range) { s.setFilter(series.DimAltitude, r) }

// SetFilter dispatches to the dimension's filter setter.
func (s *Store) SetFilter(dim series.Dimension, r *series.Range) { s.setFilter(dim, r) }

// SetDomain records discovered bounds for dim, replacing any previous domain.
// Existing filters are not re-clamped; adapters tolerate filters that are
// wider or narrower than a freshly discovered domain.
func (s *Store) SetDomain(dim series.Dimension, r series.Range) {
	if !r.Valid() {
		s.log.Warn("ignoring invalid domain", "dimension", dim.String(), "min", r.Min, "max", r.Max)
		return
	}
	r = r.Ordered()

	s.mu.Lock()
	if dim == series.DimAltitude {
		s.state.AltDomain = r.Ptr()
	} else {
		s.state.TimeDomain = r.Ptr()
	}
	s.state.Version++
	ev := event.NewDomainChangedEvent(dim, r, s.state.Version)
	s.mu.Unlock()

	s.log.Debug("domain set", "dimension", dim.String(), "min", r.Min, "max", r.Max)
	s.bus.Publish(ev)
}

// InitFromDomain initializes dim's filter to its domain when no filter has
// been committed yet. It reports whether a filter was initialized.
func (s *Store) InitFromDomain(dim series.Dimension) bool {
	snap := s.Snapshot()
	dom := snap.Domain(dim)
	if dom == nil || snap.Filter(dim) != nil {
		return false
	}
	s.setFilter(dim, dom)
	return true
}

// Reset restores both filters to their domains (or nil when unknown).
func (s *Store) Reset() {
	snap := s.Snapshot()
	s.setFilter(series.DimTime, snap.TimeDomain)
	s.setFilter(series.DimAltitude, snap.AltDomain)
}

func (s *Store) setFilter(dim series.Dimension, r *series.Range) {
	var pending []event.Event

	s.mu.Lock()
	var committed *series.Range
	if r != nil {
		if !r.Valid() {
			s.mu.Unlock()
			s.log.Warn("ignoring invalid filter", "dimension", dim.String())
			return
		}
		c := clamp(*r, s.state.Domain(dim))
		committed = &c
	}

	if dim == series.DimAltitude {
		s.state.AltitudeFilter = committed
	} else {
		s.state.TimeFilter = committed
	}
	s.state.Version++
	pending = append(pending, event.NewFilterChangedEvent(dim, copyRange(committed), s.state.Version))

	if dim == series.DimTime && committed != nil && s.state.Cursor != nil &&
		!committed.Contains(float64(*s.state.Cursor)) {
		mid := committed.Midpoint()
		pending = append(pending, s.setCursorLocked(&mid, true))
	}
	s.mu.Unlock()

	if committed != nil {
		s.log.Debug("filter committed", "dimension", dim.String(), "min", committed.Min, "max", committed.Max)
	} else {
		s.log.Debug("filter cleared", "dimension", dim.String())
	}
	s.publish(pending)
}

// setCursorLocked assigns the cursor and returns the event to publish.
// The caller must hold s.mu.
func (s *Store) setCursorLocked(t *int, rehomed bool) event.Event {
	prev := s.state.Cursor
	s.state.Cursor = t
	s.state.Version++
	return event.NewCursorChangedEvent(copyInt(t), copyInt(prev), rehomed, s.state.Version)
}

func (s *Store) publish(events []event.Event) {
	for _, e := range events {
		if c, ok := e.(event.CursorChangedEvent); ok {
			s.log.Debug("cursor changed", "cursor", fmtCursor(c.Cursor), "rehomed", c.Rehomed)
		}
		s.bus.Publish(e)
	}
}

// clamp orders r and bounds it by domain:
// min = max(domain.min, min(r.min, r.max)), max = min(domain.max, max(r.min, r.max)).
// A filter that falls entirely outside the domain collapses onto the nearest
// domain edge so Min <= Max still holds.
func clamp(r series.Range, domain *series.Range) series.Range {
	lo := math.Min(r.Min, r.Max)
	hi := math.Max(r.Min, r.Max)
	if domain == nil {
		return series.Range{Min: lo, Max: hi}
	}
	lo = math.Max(domain.Min, lo)
	hi = math.Min(domain.Max, hi)
	if lo > hi {
		if lo >= domain.Max {
			lo, hi = domain.Max, domain.Max
		} else {
			lo, hi = domain.Min, domain.Min
		}
	}
	return series.Range{Min: lo, Max: hi}
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Cursor:         copyInt(s.Cursor),
		TimeFilter:     copyRange(s.TimeFilter),
		AltitudeFilter: copyRange(s.AltitudeFilter),
		TimeDomain:     copyRange(s.TimeDomain),
		AltDomain:      copyRange(s.AltDomain),
		Version:        s.Version,
	}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyRange(p *series.Range) *series.Range {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func fmtCursor(c *int) any {
	if c == nil {
		return nil
	}
	return *c
}
