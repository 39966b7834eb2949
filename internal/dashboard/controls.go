package dashboard

import (
	"math"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/numeric"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// Controls implements the control panel: time window start/end, the
// selected time, and the altitude window. Each operation orders its bounds
// before committing, and the store clamps into the domains.
type Controls struct {
	store *cursor.Store
}

// NewControls binds control operations to store.
func NewControls(store *cursor.Store) *Controls {
	return &Controls{store: store}
}

func (c *Controls) timeWindow(snap cursor.Snapshot) series.Range {
	switch {
	case snap.TimeFilter != nil:
		return *snap.TimeFilter
	case snap.TimeDomain != nil:
		return *snap.TimeDomain
	}
	return FallbackTimeDomain
}

func (c *Controls) altWindow(snap cursor.Snapshot) series.Range {
	switch {
	case snap.AltitudeFilter != nil:
		return *snap.AltitudeFilter
	case snap.AltDomain != nil:
		return *snap.AltDomain
	}
	return FallbackAltitudeDomain
}

// TimeWindow is the effective time window: the filter, else the domain.
func (c *Controls) TimeWindow() series.Range {
	return c.timeWindow(c.store.Snapshot())
}

// AltWindow is the effective altitude window: the filter, else the domain.
func (c *Controls) AltWindow() series.Range {
	return c.altWindow(c.store.Snapshot())
}

// SetTimeMin moves the window start, never past the window end. A cursor
// left before the new start follows it.
func (c *Controls) SetTimeMin(v int) {
	snap := c.store.Snapshot()
	w := c.timeWindow(snap)
	newMin := math.Min(float64(v), w.Max)
	if snap.Cursor != nil && newMin > float64(*snap.Cursor) {
		c.store.Select(int(newMin))
	}
	c.store.SetTimeFilter(&series.Range{Min: newMin, Max: w.Max})
}

// SetTimeMax moves the window end, never before the window start. A cursor
// left after the new end follows it.
func (c *Controls) SetTimeMax(v int) {
	snap := c.store.Snapshot()
	w := c.timeWindow(snap)
	newMax := math.Max(float64(v), w.Min)
	if snap.Cursor != nil && newMax < float64(*snap.Cursor) {
		c.store.Select(int(newMax))
	}
	c.store.SetTimeFilter(&series.Range{Min: w.Min, Max: newMax})
}

// SetSelected moves the cursor, clamped into the time window.
func (c *Controls) SetSelected(v int) {
	w := c.timeWindow(c.store.Snapshot())
	clamped := math.Max(w.Min, math.Min(float64(v), w.Max))
	c.store.Select(int(clamped))
}

// StepCursor moves the cursor by delta steps. With no cursor, stepping
// forward starts at the window start and stepping back at the window end.
func (c *Controls) StepCursor(delta int) {
	snap := c.store.Snapshot()
	if snap.Cursor == nil {
		w := c.timeWindow(snap)
		if delta >= 0 {
			c.SetSelected(int(w.Min))
		} else {
			c.SetSelected(int(w.Max))
		}
		return
	}
	c.SetSelected(*snap.Cursor + delta)
}

// PanTime shifts the time window by delta steps, keeping its width and
// staying inside the time domain.
func (c *Controls) PanTime(delta int) {
	snap := c.store.Snapshot()
	w := c.timeWindow(snap)
	d := float64(delta)
	if dom := snap.TimeDomain; dom != nil {
		d = math.Max(dom.Min-w.Min, math.Min(d, dom.Max-w.Max))
	}
	if d == 0 {
		return
	}
	c.store.SetTimeFilter(&series.Range{Min: w.Min + d, Max: w.Max + d})
}

// SetAltMin moves the altitude window floor, never above the ceiling.
func (c *Controls) SetAltMin(v float64) {
	w := c.altWindow(c.store.Snapshot())
	c.store.SetAltitudeFilter(&series.Range{Min: math.Min(v, w.Max), Max: w.Max})
}

// SetAltMax moves the altitude window ceiling, never below the floor.
func (c *Controls) SetAltMax(v float64) {
	w := c.altWindow(c.store.Snapshot())
	c.store.SetAltitudeFilter(&series.Range{Min: w.Min, Max: math.Max(v, w.Min)})
}

// AltStep is the altitude adjustment increment for the current domain.
func (c *Controls) AltStep() float64 {
	snap := c.store.Snapshot()
	dom := FallbackAltitudeDomain
	if snap.AltDomain != nil {
		dom = *snap.AltDomain
	}
	return numeric.SliderStep(dom.Span())
}

// ToggleCursor clears the cursor, or restores it at the window midpoint.
func (c *Controls) ToggleCursor() {
	snap := c.store.Snapshot()
	if snap.Cursor != nil {
		c.store.ClearCursor()
		return
	}
	c.store.Select(c.timeWindow(snap).Midpoint())
}

// Reset restores both filters to their domains.
func (c *Controls) Reset() {
	c.store.Reset()
}
