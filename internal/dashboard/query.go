package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// Query is a set of store mutations expressed as text, as accepted by the
// snapshot command flags and the HTTP views endpoint.
type Query struct {
	Cursor      *int
	ClearCursor bool
	Time        *series.Range
	Altitude    *series.Range
}

// ParseQuery parses cursor, time and altitude values. Empty strings leave
// the corresponding state untouched. cursor accepts an integer or "none".
// Ranges are "min,max" or "min:max".
func ParseQuery(cursorText, timeText, altText string) (Query, error) {
	var q Query
	switch strings.ToLower(strings.TrimSpace(cursorText)) {
	case "":
	case "none", "null":
		q.ClearCursor = true
	default:
		v, err := strconv.Atoi(strings.TrimSpace(cursorText))
		if err != nil {
			return Query{}, fmt.Errorf("invalid cursor %q: %w", cursorText, err)
		}
		q.Cursor = &v
	}

	var err error
	if q.Time, err = ParseRange(timeText); err != nil {
		return Query{}, fmt.Errorf("invalid time range: %w", err)
	}
	if q.Altitude, err = ParseRange(altText); err != nil {
		return Query{}, fmt.Errorf("invalid altitude range: %w", err)
	}
	return q, nil
}

// ParseRange parses "min,max" or "min:max". An empty string yields nil.
func ParseRange(s string) (*series.Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	sep := ","
	if !strings.Contains(s, sep) {
		sep = ":"
	}
	lo, hi, ok := strings.Cut(s, sep)
	if !ok {
		return nil, fmt.Errorf("expected min,max: %q", s)
	}
	minV, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return nil, fmt.Errorf("bad min %q: %w", lo, err)
	}
	maxV, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return nil, fmt.Errorf("bad max %q: %w", hi, err)
	}
	r := series.Range{Min: minV, Max: maxV}
	if !r.Valid() {
		return nil, fmt.Errorf("range bounds must be finite: %q", s)
	}
	return &r, nil
}

// Apply commits q to store: filters first, so an explicit cursor wins over
// re-homing.
func (q Query) Apply(store *cursor.Store) {
	if q.Time != nil {
		store.SetTimeFilter(q.Time)
	}
	if q.Altitude != nil {
		store.SetAltitudeFilter(q.Altitude)
	}
	switch {
	case q.ClearCursor:
		store.ClearCursor()
	case q.Cursor != nil:
		store.SetCursor(q.Cursor)
	}
}

// Empty reports whether q changes nothing.
func (q Query) Empty() bool {
	return q.Cursor == nil && !q.ClearCursor && q.Time == nil && q.Altitude == nil
}
