package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/series"
)

func newControls(t *testing.T) (*Controls, *cursor.Store) {
	t.Helper()
	store := cursor.New(nil, nil)
	store.SetDomain(series.DimTime, series.Range{Min: 0, Max: 299})
	store.SetDomain(series.DimAltitude, series.Range{Min: 0, Max: 10000})
	store.InitFromDomain(series.DimTime)
	store.InitFromDomain(series.DimAltitude)
	store.Select(149)
	return NewControls(store), store
}

func TestControls_SetTimeMin(t *testing.T) {
	c, store := newControls(t)

	c.SetTimeMin(200)
	snap := store.Snapshot()
	assert.Equal(t, series.Range{Min: 200, Max: 299}, *snap.TimeFilter)
	assert.Equal(t, 200, *snap.Cursor, "cursor follows the start")

	c.SetTimeMin(400)
	snap = store.Snapshot()
	assert.Equal(t, series.Range{Min: 299, Max: 299}, *snap.TimeFilter, "start never passes the end")
}

func TestControls_SetTimeMax(t *testing.T) {
	c, store := newControls(t)

	c.SetTimeMax(100)
	snap := store.Snapshot()
	assert.Equal(t, series.Range{Min: 0, Max: 100}, *snap.TimeFilter)
	assert.Equal(t, 100, *snap.Cursor)

	c.SetTimeMax(-5)
	assert.Equal(t, series.Range{Min: 0, Max: 0}, *store.Snapshot().TimeFilter)
}

func TestControls_SetSelectedClamps(t *testing.T) {
	c, store := newControls(t)
	c.SetTimeMax(100)

	c.SetSelected(250)
	assert.Equal(t, 100, *store.Snapshot().Cursor)

	c.SetSelected(-3)
	assert.Equal(t, 0, *store.Snapshot().Cursor)
}

func TestControls_StepCursor(t *testing.T) {
	c, store := newControls(t)

	c.StepCursor(1)
	assert.Equal(t, 150, *store.Snapshot().Cursor)
	c.StepCursor(-10)
	assert.Equal(t, 140, *store.Snapshot().Cursor)

	store.ClearCursor()
	c.StepCursor(-1)
	assert.Equal(t, 299, *store.Snapshot().Cursor)

	store.ClearCursor()
	c.StepCursor(1)
	assert.Equal(t, 0, *store.Snapshot().Cursor)
}

func TestControls_PanTime(t *testing.T) {
	c, store := newControls(t)
	store.SetTimeFilter(&series.Range{Min: 100, Max: 150})

	c.PanTime(20)
	assert.Equal(t, series.Range{Min: 120, Max: 170}, *store.Snapshot().TimeFilter)

	c.PanTime(1000)
	assert.Equal(t, series.Range{Min: 249, Max: 299}, *store.Snapshot().TimeFilter)

	c.PanTime(-1000)
	assert.Equal(t, series.Range{Min: 0, Max: 50}, *store.Snapshot().TimeFilter)
}

func TestControls_Altitude(t *testing.T) {
	c, store := newControls(t)

	c.SetAltMin(2000)
	c.SetAltMax(8000)
	assert.Equal(t, series.Range{Min: 2000, Max: 8000}, *store.Snapshot().AltitudeFilter)

	c.SetAltMin(9000)
	assert.Equal(t, series.Range{Min: 8000, Max: 8000}, *store.Snapshot().AltitudeFilter, "floor never exceeds ceiling")

	c.SetAltMax(-100)
	assert.Equal(t, series.Range{Min: 8000, Max: 8000}, *store.Snapshot().AltitudeFilter)

	assert.Equal(t, 50.0, c.AltStep())
	assert.Equal(t, 149, *store.Snapshot().Cursor, "altitude changes never move the cursor")
}

func TestControls_ToggleAndReset(t *testing.T) {
	c, store := newControls(t)
	store.SetTimeFilter(&series.Range{Min: 10, Max: 20})
	store.SetAltitudeFilter(&series.Range{Min: 10, Max: 20})

	c.ToggleCursor()
	assert.Nil(t, store.Snapshot().Cursor)
	c.ToggleCursor()
	require.NotNil(t, store.Snapshot().Cursor)
	assert.Equal(t, 15, *store.Snapshot().Cursor)

	c.Reset()
	snap := store.Snapshot()
	assert.Equal(t, *snap.TimeDomain, *snap.TimeFilter)
	assert.Equal(t, *snap.AltDomain, *snap.AltitudeFilter)
}

func TestControls_FallbackWithoutDomains(t *testing.T) {
	store := cursor.New(nil, nil)
	c := NewControls(store)

	c.SetAltMax(500)
	assert.Equal(t, series.Range{Min: 0, Max: 500}, *store.Snapshot().AltitudeFilter)

	c.SetSelected(10)
	assert.Equal(t, 0, *store.Snapshot().Cursor, "time fallback domain is {0,0}")
}

func TestControls_Windows(t *testing.T) {
	c, _ := newControls(t)
	assert.Equal(t, series.Range{Min: 0, Max: 299}, c.TimeWindow())

	c.SetTimeMin(50)
	c.SetAltMax(4000)
	assert.Equal(t, series.Range{Min: 50, Max: 299}, c.TimeWindow())
	assert.Equal(t, series.Range{Min: 0, Max: 4000}, c.AltWindow())

	bare := NewControls(cursor.New(nil, nil))
	assert.Equal(t, FallbackTimeDomain, bare.TimeWindow())
	assert.Equal(t, FallbackAltitudeDomain, bare.AltWindow())
}
