package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/series"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    *series.Range
		wantErr bool
	}{
		{"", nil, false},
		{"50,100", &series.Range{Min: 50, Max: 100}, false},
		{" 2000 : 8000 ", &series.Range{Min: 2000, Max: 8000}, false},
		{"100,50", &series.Range{Min: 100, Max: 50}, false},
		{"-1.5,2", &series.Range{Min: -1.5, Max: 2}, false},
		{"50", nil, true},
		{"a,b", nil, true},
		{"NaN,1", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("75", "50,100", "")
	require.NoError(t, err)
	assert.Equal(t, 75, *q.Cursor)
	assert.Equal(t, series.Range{Min: 50, Max: 100}, *q.Time)
	assert.Nil(t, q.Altitude)
	assert.False(t, q.Empty())

	q, err = ParseQuery("none", "", "")
	require.NoError(t, err)
	assert.True(t, q.ClearCursor)

	empty, err := ParseQuery("", "", "")
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	_, err = ParseQuery("abc", "", "")
	assert.Error(t, err)
	_, err = ParseQuery("", "1", "")
	assert.Error(t, err)
}

func TestQuery_ApplyCursorAfterFilter(t *testing.T) {
	store := cursor.New(nil, nil)
	store.SetDomain(series.DimTime, series.Range{Min: 0, Max: 299})
	store.Select(10)

	q, err := ParseQuery("60", "50,100", "")
	require.NoError(t, err)
	q.Apply(store)

	snap := store.Snapshot()
	assert.Equal(t, 60, *snap.Cursor, "explicit cursor wins over re-homing")
	assert.Equal(t, series.Range{Min: 50, Max: 100}, *snap.TimeFilter)
}
