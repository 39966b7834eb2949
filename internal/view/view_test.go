package view

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/numeric"
	"github.com/Iron-Ham/flightdash/internal/series"
)

func intPtr(v int) *int { return &v }

func rng(lo, hi float64) *series.Range { return &series.Range{Min: lo, Max: hi} }

func rampLosses(n int) series.LossSeries {
	ls := make(series.LossSeries, n)
	for i := range ls {
		ls[i] = series.LossPoint{T: i, Value: float64(i)}
	}
	return ls
}

func straightTrajectory(n int) series.Trajectory {
	tr := make(series.Trajectory, n)
	for i := range tr {
		tr[i] = series.TrajectoryPoint{T: i, Lat: 30, Lon: -97 + float64(i)*0.01, Alt: float64(i) * 100}
	}
	return tr
}

func constantMatrix(features, steps int, v float64) series.FeatureMatrix {
	m := series.FeatureMatrix{Time: make([]int, steps)}
	for t := range m.Time {
		m.Time[t] = t
	}
	for f := 0; f < features; f++ {
		m.Features = append(m.Features, "engine_param_"+string(rune('a'+f)))
		row := make([]float64, steps)
		for t := range row {
			row[t] = v
		}
		m.Losses = append(m.Losses, row)
	}
	return m
}

func TestStatus_Text(t *testing.T) {
	for s := StatusLoading; s <= StatusFailed; s++ {
		b, err := s.MarshalText()
		require.NoError(t, err)
		var back Status
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, s, back)
	}
	var s Status
	assert.Error(t, s.UnmarshalText([]byte("bogus")))
	assert.Equal(t, "unknown", Status(42).String())
}

func TestLoss_FilterWindowAndThreshold(t *testing.T) {
	ls := rampLosses(300)
	snap := cursor.Snapshot{TimeFilter: rng(50, 100)}

	v := Loss(Loaded(ls), snap, DefaultOptions())

	require.Equal(t, StatusReady, v.Status)
	require.Len(t, v.Points, 51)
	assert.Equal(t, 50, v.Points[0].T)
	assert.Equal(t, 100, v.Points[50].T)
	assert.Equal(t, 300, v.Total)

	want := numeric.Percentile(series.LossSeries(ls[50:101]).Values(), 0.95)
	assert.InDelta(t, want, v.Threshold, 1e-9)
	assert.InDelta(t, 97.5, v.Threshold, 1e-9, "threshold comes from the visible slice only")
	assert.Len(t, v.Below, 48)
	assert.Len(t, v.Outliers, 3)
	for _, p := range v.Outliers {
		assert.GreaterOrEqual(t, p.Value, v.Threshold)
	}
	assert.Nil(t, v.Selected)
}

func TestLoss_SelectedOnlyInsideWindow(t *testing.T) {
	ls := rampLosses(300)

	inside := Loss(Loaded(ls), cursor.Snapshot{TimeFilter: rng(50, 100), Cursor: intPtr(75)}, DefaultOptions())
	require.NotNil(t, inside.Selected)
	assert.Equal(t, 75, inside.Selected.T)

	outside := Loss(Loaded(ls), cursor.Snapshot{TimeFilter: rng(50, 100), Cursor: intPtr(10)}, DefaultOptions())
	assert.Nil(t, outside.Selected)
}

func TestLoss_States(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name string
		raw  Raw[series.LossSeries]
		snap cursor.Snapshot
		want Status
	}{
		{"loading", Pending[series.LossSeries](), cursor.Snapshot{}, StatusLoading},
		{"no data", Loaded(series.LossSeries{}), cursor.Snapshot{}, StatusNoData},
		{"empty after filter", Loaded(rampLosses(10)), cursor.Snapshot{TimeFilter: rng(50, 60)}, StatusEmpty},
		{"failed", Failed[series.LossSeries](errors.NewSourceError("http", "losses", errors.New("down"))), cursor.Snapshot{}, StatusFailed},
		{"ready", Loaded(rampLosses(10)), cursor.Snapshot{}, StatusReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Loss(tt.raw, tt.snap, opts)
			assert.Equal(t, tt.want, v.Status)
			if tt.want == StatusFailed {
				assert.Contains(t, v.Error, "fetch failed")
			} else {
				assert.Empty(t, v.Error)
			}
		})
	}
}

func TestFailed_HidesInternalErrors(t *testing.T) {
	v := Loss(Failed[series.LossSeries](errors.New("dial tcp: secret")), cursor.Snapshot{}, DefaultOptions())
	assert.Equal(t, StatusFailed, v.Status)
	assert.Equal(t, "load failed", v.Error)
}

func TestTrajectory_BothFilters(t *testing.T) {
	tr := straightTrajectory(100)
	snap := cursor.Snapshot{
		TimeFilter:     rng(10, 60),
		AltitudeFilter: rng(2000, 4000),
		Cursor:         intPtr(30),
	}

	v := Trajectory(Loaded(tr), snap, DefaultOptions())

	require.Equal(t, StatusReady, v.Status)
	require.Len(t, v.Points, 21)
	assert.Equal(t, 20, v.Points[0].T)
	assert.Equal(t, 40, v.Points[20].T)
	require.NotNil(t, v.Selected)
	assert.Equal(t, 30, v.Selected.T)
	assert.Greater(t, v.TrackMeters, 0.0)

	snap.Cursor = intPtr(50) // inside time filter, outside altitude filter
	v = Trajectory(Loaded(tr), snap, DefaultOptions())
	assert.Nil(t, v.Selected)

	snap.Cursor = intPtr(500)
	v = Trajectory(Loaded(tr), snap, DefaultOptions())
	assert.Nil(t, v.Selected)
}

func TestTrajectory_EmptyKeepsHome(t *testing.T) {
	tr := straightTrajectory(10)
	v := Trajectory(Loaded(tr), cursor.Snapshot{AltitudeFilter: rng(50000, 60000)}, DefaultOptions())

	assert.Equal(t, StatusEmpty, v.Status)
	assert.Empty(t, v.Points)
	require.NotNil(t, v.Home, "home frames the whole path when nothing is visible")
	assert.Less(t, v.Home.West, -97.0)
}

func TestTrajectory_ManeuverScoresOnTurn(t *testing.T) {
	tr := series.Trajectory{
		{T: 0, Lat: 0, Lon: 0},
		{T: 1, Lat: 0, Lon: 0.01},
		{T: 2, Lat: 0, Lon: 0.02},
		{T: 3, Lat: 0.01, Lon: 0.02},
		{T: 4, Lat: 0.02, Lon: 0.02},
	}
	opts := DefaultOptions()
	opts.ManeuverRadius = 0

	v := Trajectory(Loaded(tr), cursor.Snapshot{}, opts)
	require.Len(t, v.Points, 5)
	assert.InDelta(t, 0, v.Points[1].Maneuver, 1e-6)
	assert.InDelta(t, 1.5707963, v.Points[2].Maneuver, 1e-3)
}

func TestHomeBounds(t *testing.T) {
	t.Run("padding", func(t *testing.T) {
		b := HomeBounds(series.Trajectory{{Lat: 30, Lon: -97}, {Lat: 31, Lon: -95}})
		require.NotNil(t, b)
		assert.InDelta(t, -97.3, b.West, 1e-9)
		assert.InDelta(t, -94.7, b.East, 1e-9)
		assert.InDelta(t, 29.85, b.South, 1e-9)
		assert.InDelta(t, 31.15, b.North, 1e-9)
		assert.False(t, b.CrossesAntimeridian())
	})

	t.Run("minimum padding", func(t *testing.T) {
		b := HomeBounds(series.Trajectory{{Lat: 10, Lon: 20}})
		require.NotNil(t, b)
		assert.InDelta(t, 19.95, b.West, 1e-9)
		assert.InDelta(t, 20.05, b.East, 1e-9)
	})

	t.Run("anti-meridian", func(t *testing.T) {
		b := HomeBounds(series.Trajectory{{Lat: 0, Lon: 179}, {Lat: 0, Lon: -179}})
		require.NotNil(t, b)
		assert.True(t, b.CrossesAntimeridian())
		assert.InDelta(t, 178.7, b.West, 1e-9)
		assert.InDelta(t, -178.7, b.East, 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, HomeBounds(nil))
	})

	t.Run("huge longitude", func(t *testing.T) {
		b := HomeBounds(series.Trajectory{{Lat: 10, Lon: 1e17}})
		require.NotNil(t, b)
		assert.True(t, b.West > -180 && b.West <= 180, "west = %v", b.West)
		assert.True(t, b.East > -180 && b.East <= 180, "east = %v", b.East)
	})

	t.Run("infinite longitude", func(t *testing.T) {
		assert.NotNil(t, HomeBounds(series.Trajectory{{Lat: 10, Lon: math.Inf(1)}}))
	})
}

func TestNormalizeLon(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-97, -97},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{540, 180},
		{-721, -1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, normalizeLon(tt.in), 1e-9, "normalizeLon(%v)", tt.in)
	}
	assert.True(t, math.IsNaN(normalizeLon(math.Inf(-1))))
}

func TestTopFeatures_ConstantMatrixAggregate(t *testing.T) {
	m := constantMatrix(5, 20, 0.25)
	opts := DefaultOptions()
	opts.TopN = 3

	v := TopFeatures(Loaded(m), nil, cursor.Snapshot{}, opts)

	require.Equal(t, StatusReady, v.Status)
	assert.Equal(t, ModeAggregate, v.Mode)
	require.Len(t, v.Top, 3)
	for i, s := range v.Top {
		assert.InDelta(t, 0.25, s.Value, 1e-12)
		assert.Equal(t, m.Features[i], s.Feature, "ties keep input order")
		assert.Equal(t, "engine", s.Group)
	}
	assert.InDelta(t, 0.5, v.Other, 1e-12)
	assert.Equal(t, 2, v.OtherCount)
}

func TestTopFeatures_PointThenAggregateWithoutRefetch(t *testing.T) {
	m := series.FeatureMatrix{
		Features: []string{"engine_a", "nav_b"},
		Time:     []int{0, 1, 2, 3},
		Losses: [][]float64{
			{1, 1, 1, 1},
			{0, 0, 9, 0},
		},
	}
	raw := Loaded(m)
	opts := DefaultOptions()

	point := TopFeatures(raw, nil, cursor.Snapshot{Cursor: intPtr(2)}, opts)
	require.Equal(t, ModePoint, point.Mode)
	require.Equal(t, 2, *point.Cursor)
	assert.Equal(t, "nav_b", point.Top[0].Feature)
	assert.InDelta(t, 9, point.Top[0].Value, 1e-12)

	agg := TopFeatures(raw, nil, cursor.Snapshot{}, opts)
	require.Equal(t, ModeAggregate, agg.Mode)
	assert.Nil(t, agg.Window)
	assert.Equal(t, "nav_b", agg.Top[0].Feature)
	assert.InDelta(t, 2.25, agg.Top[0].Value, 1e-12)

	windowed := TopFeatures(raw, nil, cursor.Snapshot{TimeFilter: rng(0, 1)}, opts)
	assert.Equal(t, "engine_a", windowed.Top[0].Feature)
	assert.Equal(t, rng(0, 1), windowed.Window)
}

func TestTopFeatures_CursorOutsideMatrix(t *testing.T) {
	m := constantMatrix(2, 5, 1)
	v := TopFeatures(Loaded(m), nil, cursor.Snapshot{Cursor: intPtr(99)}, DefaultOptions())
	assert.Equal(t, StatusEmpty, v.Status)
	assert.Equal(t, ModePoint, v.Mode)
}

func TestGroupOf(t *testing.T) {
	groups := []series.FeatureGroup{{Group: "engine"}, {Group: "nav"}}
	assert.Equal(t, "engine", GroupOf("engine_param_000", groups))
	assert.Equal(t, "", GroupOf("fuel_param_001", groups))
	assert.Equal(t, "fuel", GroupOf("fuel_param_001", nil))
	assert.Equal(t, "", GroupOf("nounderscore", groups))
}

func TestHeatmap_Downsample(t *testing.T) {
	m := series.FeatureMatrix{
		Features: []string{"a_x"},
		Time:     []int{0, 1, 2, 3, 4, 5},
		Losses:   [][]float64{{0, 2, 4, 6, 8, 10}},
	}
	opts := DefaultOptions()
	opts.HeatmapColumns = 3

	v := Heatmap(Loaded(m), cursor.Snapshot{Cursor: intPtr(3)}, opts)

	require.Equal(t, StatusReady, v.Status)
	assert.Equal(t, []HeatmapColumn{{0, 1}, {2, 3}, {4, 5}}, v.Columns)
	assert.Equal(t, [][]float64{{1, 5, 9}}, v.Cells)
	assert.Equal(t, 9.0, v.Max)
	assert.Equal(t, 1, v.CursorColumn)

	filtered := Heatmap(Loaded(m), cursor.Snapshot{TimeFilter: rng(4, 5)}, opts)
	assert.Equal(t, []HeatmapColumn{{4, 4}, {5, 5}}, filtered.Columns)
	assert.Equal(t, -1, filtered.CursorColumn)

	empty := Heatmap(Loaded(m), cursor.Snapshot{TimeFilter: rng(10, 20)}, opts)
	assert.Equal(t, StatusEmpty, empty.Status)
}

func TestDerive_MarshalsStatusNames(t *testing.T) {
	set := Derive(Inputs{
		Trajectory: Pending[series.Trajectory](),
		Losses:     Loaded(rampLosses(5)),
		Matrix:     Failed[series.FeatureMatrix](errors.NewMalformedSeriesError("feature-loss-matrix", "bad")),
	}, cursor.Snapshot{}, DefaultOptions())

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "loading", decoded["trajectory"]["status"])
	assert.Equal(t, "ready", decoded["loss"]["status"])
	assert.Equal(t, "failed", decoded["top_features"]["status"])
	assert.Equal(t, "failed", decoded["heatmap"]["status"])
}
