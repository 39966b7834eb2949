package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/series"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{"default is mock", Options{}, "mock", false},
		{"mock", Options{Kind: KindMock, Seed: 3}, "mock", false},
		{"file", Options{Kind: KindFile, Dir: "/tmp/x"}, "file", false},
		{"file without dir", Options{Kind: KindFile}, "", true},
		{"http", Options{Kind: KindHTTP, URL: "http://localhost:1"}, "http", false},
		{"http without url", Options{Kind: KindHTTP}, "", true},
		{"unknown", Options{Kind: "carrier-pigeon"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, src.Name())
		})
	}
}

func TestMock_Shapes(t *testing.T) {
	ctx := context.Background()
	m := NewMock(42)

	tr, err := m.Trajectory(ctx)
	require.NoError(t, err)
	require.Len(t, tr, DefaultSteps)
	assert.InDelta(t, 0, tr[0].Alt, 1e-9, "starts on the ground")
	assert.InDelta(t, 0, tr[len(tr)-1].Alt, 1e-6, "lands")
	assert.InDelta(t, 30.0, tr[0].Lat, 0.5)
	assert.InDelta(t, -97.0, tr[0].Lon, 0.5)

	losses, err := m.Losses(ctx)
	require.NoError(t, err)
	require.Len(t, losses, DefaultSteps)
	for i, p := range losses {
		assert.Equal(t, i, p.T)
		assert.GreaterOrEqual(t, p.Value, 0.0)
	}

	mat, err := m.FeatureMatrix(ctx)
	require.NoError(t, err)
	require.Len(t, mat.Features, DefaultFeatures)
	require.Len(t, mat.Time, DefaultMatrixSteps)
	require.Len(t, mat.Losses, DefaultFeatures)
	for _, row := range mat.Losses {
		require.Len(t, row, DefaultMatrixSteps)
	}
	assert.Equal(t, "engine_param_000", mat.Features[0])
	assert.Equal(t, "nav_param_007", mat.Features[7])

	// Feature 0 sits in the first spike band.
	assert.Greater(t, mat.Losses[0][200], mat.Losses[1][200])

	groups, err := m.FeatureGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, len(Subsystems))
	assert.Equal(t, "engine subsystem", groups[0].Description)
}

func TestMock_Deterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewMock(7).Losses(ctx)
	require.NoError(t, err)
	b, err := NewMock(7).Losses(ctx)
	require.NoError(t, err)
	c, err := NewMock(8).Losses(ctx)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestMock_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMock(1).FeatureMatrix(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteDataset_RoundTripsThroughFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	want, err := Fetch(ctx, NewMock(5))
	require.NoError(t, err)
	require.NoError(t, WriteDataset(ctx, dir, want))

	got, err := Fetch(ctx, NewFile(dir))
	require.NoError(t, err)

	assert.Len(t, got.Trajectory, len(want.Trajectory))
	assert.InDelta(t, want.Trajectory[10].Alt, got.Trajectory[10].Alt, 1e-9)
	assert.Len(t, got.Losses, len(want.Losses))
	assert.InDelta(t, want.Losses[42].Value, got.Losses[42].Value, 1e-12)
	assert.Equal(t, want.Matrix.Features, got.Matrix.Features)
	assert.Equal(t, want.Groups, got.Groups)
}

func TestFile_YAMLAndMissing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	yamlLosses := "time: [0, 1, 2]\navg_loss: [0.1, 0.2, 0.3]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "losses.yaml"), []byte(yamlLosses), 0644))

	src := NewFile(dir)
	losses, err := src.Losses(ctx)
	require.NoError(t, err)
	require.Len(t, losses, 3)
	assert.InDelta(t, 0.3, losses[2].Value, 1e-12)

	_, err = src.Trajectory(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSourceUnavailable))
	assert.False(t, errors.IsRetryable(err))

	groups, err := src.FeatureGroups(ctx)
	assert.NoError(t, err, "features file is optional")
	assert.Empty(t, groups)
}

func TestFile_MalformedPayload(t *testing.T) {
	dir := t.TempDir()
	bad := `{"time":[0,1,2],"value":[0.1,0.2]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "losses.json"), []byte(bad), 0644))

	_, err := NewFile(dir).Losses(context.Background())
	var malformed *errors.MalformedSeriesError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, []int{3, 2}, malformed.Lengths)
}

func TestHTTP_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/losses", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"time":[0,1],"avgLoss":[0.5,0.25]}`))
	})
	mux.HandleFunc("/api/trajectory", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/api/features", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewHTTP(srv.URL+"/", 0)
	ctx := context.Background()

	losses, err := src.Losses(ctx)
	require.NoError(t, err)
	assert.Equal(t, series.LossSeries{{T: 0, Value: 0.5}, {T: 1, Value: 0.25}}, losses)

	_, err = src.Trajectory(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsRetryable(err), "5xx is retryable")

	_, err = src.FeatureGroups(ctx)
	require.Error(t, err)
	assert.False(t, errors.IsRetryable(err), "4xx is not retryable")
}
