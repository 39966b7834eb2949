package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestSeriesName(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/data/losses.json", "losses", true},
		{"/data/trajectory.yaml", "trajectory", true},
		{"/data/feature-loss-matrix.YML", "feature-loss-matrix", true},
		{"/data/features.json", "features", true},
		{"/data/notes.json", "notes", false},
		{"/data/losses.csv", "", false},
		{"/data/.losses.json.swp", "", false},
		{"/data/losses.json~", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := seriesName(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("seriesName(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("seriesName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestWatcher_NewRejectsMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), 0, nil)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.Start()
	w.Stop()
	w.Stop()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("watch loop did not exit")
	}
}

type countingRefresher struct{ n atomic.Int32 }

func (c *countingRefresher) Refresh(context.Context) error {
	c.n.Add(1)
	return nil
}

func TestWatcher_DebouncesAndRefreshes(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Stop()

	batches := make(chan []string, 4)
	w.SetChangeCallback(func(names []string) { batches <- names })
	w.Start()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "losses.json"), []byte("[]"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case names := <-batches:
		if len(names) != 1 || names[0] != "losses" {
			t.Errorf("batch = %v, want [losses]", names)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	r := &countingRefresher{}
	RefreshOnChange(context.Background(), w, r)
	if err := os.WriteFile(filepath.Join(dir, "trajectory.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.n.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if r.n.Load() == 0 {
		t.Fatal("refresh was not triggered")
	}
}
