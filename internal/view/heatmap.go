package view

import (
	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/numeric"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// HeatmapColumn is a bucket of consecutive time steps, inclusive.
type HeatmapColumn struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// HeatmapView is the derived features × time pane, downsampled to at most
// Options.HeatmapColumns columns.
type HeatmapView struct {
	Status   Status          `json:"status"`
	Error    string          `json:"error,omitempty"`
	Features []string        `json:"features"`
	Columns  []HeatmapColumn `json:"columns"`
	// Cells[f][c] is the mean loss of feature f over column c.
	Cells [][]float64 `json:"cells"`
	Max   float64     `json:"max"`
	// CursorColumn is the column holding the cursor, or -1.
	CursorColumn int `json:"cursor_column"`
}

// Heatmap downsamples the matrix window selected by the time filter into
// bucket means.
func Heatmap(raw Raw[series.FeatureMatrix], snap cursor.Snapshot, opts Options) HeatmapView {
	status, msg, ok := baseStatus(raw, func(m series.FeatureMatrix) bool { return m.Empty() })
	if !ok {
		return HeatmapView{Status: status, Error: msg, CursorColumn: -1}
	}

	m := raw.Value
	v := HeatmapView{Features: m.Features, CursorColumn: -1}
	cols := windowColumns(m.Time, snap.TimeFilter)
	if len(cols) == 0 {
		v.Status = StatusEmpty
		return v
	}

	n := len(cols)
	if opts.HeatmapColumns > 0 && opts.HeatmapColumns < n {
		n = opts.HeatmapColumns
	}

	buckets := make([][]int, n)
	for b := range buckets {
		lo := b * len(cols) / n
		hi := (b + 1) * len(cols) / n
		buckets[b] = cols[lo:hi]
		v.Columns = append(v.Columns, HeatmapColumn{
			Start: m.Time[cols[lo]],
			End:   m.Time[cols[hi-1]],
		})
	}

	v.Cells = make([][]float64, len(m.Features))
	var buf []float64
	for f := range m.Features {
		row := make([]float64, n)
		for b, bucket := range buckets {
			buf = buf[:0]
			for _, col := range bucket {
				buf = append(buf, m.Losses[f][col])
			}
			row[b] = numeric.Mean(buf)
			v.Max = max(v.Max, row[b])
		}
		v.Cells[f] = row
	}

	if c := snap.Cursor; c != nil {
		for b, col := range v.Columns {
			if *c >= col.Start && *c <= col.End {
				v.CursorColumn = b
				break
			}
		}
	}

	v.Status = StatusReady
	return v
}
