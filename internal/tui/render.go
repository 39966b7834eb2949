package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/numeric"
	"github.com/Iron-Ham/flightdash/internal/series"
	"github.com/Iron-Ham/flightdash/internal/tui/styles"
	"github.com/Iron-Ham/flightdash/internal/util"
	"github.com/Iron-Ham/flightdash/internal/view"
)

// sparkLevels are the glyphs for a one-row bar chart, lowest first.
var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// heatGlyphs shade heatmap cells from coldest to hottest.
var heatGlyphs = []rune(" ░▒▓█")

// bucketMax folds values into at most width buckets, keeping each bucket's
// maximum so spikes survive downsampling. It also returns the bucket of
// every input index.
func bucketMax(values []float64, width int) ([]float64, []int) {
	n := len(values)
	if n == 0 || width <= 0 {
		return nil, nil
	}
	if width > n {
		width = n
	}
	out := make([]float64, width)
	for i := range out {
		out[i] = math.Inf(-1)
	}
	idx := make([]int, n)
	for i, v := range values {
		b := i * width / n
		idx[i] = b
		out[b] = math.Max(out[b], v)
	}
	return out, idx
}

// level maps v within [lo, hi] onto 0..steps-1.
func level(v, lo, hi float64, steps int) int {
	if hi <= lo || math.IsNaN(v) {
		return 0
	}
	l := int((v - lo) / (hi - lo) * float64(steps-1))
	return max(0, min(l, steps-1))
}

// sparkline renders values as one row of bar glyphs no wider than width.
func sparkline(values []float64, width int) []rune {
	buckets, _ := bucketMax(values, width)
	if len(buckets) == 0 {
		return nil
	}
	dom := numeric.DomainOr(buckets, series.Range{})
	out := make([]rune, len(buckets))
	for i, v := range buckets {
		out[i] = sparkLevels[level(v, dom.Min, dom.Max, len(sparkLevels))]
	}
	return out
}

// statusLine renders the placeholder for a pane that is not ready. The
// second result is false for ready panes.
func statusLine(st *styles.Styles, status view.Status, msg string) (string, bool) {
	switch status {
	case view.StatusLoading:
		return st.Loading.Render("loading…"), true
	case view.StatusNoData:
		return st.NoData.Render("no data"), true
	case view.StatusEmpty:
		return st.Empty.Render("no points in the current filter"), true
	case view.StatusFailed:
		return st.Failed.Render("failed: " + msg), true
	}
	return "", false
}

func formatRange(r *series.Range, unit string) string {
	if r == nil {
		return "all"
	}
	return fmt.Sprintf("%g–%g%s", r.Min, r.Max, unit)
}

func formatCursor(c *int) string {
	if c == nil {
		return "none"
	}
	return fmt.Sprintf("t=%d", *c)
}

// renderSummary renders the shared store state.
func renderSummary(st *styles.Styles, snap cursor.Snapshot) string {
	parts := []string{
		st.Muted.Render("cursor ") + st.Cursor.Render(formatCursor(snap.Cursor)),
		st.Muted.Render("time ") + st.Text.Render(formatRange(snap.TimeFilter, "")),
		st.Muted.Render("alt ") + st.Text.Render(formatRange(snap.AltitudeFilter, " ft")),
	}
	return strings.Join(parts, st.Muted.Render("  │  "))
}

// renderTrajectory renders the flight-path pane as an altitude profile plus
// path statistics.
func renderTrajectory(st *styles.Styles, v view.TrajectoryView, width int) string {
	if line, ok := statusLine(st, v.Status, v.Error); ok {
		return line
	}

	alts := make([]float64, len(v.Points))
	for i, p := range v.Points {
		alts[i] = p.Alt
	}

	var b strings.Builder
	b.WriteString(st.Text.Render(string(sparkline(alts, width))))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d/%d  %s %.1f km\n",
		st.Muted.Render("points"), len(v.Points), v.Total,
		st.Muted.Render("track"), v.TrackMeters/1000)
	if h := v.Home; h != nil {
		fmt.Fprintf(&b, "%s %.3f,%.3f → %.3f,%.3f",
			st.Muted.Render("home"), h.South, h.West, h.North, h.East)
		if h.CrossesAntimeridian() {
			b.WriteString(st.Muted.Render(" (wraps ±180°)"))
		}
		b.WriteString("\n")
	}
	if s := v.Selected; s != nil {
		b.WriteString(st.Cursor.Render(fmt.Sprintf("t=%d  %.4f, %.4f  %.0f ft  turn %.3f",
			s.T, s.Lat, s.Lon, s.Alt, s.Maneuver)))
	} else {
		b.WriteString(st.Muted.Render("no selected point"))
	}
	return b.String()
}

// renderLoss renders the loss pane as a sparkline with outlier buckets and
// the cursor bucket highlighted.
func renderLoss(st *styles.Styles, v view.LossView, width int) string {
	if line, ok := statusLine(st, v.Status, v.Error); ok {
		return line
	}

	values := series.LossSeries(v.Points).Values()
	buckets, idx := bucketMax(values, width)
	dom := numeric.DomainOr(buckets, series.Range{})
	cursorBucket := -1
	if v.Selected != nil {
		for i, p := range v.Points {
			if p.T == v.Selected.T {
				cursorBucket = idx[i]
				break
			}
		}
	}

	var b strings.Builder
	for i, val := range buckets {
		glyph := string(sparkLevels[level(val, dom.Min, dom.Max, len(sparkLevels))])
		switch {
		case i == cursorBucket:
			b.WriteString(st.Cursor.Render(glyph))
		case val >= v.Threshold:
			b.WriteString(st.Outlier.Render(glyph))
		default:
			b.WriteString(st.Text.Render(glyph))
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %.4f  %s %d/%d\n",
		st.Muted.Render("threshold"), v.Threshold,
		st.Muted.Render("outliers"), len(v.Outliers), len(v.Points))
	if s := v.Selected; s != nil {
		style := st.Cursor
		if s.Value >= v.Threshold {
			style = st.Outlier
		}
		b.WriteString(style.Render(fmt.Sprintf("t=%d  loss %.4f", s.T, s.Value)))
	} else {
		b.WriteString(st.Muted.Render("no selected point"))
	}
	return b.String()
}

// renderTopFeatures renders the ranked contributors as horizontal bars.
func renderTopFeatures(st *styles.Styles, v view.TopFeaturesView, width int) string {
	if line, ok := statusLine(st, v.Status, v.Error); ok {
		return line
	}

	var b strings.Builder
	if v.Mode == view.ModePoint && v.Cursor != nil {
		b.WriteString(st.Subtitle.Render(fmt.Sprintf("at t=%d", *v.Cursor)))
	} else {
		b.WriteString(st.Subtitle.Render("mean over " + formatRange(v.Window, "")))
	}
	b.WriteString("\n")

	peak := v.Other
	for _, f := range v.Top {
		peak = math.Max(peak, f.Value)
	}

	const labelWidth, valueWidth = 26, 9
	barWidth := max(1, width-labelWidth-valueWidth-2)
	row := func(label string, value float64, style lipgloss.Style) {
		n := 0
		if peak > 0 {
			n = int(math.Round(value / peak * float64(barWidth)))
		}
		fmt.Fprintf(&b, "%-*s %s%s %*.4f\n",
			labelWidth, util.TruncateString(label, labelWidth),
			style.Render(strings.Repeat("█", n)), strings.Repeat(" ", barWidth-n),
			valueWidth, value)
	}
	for _, f := range v.Top {
		label := f.Feature
		if f.Group != "" {
			label = f.Group + "/" + f.Feature
		}
		row(label, f.Value, st.Heat(safeDiv(f.Value, peak)))
	}
	if v.OtherCount > 0 {
		row(fmt.Sprintf("other (%d)", v.OtherCount), v.Other, st.Muted)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderHeatmap renders up to rows features of the heatmap with a marker
// over the cursor column.
func renderHeatmap(st *styles.Styles, v view.HeatmapView, rows, width int) string {
	if line, ok := statusLine(st, v.Status, v.Error); ok {
		return line
	}

	const labelWidth = 18
	cols := min(len(v.Columns), max(1, width-labelWidth-1))

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth+1))
	for c := range cols {
		if c == v.CursorColumn {
			b.WriteString(st.Cursor.Render("▼"))
		} else {
			b.WriteString(" ")
		}
	}
	b.WriteString("\n")

	n := len(v.Features)
	if rows > 0 {
		n = min(n, rows)
	}
	for f := range n {
		fmt.Fprintf(&b, "%-*s ", labelWidth, util.TruncateString(v.Features[f], labelWidth))
		for c := range cols {
			norm := safeDiv(v.Cells[f][c], v.Max)
			glyph := string(heatGlyphs[level(norm, 0, 1, len(heatGlyphs))])
			b.WriteString(st.Heat(norm).Render(glyph))
		}
		b.WriteString("\n")
	}
	if hidden := len(v.Features) - n; hidden > 0 {
		b.WriteString(st.Muted.Render(fmt.Sprintf("… %d more features", hidden)))
		b.WriteString("\n")
	}
	first, last := v.Columns[0], v.Columns[cols-1]
	b.WriteString(st.Muted.Render(fmt.Sprintf("t=%d … t=%d  max %.4f", first.Start, last.End, v.Max)))
	return b.String()
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

