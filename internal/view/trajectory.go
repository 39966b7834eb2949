package view

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/numeric"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// Home box padding: a fraction of each span, never less than minPadDegrees.
const (
	padFraction   = 0.15
	minPadDegrees = 0.05
)

// TrajectoryPoint is a visible sample with its smoothed turn intensity.
type TrajectoryPoint struct {
	series.TrajectoryPoint
	Maneuver float64 `json:"maneuver"`
}

// Bounds is a geographic rectangle in degrees. West may exceed East when the
// rectangle crosses the anti-meridian.
type Bounds struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// CrossesAntimeridian reports whether the box wraps past ±180°.
func (b Bounds) CrossesAntimeridian() bool { return b.West > b.East }

// TrajectoryView is the derived flight-path pane.
type TrajectoryView struct {
	Status   Status            `json:"status"`
	Error    string            `json:"error,omitempty"`
	Points   []TrajectoryPoint `json:"points"`
	Selected *TrajectoryPoint  `json:"selected,omitempty"`
	Home     *Bounds           `json:"home,omitempty"`
	// TrackMeters is the great-circle length of the visible path.
	TrackMeters float64 `json:"track_meters"`
	Total       int     `json:"total"`
}

// Trajectory filters the path by time and altitude. The selected point is
// raw[cursor] only when it passes both filters.
func Trajectory(raw Raw[series.Trajectory], snap cursor.Snapshot, opts Options) TrajectoryView {
	status, msg, ok := baseStatus(raw, func(tr series.Trajectory) bool { return len(tr) == 0 })
	if !ok {
		return TrajectoryView{Status: status, Error: msg}
	}

	tr := raw.Value
	scores := numeric.ManeuverScores(tr, opts.ManeuverRadius)
	passes := func(p series.TrajectoryPoint) bool {
		return series.InFilter(snap.TimeFilter, float64(p.T)) && series.InFilter(snap.AltitudeFilter, p.Alt)
	}

	v := TrajectoryView{Total: len(tr)}
	for i, p := range tr {
		if passes(p) {
			v.Points = append(v.Points, TrajectoryPoint{TrajectoryPoint: p, Maneuver: scores[i]})
		}
	}

	if c := snap.Cursor; c != nil && *c >= 0 && *c < len(tr) && passes(tr[*c]) {
		v.Selected = &TrajectoryPoint{TrajectoryPoint: tr[*c], Maneuver: scores[*c]}
	}

	homeOver := tr
	if len(v.Points) > 0 {
		homeOver = make(series.Trajectory, len(v.Points))
		for i, p := range v.Points {
			homeOver[i] = p.TrajectoryPoint
		}
	}
	v.Home = HomeBounds(homeOver)
	v.TrackMeters = TrackLength(v.Points)

	if len(v.Points) == 0 {
		v.Status = StatusEmpty
	} else {
		v.Status = StatusReady
	}
	return v
}

// HomeBounds returns the padded rectangle framing tr, or nil for an empty
// path. Longitudes are normalized to (-180, 180]; when the path spans more
// than 180° of longitude it is measured on [0, 360) so the box wraps the
// anti-meridian instead of covering the globe.
func HomeBounds(tr series.Trajectory) *Bounds {
	if len(tr) == 0 {
		return nil
	}

	mp := make(orb.MultiPoint, len(tr))
	for i, p := range tr {
		mp[i] = orb.Point{normalizeLon(p.Lon), p.Lat}
	}
	b := mp.Bound()

	if b.Max.Lon()-b.Min.Lon() > 180 {
		shifted := make(orb.MultiPoint, len(mp))
		for i, p := range mp {
			if p.Lon() < 0 {
				p[0] += 360
			}
			shifted[i] = p
		}
		b = shifted.Bound()
	}

	latPad := math.Max(minPadDegrees, (b.Max.Lat()-b.Min.Lat())*padFraction)
	lonPad := math.Max(minPadDegrees, (b.Max.Lon()-b.Min.Lon())*padFraction)

	return &Bounds{
		West:  normalizeLon(b.Min.Lon() - lonPad),
		East:  normalizeLon(b.Max.Lon() + lonPad),
		South: math.Max(-90, b.Min.Lat()-latPad),
		North: math.Min(90, b.Max.Lat()+latPad),
	}
}

// TrackLength sums great-circle distances between consecutive points.
func TrackLength(points []TrajectoryPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = orb.Point{p.Lon, p.Lat}
	}
	return geo.Length(ls)
}

// normalizeLon wraps lon into (-180, 180]. Non-finite input yields NaN.
func normalizeLon(lon float64) float64 {
	l := math.Mod(lon+180, 360)
	if l <= 0 {
		l += 360
	}
	return l - 180
}
