package numeric

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Iron-Ham/flightdash/internal/series"
)

const (
	earthRadiusM = 6371008.8
	feetToMeters = 0.3048
)

// Vec3 is a 3D vector in a local east/north/up frame.
type Vec3 [3]float64

// Norm returns the Euclidean length.
func (v Vec3) Norm() float64 { return floats.Norm(v[:], 2) }

// Dot returns the dot product.
func (v Vec3) Dot(u Vec3) float64 { return floats.Dot(v[:], u[:]) }

// Unit returns v scaled to length 1 and false when v has zero length.
func Unit(v Vec3) (Vec3, bool) {
	n := v.Norm()
	if n == 0 || math.IsNaN(n) {
		return Vec3{}, false
	}
	return Vec3{v[0] / n, v[1] / n, v[2] / n}, true
}

// TurnAngle returns the angle in [0, π] between two unit directions. The dot
// product is clamped to [-1, 1] before acos to absorb floating-point drift.
func TurnAngle(u, v Vec3) float64 {
	d := math.Max(-1, math.Min(1, u.Dot(v)))
	return math.Acos(d)
}

// Displacement returns the local ENU displacement in meters from a to b using
// an equirectangular approximation at the mean latitude. Altitude is in feet.
func Displacement(a, b series.TrajectoryPoint) Vec3 {
	toRad := math.Pi / 180
	midLat := (a.Lat + b.Lat) / 2 * toRad
	east := (b.Lon - a.Lon) * toRad * math.Cos(midLat) * earthRadiusM
	north := (b.Lat - a.Lat) * toRad * earthRadiusM
	up := (b.Alt - a.Alt) * feetToMeters
	return Vec3{east, north, up}
}

// TurnAngles returns, for every trajectory index, the angle between the
// incoming and outgoing flight directions. Indices 0 and n-1 have no
// incoming/outgoing segment and are 0; so are points where either segment
// has zero length.
func TurnAngles(tr series.Trajectory) []float64 {
	out := make([]float64, len(tr))
	for i := 1; i < len(tr)-1; i++ {
		in, okIn := Unit(Displacement(tr[i-1], tr[i]))
		outDir, okOut := Unit(Displacement(tr[i], tr[i+1]))
		if okIn && okOut {
			out[i] = TurnAngle(in, outDir)
		}
	}
	return out
}

// ManeuverScores smooths TurnAngles with a rolling mean of the given radius.
// The window never includes index 0 or n-1, where turns are undefined.
func ManeuverScores(tr series.Trajectory, radius int) []float64 {
	turns := TurnAngles(tr)
	scores := make([]float64, len(turns))
	if len(turns) < 3 {
		return scores
	}
	for i := range turns {
		scores[i] = RollingMean(turns, i, radius, 1, len(turns)-2)
	}
	return scores
}
