package source

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/Iron-Ham/flightdash/internal/series"
)

// Default sizes of the synthetic dataset.
const (
	DefaultSteps        = 300
	DefaultFeatures     = 120
	DefaultMatrixSteps  = 600
	defaultSpikeRatio   = 0.07
	defaultOriginLat    = 30.0
	defaultOriginLon    = -97.0
	cruiseAltitudeFeet  = 10000.0
	cruiseOscillationFt = 700.0
)

// Subsystems are the feature groups of the synthetic matrix, in the order
// features cycle through them.
var Subsystems = []string{"engine", "nav", "airframe", "env", "elec", "control"}

// Mock generates a deterministic synthetic flight for a given seed.
//
// Each series draws from its own generator seeded from Seed, so concurrent
// calls are safe and repeated calls return identical data.
type Mock struct {
	Seed        int64
	Steps       int // trajectory and loss length
	Features    int
	MatrixSteps int
}

// NewMock returns a Mock with the default dataset shape.
func NewMock(seed int64) *Mock {
	return &Mock{
		Seed:        seed,
		Steps:       DefaultSteps,
		Features:    DefaultFeatures,
		MatrixSteps: DefaultMatrixSteps,
	}
}

func (m *Mock) Name() string { return string(KindMock) }

func (m *Mock) rng(stream int64) *rand.Rand {
	return rand.New(rand.NewSource(m.Seed*31 + stream))
}

// Trajectory returns a takeoff, cruise with altitude oscillation, banked
// turns and a descent, starting and ending on the ground near the origin.
func (m *Mock) Trajectory(ctx context.Context) (series.Trajectory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := m.Steps
	out := make(series.Trajectory, n)
	for i := range out {
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1)
		}

		var alt float64
		switch {
		case x < 0.15:
			alt = cruiseAltitudeFeet * math.Sin(math.Pi/2*(x/0.15))
		case x < 0.8:
			alt = cruiseAltitudeFeet + math.Sin(x*8*math.Pi)*cruiseOscillationFt
		default:
			alt = math.Max(0, cruiseAltitudeFeet*math.Cos(math.Pi/2*((x-0.8)/0.2)))
		}

		lat := defaultOriginLat +
			0.2*math.Sin(x*2*math.Pi) +
			0.05*math.Sin(x*10*math.Pi)
		lon := defaultOriginLon +
			0.4*math.Sin(x*math.Pi) +
			0.2*math.Sin(x*3*math.Pi) -
			0.1*math.Sin(x*12*math.Pi)

		out[i] = series.TrajectoryPoint{T: i, Lat: lat, Lon: lon, Alt: alt}
	}
	return out, nil
}

// Losses returns a smooth low loss with periodic bumps, a late upward drift
// and roughly 7% of points replaced by clear spikes.
func (m *Mock) Losses(ctx context.Context) (series.LossSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := m.rng(1)
	n := m.Steps

	spikes := make(map[int]bool)
	for k := 0; k < int(float64(n)*defaultSpikeRatio); k++ {
		spikes[r.Intn(max(n, 1))] = true
	}

	out := make(series.LossSeries, n)
	for i := range out {
		fi := float64(i)
		base := 0.02 + 0.01*math.Sin(fi/12) + 0.008*math.Cos(fi/7) + math.Max(0, (fi-240)/2000)
		v := base + (r.Float64()-0.5)*0.004
		if spikes[i] {
			v += 0.05 + r.Float64()*0.07
		}
		out[i] = series.LossPoint{T: i, Value: math.Max(0, v)}
	}
	return out, nil
}

// FeatureMatrix returns a banded features × time matrix with seasonal
// patterns, slow drift, noise and two localized spike bands.
func (m *Mock) FeatureMatrix(ctx context.Context) (series.FeatureMatrix, error) {
	if err := ctx.Err(); err != nil {
		return series.FeatureMatrix{}, err
	}
	r := m.rng(2)
	nf, nt := m.Features, m.MatrixSteps

	features := make([]string, nf)
	for f := range features {
		features[f] = FeatureName(f)
	}
	times := make([]int, nt)
	for t := range times {
		times[t] = t
	}

	losses := make([][]float64, nf)
	for f := range losses {
		if f%16 == 0 {
			if err := ctx.Err(); err != nil {
				return series.FeatureMatrix{}, err
			}
		}
		base := 0.01 + float64(f%7)*0.003
		freq := 0.02 + float64(f%9)*0.0015
		phase := float64((f * 17) % 63)
		amp := 0.15 + float64(f%5)*0.02

		row := make([]float64, nt)
		for t := range row {
			ft := float64(t)
			seasonal := math.Abs(math.Sin((ft+phase)*freq)) * amp
			drift := (math.Sin(ft*0.002+float64(f)*0.01) + 1) * 0.02
			noise := (r.Float64() - 0.5) * 0.01
			spike := 0.0
			if inSpikeBand(f, t) {
				spike = 0.25 + r.Float64()*0.1
			}
			row[t] = math.Max(0, base+seasonal+drift+spike+noise)
		}
		losses[f] = row
	}
	return series.FeatureMatrix{Features: features, Time: times, Losses: losses}, nil
}

func inSpikeBand(f, t int) bool {
	if t > 180 && t < 220 && f%8 == 0 {
		return true
	}
	return t > 420 && t < 440 && (f%11 == 3 || f%11 == 7)
}

// FeatureGroups returns one entry per subsystem.
func (m *Mock) FeatureGroups(ctx context.Context) ([]series.FeatureGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]series.FeatureGroup, len(Subsystems))
	for i, g := range Subsystems {
		out[i] = series.FeatureGroup{Group: g, Description: g + " subsystem"}
	}
	return out, nil
}

// FeatureName returns the synthetic name of feature f, e.g. "nav_param_007".
func FeatureName(f int) string {
	return fmt.Sprintf("%s_param_%03d", Subsystems[f%len(Subsystems)], f)
}
