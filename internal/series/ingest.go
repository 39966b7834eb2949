package series

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/flightdash/internal/errors"
)

// Format is the encoding of a raw payload.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// Series names used in error context.
const (
	NameTrajectory = "trajectory"
	NameLosses     = "losses"
	NameMatrix     = "feature-loss-matrix"
	NameFeatures   = "features"
)

// lossValueKeys are the accepted names for the loss value column/field, in
// lookup order.
var lossValueKeys = []string{"value", "avgLoss", "avg_loss", "loss"}

// Decode unmarshals a payload into generic maps/slices.
func Decode(data []byte, format Format) (any, error) {
	var v any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &v)
	default:
		err = json.Unmarshal(data, &v)
	}
	return v, err
}

func decodeFor(name string, data []byte, format Format) (any, error) {
	v, err := Decode(data, format)
	if err != nil {
		return nil, errors.NewMalformedSeriesError(name, "decode failed").WithCause(err)
	}
	return v, nil
}

// ParseLosses decodes and normalizes a loss payload.
func ParseLosses(data []byte, format Format) (LossSeries, error) {
	v, err := decodeFor(NameLosses, data, format)
	if err != nil {
		return nil, err
	}
	return NormalizeLosses(v)
}

// ParseTrajectory decodes and normalizes a trajectory payload.
func ParseTrajectory(data []byte, format Format) (Trajectory, error) {
	v, err := decodeFor(NameTrajectory, data, format)
	if err != nil {
		return nil, err
	}
	return NormalizeTrajectory(v)
}

// ParseFeatureMatrix decodes and normalizes a feature-loss-matrix payload.
func ParseFeatureMatrix(data []byte, format Format) (FeatureMatrix, error) {
	v, err := decodeFor(NameMatrix, data, format)
	if err != nil {
		return FeatureMatrix{}, err
	}
	return NormalizeFeatureMatrix(v)
}

// ParseFeatureGroups decodes a feature group payload of the form
// {"groups": [{group, color, description}]} or a bare list.
func ParseFeatureGroups(data []byte, format Format) ([]FeatureGroup, error) {
	v, err := decodeFor(NameFeatures, data, format)
	if err != nil {
		return nil, err
	}
	if obj, ok := v.(map[string]any); ok {
		v = obj["groups"]
	}
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, errors.NewMalformedSeriesError(NameFeatures, "expected a list of groups")
	}
	groups := make([]FeatureGroup, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.NewMalformedSeriesError(NameFeatures, fmt.Sprintf("group %d is not an object", i))
		}
		g := FeatureGroup{}
		g.Group, _ = obj["group"].(string)
		g.Color, _ = obj["color"].(string)
		g.Description, _ = obj["description"].(string)
		if g.Group == "" {
			return nil, errors.NewMalformedSeriesError(NameFeatures, fmt.Sprintf("group %d has no name", i))
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// lossShape tags which variant of the loss payload union was received.
type lossShape int

const (
	lossShapeUnknown lossShape = iota
	lossShapeRows
	lossShapeColumns
)

func classifyLoss(v any) lossShape {
	switch v.(type) {
	case []any:
		return lossShapeRows
	case map[string]any:
		return lossShapeColumns
	default:
		return lossShapeUnknown
	}
}

// NormalizeLosses converts either the row form [{t, value}] or the columnar
// form {time: [...], value: [...]} into a LossSeries ordered by t.
func NormalizeLosses(v any) (LossSeries, error) {
	switch classifyLoss(v) {
	case lossShapeRows:
		return lossesFromRows(v.([]any))
	case lossShapeColumns:
		return lossesFromColumns(v.(map[string]any))
	default:
		return nil, errors.NewMalformedSeriesError(NameLosses, fmt.Sprintf("unsupported payload type %T", v))
	}
}

func lossesFromRows(rows []any) (LossSeries, error) {
	out := make(LossSeries, 0, len(rows))
	for i, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			return nil, errors.NewMalformedSeriesError(NameLosses, fmt.Sprintf("row %d is not an object", i))
		}
		t := i
		if raw, ok := obj["t"]; ok {
			f, ok := toFloat(raw)
			if !ok {
				return nil, errors.NewMalformedSeriesError(NameLosses, fmt.Sprintf("row %d has non-numeric t", i))
			}
			t = int(f)
		}
		val, ok := lookupNumber(obj, lossValueKeys)
		if !ok {
			return nil, errors.NewMalformedSeriesError(NameLosses, fmt.Sprintf("row %d has no numeric value", i))
		}
		out = append(out, LossPoint{T: t, Value: val})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].T < out[b].T })
	return out, nil
}

func lossesFromColumns(obj map[string]any) (LossSeries, error) {
	var values []any
	for _, key := range lossValueKeys {
		if col, ok := obj[key].([]any); ok {
			values = col
			break
		}
	}
	if values == nil {
		return nil, errors.NewMalformedSeriesError(NameLosses, "columnar payload has no value column")
	}

	var times []any
	if col, ok := obj["time"]; ok {
		times, ok = col.([]any)
		if !ok {
			return nil, errors.NewMalformedSeriesError(NameLosses, "time column is not a list")
		}
		if len(times) != len(values) {
			return nil, errors.NewMalformedSeriesError(NameLosses, "time and value columns differ in length").
				WithLengths(len(times), len(values))
		}
	}

	out := make(LossSeries, len(values))
	for i, raw := range values {
		val, ok := toFloat(raw)
		if !ok {
			return nil, errors.NewMalformedSeriesError(NameLosses, fmt.Sprintf("value %d is not numeric", i))
		}
		t := i
		if times != nil {
			f, ok := toFloat(times[i])
			if !ok {
				return nil, errors.NewMalformedSeriesError(NameLosses, fmt.Sprintf("time %d is not numeric", i))
			}
			t = int(f)
		}
		out[i] = LossPoint{T: t, Value: val}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].T < out[b].T })
	return out, nil
}

// NormalizeTrajectory converts [{t, lat, lon, alt}] into a Trajectory ordered by t.
func NormalizeTrajectory(v any) (Trajectory, error) {
	rows, ok := v.([]any)
	if !ok {
		return nil, errors.NewMalformedSeriesError(NameTrajectory, fmt.Sprintf("expected a list, got %T", v))
	}
	out := make(Trajectory, 0, len(rows))
	for i, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			return nil, errors.NewMalformedSeriesError(NameTrajectory, fmt.Sprintf("point %d is not an object", i))
		}
		p := TrajectoryPoint{T: i}
		if raw, ok := obj["t"]; ok {
			f, ok := toFloat(raw)
			if !ok || !isFinite(f) {
				return nil, errors.NewMalformedSeriesError(NameTrajectory, fmt.Sprintf("point %d has non-numeric t", i))
			}
			p.T = int(f)
		}
		for key, dst := range map[string]*float64{"lat": &p.Lat, "lon": &p.Lon, "alt": &p.Alt} {
			f, ok := toFloat(obj[key])
			if !ok {
				return nil, errors.NewMalformedSeriesError(NameTrajectory, fmt.Sprintf("point %d has no numeric %s", i, key))
			}
			if !isFinite(f) {
				return nil, errors.NewMalformedSeriesError(NameTrajectory, fmt.Sprintf("point %d has non-finite %s", i, key))
			}
			*dst = f
		}
		if p.Lat < -90 || p.Lat > 90 {
			return nil, errors.NewMalformedSeriesError(NameTrajectory, fmt.Sprintf("point %d latitude %g outside [-90, 90]", i, p.Lat))
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].T < out[b].T })
	return out, nil
}

// NormalizeFeatureMatrix converts {features, time, losses} into a
// FeatureMatrix. losses may be a list of rows or an object keyed by feature
// index. Every row must align with time.
func NormalizeFeatureMatrix(v any) (FeatureMatrix, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return FeatureMatrix{}, errors.NewMalformedSeriesError(NameMatrix, fmt.Sprintf("expected an object, got %T", v))
	}

	rawFeatures, _ := obj["features"].([]any)
	features := make([]string, len(rawFeatures))
	for i, f := range rawFeatures {
		name, ok := f.(string)
		if !ok {
			return FeatureMatrix{}, errors.NewMalformedSeriesError(NameMatrix, fmt.Sprintf("feature %d is not a string", i))
		}
		features[i] = name
	}

	rawTime, _ := obj["time"].([]any)
	times := make([]int, len(rawTime))
	for i, t := range rawTime {
		f, ok := toFloat(t)
		if !ok {
			return FeatureMatrix{}, errors.NewMalformedSeriesError(NameMatrix, fmt.Sprintf("time %d is not numeric", i))
		}
		times[i] = int(f)
	}

	rows, err := matrixRows(obj["losses"], len(features))
	if err != nil {
		return FeatureMatrix{}, err
	}
	if len(rows) != len(features) {
		return FeatureMatrix{}, errors.NewMalformedSeriesError(NameMatrix, "feature and loss row counts differ").
			WithLengths(len(features), len(rows))
	}

	losses := make([][]float64, len(rows))
	for f, row := range rows {
		if len(row) != len(times) {
			return FeatureMatrix{}, errors.NewMalformedSeriesError(NameMatrix,
				fmt.Sprintf("row %q is not aligned with time", features[f])).WithLengths(len(times), len(row))
		}
		losses[f] = make([]float64, len(row))
		for t, raw := range row {
			val, ok := toFloat(raw)
			if !ok {
				return FeatureMatrix{}, errors.NewMalformedSeriesError(NameMatrix,
					fmt.Sprintf("row %q value %d is not numeric", features[f], t))
			}
			losses[f][t] = val
		}
	}

	return FeatureMatrix{Features: features, Time: times, Losses: losses}, nil
}

func matrixRows(v any, nFeatures int) ([][]any, error) {
	switch rows := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([][]any, len(rows))
		for i, r := range rows {
			row, ok := r.([]any)
			if !ok {
				return nil, errors.NewMalformedSeriesError(NameMatrix, fmt.Sprintf("loss row %d is not a list", i))
			}
			out[i] = row
		}
		return out, nil
	case map[string]any:
		out := make([][]any, len(rows))
		for key, r := range rows {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= nFeatures || idx >= len(out) {
				return nil, errors.NewMalformedSeriesError(NameMatrix, fmt.Sprintf("loss key %q is not a feature index", key))
			}
			row, ok := r.([]any)
			if !ok {
				return nil, errors.NewMalformedSeriesError(NameMatrix, fmt.Sprintf("loss row %q is not a list", key))
			}
			out[idx] = row
		}
		return out, nil
	case map[any]any:
		// YAML decodes integer keys into a generic map.
		keyed := make(map[string]any, len(rows))
		for key, r := range rows {
			keyed[fmt.Sprint(key)] = r
		}
		return matrixRows(keyed, nFeatures)
	default:
		return nil, errors.NewMalformedSeriesError(NameMatrix, fmt.Sprintf("unsupported losses type %T", v))
	}
}

func lookupNumber(obj map[string]any, keys []string) (float64, bool) {
	for _, key := range keys {
		if raw, ok := obj[key]; ok {
			return toFloat(raw)
		}
	}
	return 0, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
