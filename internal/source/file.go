package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// extensions are tried in order when locating a series file.
var extensions = []struct {
	ext    string
	format series.Format
}{
	{".json", series.FormatJSON},
	{".yaml", series.FormatYAML},
	{".yml", series.FormatYAML},
}

// File reads series from a directory containing trajectory, losses,
// feature-loss-matrix and (optionally) features files in JSON or YAML.
type File struct {
	Dir string
}

// NewFile returns a File source rooted at dir.
func NewFile(dir string) *File {
	return &File{Dir: dir}
}

func (s *File) Name() string { return string(KindFile) }

// Trajectory reads trajectory.{json,yaml,yml}.
func (s *File) Trajectory(ctx context.Context) (series.Trajectory, error) {
	data, format, err := s.read(ctx, series.NameTrajectory)
	if err != nil {
		return nil, err
	}
	return series.ParseTrajectory(data, format)
}

// Losses reads losses.{json,yaml,yml}.
func (s *File) Losses(ctx context.Context) (series.LossSeries, error) {
	data, format, err := s.read(ctx, series.NameLosses)
	if err != nil {
		return nil, err
	}
	return series.ParseLosses(data, format)
}

// FeatureMatrix reads feature-loss-matrix.{json,yaml,yml}.
func (s *File) FeatureMatrix(ctx context.Context) (series.FeatureMatrix, error) {
	data, format, err := s.read(ctx, series.NameMatrix)
	if err != nil {
		return series.FeatureMatrix{}, err
	}
	return series.ParseFeatureMatrix(data, format)
}

// FeatureGroups reads features.{json,yaml,yml}. A missing file yields no
// groups rather than an error.
func (s *File) FeatureGroups(ctx context.Context) ([]series.FeatureGroup, error) {
	data, format, err := s.read(ctx, series.NameFeatures)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return series.ParseFeatureGroups(data, format)
}

// Path returns the first existing file for name, or "" if none exists.
func (s *File) Path(name string) (string, series.Format) {
	for _, e := range extensions {
		p := filepath.Join(s.Dir, name+e.ext)
		if _, err := os.Stat(p); err == nil {
			return p, e.format
		}
	}
	return "", series.FormatJSON
}

func (s *File) read(ctx context.Context, name string) ([]byte, series.Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	path, format := s.Path(name)
	if path == "" {
		return nil, 0, errors.NewSourceError(s.Name(), name,
			errors.Wrapf(fs.ErrNotExist, "no %s file in %s", name, s.Dir)).WithRetryable(false)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errors.NewSourceError(s.Name(), name, err)
	}
	return data, format, nil
}
