package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// Dataset is a fully loaded set of raw series.
type Dataset struct {
	Trajectory series.Trajectory
	Losses     series.LossSeries
	Matrix     series.FeatureMatrix
	Groups     []series.FeatureGroup
}

// lossFile is the columnar layout written for losses.
type lossFile struct {
	Time    []int     `json:"time"`
	AvgLoss []float64 `json:"avgLoss"`
}

type groupsFile struct {
	Groups []series.FeatureGroup `json:"groups"`
}

// Fetch loads every series from src concurrently. The first failure cancels
// the remaining fetches.
func Fetch(ctx context.Context, src Source) (Dataset, error) {
	var ds Dataset
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Trajectory, err = src.Trajectory(ctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Losses, err = src.Losses(ctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Matrix, err = src.FeatureMatrix(ctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Groups, err = src.FeatureGroups(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// WriteDataset writes ds into dir as the JSON files a File source reads.
// Files are written concurrently.
func WriteDataset(ctx context.Context, dir string, ds Dataset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create dataset directory")
	}

	times := make([]int, len(ds.Losses))
	for i, p := range ds.Losses {
		times[i] = p.T
	}

	files := map[string]any{
		series.NameTrajectory: ds.Trajectory,
		series.NameLosses:     lossFile{Time: times, AvgLoss: ds.Losses.Values()},
		series.NameMatrix:     ds.Matrix,
		series.NameFeatures:   groupsFile{Groups: ds.Groups},
	}

	g, ctx := errgroup.WithContext(ctx)
	for name, payload := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return errors.Wrapf(err, "encode %s", name)
			}
			path := filepath.Join(dir, name+".json")
			if err := os.WriteFile(path, data, 0644); err != nil {
				return errors.Wrapf(err, "write %s", path)
			}
			return nil
		})
	}
	return g.Wait()
}
