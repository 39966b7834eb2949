// Package source provides the raw series the dashboard renders: a seeded
// synthetic generator, a directory of JSON/YAML files, and a remote HTTP API
// serving the same endpoints as the serve command.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/flightdash/internal/series"
)

// Source fetches the dashboard's four raw series. Implementations must be
// safe for concurrent use; the session fetches series in parallel.
type Source interface {
	Name() string
	Trajectory(ctx context.Context) (series.Trajectory, error)
	Losses(ctx context.Context) (series.LossSeries, error)
	FeatureMatrix(ctx context.Context) (series.FeatureMatrix, error)
	FeatureGroups(ctx context.Context) ([]series.FeatureGroup, error)
}

// Kind names a source implementation in configuration.
type Kind string

const (
	KindMock Kind = "mock"
	KindFile Kind = "file"
	KindHTTP Kind = "http"
)

// ValidKinds returns all recognized source kinds.
func ValidKinds() []string {
	return []string{string(KindMock), string(KindFile), string(KindHTTP)}
}

// Options selects and parameterizes a Source.
type Options struct {
	Kind    Kind
	Seed    int64
	Dir     string
	URL     string
	Timeout time.Duration
}

// New builds the Source described by opts.
func New(opts Options) (Source, error) {
	switch opts.Kind {
	case KindMock, "":
		return NewMock(opts.Seed), nil
	case KindFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file source requires a directory")
		}
		return NewFile(opts.Dir), nil
	case KindHTTP:
		if opts.URL == "" {
			return nil, fmt.Errorf("http source requires a url")
		}
		return NewHTTP(opts.URL, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", opts.Kind)
	}
}
