package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/series"
)

// DefaultTimeout bounds a single HTTP fetch when none is configured.
const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 64 << 20

// HTTP fetches series from a flightdash-compatible API:
// GET {base}/api/trajectory, /api/losses, /api/feature-loss-matrix and
// /api/features.
type HTTP struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTP returns an HTTP source for baseURL.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTP) Name() string { return string(KindHTTP) }

func (s *HTTP) Trajectory(ctx context.Context) (series.Trajectory, error) {
	data, err := s.get(ctx, series.NameTrajectory)
	if err != nil {
		return nil, err
	}
	return series.ParseTrajectory(data, series.FormatJSON)
}

func (s *HTTP) Losses(ctx context.Context) (series.LossSeries, error) {
	data, err := s.get(ctx, series.NameLosses)
	if err != nil {
		return nil, err
	}
	return series.ParseLosses(data, series.FormatJSON)
}

func (s *HTTP) FeatureMatrix(ctx context.Context) (series.FeatureMatrix, error) {
	data, err := s.get(ctx, series.NameMatrix)
	if err != nil {
		return series.FeatureMatrix{}, err
	}
	return series.ParseFeatureMatrix(data, series.FormatJSON)
}

func (s *HTTP) FeatureGroups(ctx context.Context) ([]series.FeatureGroup, error) {
	data, err := s.get(ctx, series.NameFeatures)
	if err != nil {
		return nil, err
	}
	return series.ParseFeatureGroups(data, series.FormatJSON)
}

func (s *HTTP) get(ctx context.Context, name string) ([]byte, error) {
	url := s.BaseURL + "/api/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewSourceError(s.Name(), name, err).WithRetryable(false)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.NewSourceError(s.Name(), name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.NewSourceError(s.Name(), name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewSourceError(s.Name(), name,
			fmt.Errorf("GET %s: %s", url, resp.Status)).
			WithRetryable(resp.StatusCode >= 500)
	}
	return body, nil
}
