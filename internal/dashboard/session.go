// Package dashboard wires a data source, the shared cursor store, the fetch
// tracker and the view adapters into one interactive session.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/flightdash/internal/cursor"
	"github.com/Iron-Ham/flightdash/internal/errors"
	"github.com/Iron-Ham/flightdash/internal/event"
	"github.com/Iron-Ham/flightdash/internal/fetch"
	"github.com/Iron-Ham/flightdash/internal/logging"
	"github.com/Iron-Ham/flightdash/internal/numeric"
	"github.com/Iron-Ham/flightdash/internal/series"
	"github.com/Iron-Ham/flightdash/internal/source"
	"github.com/Iron-Ham/flightdash/internal/view"
)

// Fetch keys, one per raw series.
const (
	KeyTrajectory = series.NameTrajectory
	KeyLosses     = series.NameLosses
	KeyMatrix     = series.NameMatrix
	KeyGroups     = series.NameFeatures

	// keyLoad tracks whole loads so only the newest one discovers domains.
	keyLoad = "load"
)

// Domains used when a series cannot provide one.
var (
	FallbackTimeDomain     = series.Range{Min: 0, Max: 0}
	FallbackAltitudeDomain = series.Range{Min: 0, Max: 1000}
)

// Session is one dashboard: a source, a store and the latest raw series.
type Session struct {
	ID        string
	CreatedAt time.Time

	src     source.Source
	store   *cursor.Store
	bus     *event.Bus
	tracker *fetch.Tracker
	opts    view.Options
	timeout time.Duration
	logger  *logging.Logger

	mu          sync.RWMutex
	inputs      view.Inputs
	initialized bool
}

// Config holds the optional parameters of a Session.
type Config struct {
	Options view.Options
	// Timeout bounds each individual fetch; zero means no limit.
	Timeout time.Duration
	Logger  *logging.Logger
}

// NewSession creates a session over src. Nothing is fetched until Load.
func NewSession(src source.Source, cfg Config) *Session {
	id := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithSession(id).WithSource(src.Name())

	bus := event.NewBus(logger)
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		src:       src,
		bus:       bus,
		store:     cursor.New(bus, logger),
		tracker:   fetch.NewTracker(bus, logger),
		opts:      cfg.Options,
		timeout:   cfg.Timeout,
		logger:    logger,
		inputs: view.Inputs{
			Trajectory: view.Pending[series.Trajectory](),
			Losses:     view.Pending[series.LossSeries](),
			Matrix:     view.Pending[series.FeatureMatrix](),
		},
	}
	return s
}

// Store returns the session's cursor/filter store.
func (s *Session) Store() *cursor.Store { return s.store }

// Bus returns the session's event bus.
func (s *Session) Bus() *event.Bus { return s.bus }

// Source returns the session's data source.
func (s *Session) Source() source.Source { return s.src }

// Options returns the view options.
func (s *Session) Options() view.Options { return s.opts }

// Controls returns the control-panel operations bound to this session.
func (s *Session) Controls() *Controls { return &Controls{store: s.store} }

// Inputs returns the latest raw series.
func (s *Session) Inputs() view.Inputs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputs
}

// Views derives every pane from the latest raw series and the current store
// snapshot.
func (s *Session) Views() view.Set {
	return view.Derive(s.Inputs(), s.store.Snapshot(), s.opts)
}

// ViewsFor derives views for q applied to a scratch copy of the store, so
// the session's own cursor and filters are left untouched.
func (s *Session) ViewsFor(q Query) view.Set {
	base := s.store.Snapshot()
	scratch := cursor.New(nil, s.logger)
	if base.TimeDomain != nil {
		scratch.SetDomain(series.DimTime, *base.TimeDomain)
	}
	if base.AltDomain != nil {
		scratch.SetDomain(series.DimAltitude, *base.AltDomain)
	}
	scratch.SetTimeFilter(base.TimeFilter)
	scratch.SetAltitudeFilter(base.AltitudeFilter)
	scratch.SetCursor(base.Cursor)
	q.Apply(scratch)
	return view.Derive(s.Inputs(), scratch.Snapshot(), s.opts)
}

// Load fetches all series in parallel, then discovers the time and altitude
// domains. A failed series leaves its view in the failed state; Load only
// returns an error when ctx was cancelled. Results superseded by a later
// Load are dropped.
func (s *Session) Load(ctx context.Context) error {
	start := time.Now()
	loadTok := s.tracker.Begin(keyLoad)
	p := pool.New().WithContext(ctx)

	p.Go(func(ctx context.Context) error {
		tr, err := load(ctx, s, KeyTrajectory, s.src.Trajectory)
		s.apply(KeyTrajectory, err, func(in *view.Inputs) { in.Trajectory = result(tr, err) }, len(tr))
		return staleOK(err)
	})
	p.Go(func(ctx context.Context) error {
		ls, err := load(ctx, s, KeyLosses, s.src.Losses)
		s.apply(KeyLosses, err, func(in *view.Inputs) { in.Losses = result(ls, err) }, len(ls))
		return staleOK(err)
	})
	p.Go(func(ctx context.Context) error {
		m, err := load(ctx, s, KeyMatrix, s.src.FeatureMatrix)
		s.apply(KeyMatrix, err, func(in *view.Inputs) { in.Matrix = result(m, err) }, len(m.Features))
		return staleOK(err)
	})
	p.Go(func(ctx context.Context) error {
		groups, err := load(ctx, s, KeyGroups, s.src.FeatureGroups)
		if err == nil {
			s.mu.Lock()
			s.inputs.Groups = groups
			s.mu.Unlock()
		} else if !errors.IsStale(err) {
			s.logger.Warn("feature groups unavailable", "error", err.Error())
		}
		return nil
	})

	// Per-series failures are already recorded on the inputs.
	if err := p.Wait(); err != nil {
		s.logger.Warn("partial load", "error", err.Error())
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "load session %s", s.ID)
	}
	if !s.tracker.IsCurrent(loadTok) {
		// A newer load owns domain discovery; this one's inputs may be pending.
		s.logger.Debug("load superseded", "generation", loadTok.Generation)
		return nil
	}

	s.discoverDomains()
	s.logger.Info("session loaded", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Refresh re-fetches every series and re-discovers the domains. Committed
// filters are re-clamped into the new domains.
func (s *Session) Refresh(ctx context.Context) error {
	s.logger.Debug("refreshing session")
	return s.Load(ctx)
}

// Close cancels any in-flight fetches.
func (s *Session) Close() {
	s.tracker.CancelAll()
	s.bus.Clear()
}

func load[T any](ctx context.Context, s *Session, key string, fn func(context.Context) (T, error)) (T, error) {
	return fetch.Run(ctx, s.tracker, key, func(ctx context.Context) (T, error) {
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		return fn(ctx)
	})
}

func result[T any](v T, err error) view.Raw[T] {
	if err != nil {
		return view.Failed[T](err)
	}
	return view.Loaded(v)
}

func staleOK(err error) error {
	if err == nil || errors.IsStale(err) {
		return nil
	}
	return err
}

// apply records a finished fetch unless it was superseded.
func (s *Session) apply(key string, err error, set func(*view.Inputs), points int) {
	if errors.IsStale(err) || errors.Is(err, context.Canceled) {
		return
	}

	s.mu.Lock()
	set(&s.inputs)
	s.mu.Unlock()

	log := s.logger.WithView(key)
	if err != nil {
		log.Error("fetch failed", "error", err.Error(), "retryable", errors.IsRetryable(err))
		s.bus.Publish(event.NewDataFailedEvent(key, errors.UserMessage(err)))
		return
	}
	log.Debug("fetch complete", "points", points)
	s.bus.Publish(event.NewDataLoadedEvent(key, points))
}

// discoverDomains derives the time domain from the loss length and the
// altitude domain from the trajectory. Fallbacks apply only when no domain
// is known yet. On the first load the filters start equal to the domains and
// the cursor starts at the midpoint of the time domain.
func (s *Session) discoverDomains() {
	in := s.Inputs()
	snap := s.store.Snapshot()

	timeDom, timeOK := series.Range{}, false
	if in.Losses.Err == nil && in.Losses.Fetched {
		timeDom, timeOK = in.Losses.Value.TimeDomain()
	}
	altDom, altErr := numeric.DomainOf(in.Trajectory.Value.Altitudes())
	altOK := in.Trajectory.Err == nil && altErr == nil

	switch {
	case timeOK:
		s.store.SetDomain(series.DimTime, timeDom)
	case snap.TimeDomain == nil:
		s.store.SetDomain(series.DimTime, FallbackTimeDomain)
	}
	switch {
	case altOK:
		s.store.SetDomain(series.DimAltitude, altDom)
	case snap.AltDomain == nil:
		s.store.SetDomain(series.DimAltitude, FallbackAltitudeDomain)
	}

	s.mu.Lock()
	first := !s.initialized
	s.initialized = true
	s.mu.Unlock()

	if first {
		s.store.InitFromDomain(series.DimTime)
		s.store.InitFromDomain(series.DimAltitude)
		if after := s.store.Snapshot(); after.Cursor == nil && after.TimeDomain != nil {
			s.store.Select(after.TimeDomain.Midpoint())
		}
		return
	}

	// Re-commit existing filters so they are clamped into refreshed domains.
	after := s.store.Snapshot()
	if after.TimeFilter != nil {
		s.store.SetTimeFilter(after.TimeFilter)
	}
	if after.AltitudeFilter != nil {
		s.store.SetAltitudeFilter(after.AltitudeFilter)
	}
}
