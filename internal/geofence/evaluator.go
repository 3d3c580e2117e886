package geofence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// NotificationTitle is shown by sinks that support a title.
	NotificationTitle = "IP Location App"

	defaultFetchTimeout    = 4 * time.Second
	defaultDescribeTimeout = 3 * time.Second
)

// Evaluator runs one fetch -> load -> contain -> notify cycle per call to Run.
// It holds no state that is shared between cycles, so concurrent Runs are safe.
type Evaluator struct {
	coords    CoordinateSource
	fences    GeofenceSource
	notifier  Notifier
	policy    FetchFailurePolicy
	describer Describer
	recorder  Recorder
	observer  Observer
	logger    zerolog.Logger

	fetchTimeout time.Duration
	now          func() time.Time
}

// Option customises an Evaluator.
type Option func(*Evaluator)

// WithPolicy sets the fetch failure policy. Defaults to SentinelFallback.
func WithPolicy(p FetchFailurePolicy) Option {
	return func(e *Evaluator) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithDescriber enables reverse geocoding of the coordinate.
func WithDescriber(d Describer) Option {
	return func(e *Evaluator) { e.describer = d }
}

// WithRecorder stores each completed result.
func WithRecorder(r Recorder) Option {
	return func(e *Evaluator) { e.recorder = r }
}

// WithObserver reports cycle outcomes.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLogger overrides the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithFetchTimeout bounds the coordinate lookup.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.fetchTimeout = d
		}
	}
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(coords CoordinateSource, fences GeofenceSource, notifier Notifier, opts ...Option) *Evaluator {
	e := &Evaluator{
		coords:       coords,
		fences:       fences,
		notifier:     notifier,
		policy:       SentinelFallback{},
		observer:     noopObserver{},
		logger:       log.Logger,
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes a single cycle. Every failure is logged and resolved here;
// nothing propagates to the caller, including panics.
func (e *Evaluator) Run(ctx context.Context) {
	start := e.now()
	cycleID := uuid.NewString()
	logger := e.logger.With().Str("cycle_id", cycleID).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("op", "evaluate").Interface("panic", r).Msg("evaluation cycle panicked")
		}
	}()

	logger.Debug().Msg("evaluation cycle started")

	result, ok := e.evaluate(ctx, cycleID, logger)
	if !ok {
		return
	}

	if e.recorder != nil {
		e.recorder.SaveResult(result)
	}

	n := Notification{
		Title:   NotificationTitle,
		Message: Message(result),
		Result:  result,
	}
	if err := e.notify(ctx, n); err != nil {
		e.observer.NotifyFailed()
		logger.Error().Str("op", "notify").Err(err).Msg("notification was not delivered")
	}

	took := e.now().Sub(start)
	e.observer.CycleCompleted(result, took)
	logger.Info().
		Float64("lat", result.Coordinate.Latitude).
		Float64("lon", result.Coordinate.Longitude).
		Bool("inside", result.Inside).
		Bool("fallback", result.Fallback).
		Dur("duration", took).
		Msg("evaluation cycle completed")
}

func (e *Evaluator) evaluate(ctx context.Context, cycleID string, logger zerolog.Logger) (EvaluationResult, bool) {
	result := EvaluationResult{CycleID: cycleID}

	coord, err := e.fetchCoordinate(ctx)
	if err != nil {
		e.observer.CoordinateFailed()
		fallback, proceed := e.policy.OnFetchFailure(err)
		logger.Error().
			Str("op", "fetch_coordinate").
			Str("policy", e.policy.Name()).
			Bool("proceed", proceed).
			Err(err).
			Msg("failed to fetch coordinates")
		if !proceed {
			e.observer.CycleSkipped()
			return EvaluationResult{}, false
		}
		coord = fallback
		result.Fallback = true
	}
	result.Coordinate = coord

	fence, err := e.fences.LoadGeofence(ctx)
	if err != nil {
		e.observer.ConfigFailed()
		logger.Error().Str("op", "load_geofence").Err(err).Msg("failed to read geofence config; skipping cycle")
		return EvaluationResult{}, false
	}

	bounds := DeriveBounds(fence)
	if bounds.Inverted() {
		logger.Warn().
			Interface("bounds", bounds).
			Msg("geofence bounds are inverted; no coordinate can be inside")
	}
	logger.Debug().Interface("bounds", bounds).Msg("geofence bounds derived")

	result.Bounds = bounds
	result.Inside = bounds.Contains(coord)
	result.EvaluatedAt = e.now().UTC()

	if e.describer != nil && !result.Fallback {
		result.Place = e.describe(ctx, coord, logger)
	}

	return result, true
}

func (e *Evaluator) fetchCoordinate(ctx context.Context) (Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	c, err := e.coords.FetchCoordinate(ctx)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %w", ErrCoordinateFetch, err)
	}
	return c, nil
}

func (e *Evaluator) describe(ctx context.Context, c Coordinate, logger zerolog.Logger) string {
	ctx, cancel := context.WithTimeout(ctx, defaultDescribeTimeout)
	defer cancel()

	place, err := e.describer.Describe(ctx, c)
	if err != nil {
		logger.Warn().Str("op", "describe").Err(err).Msg("reverse geocoding failed")
		return ""
	}
	return place
}

func (e *Evaluator) notify(ctx context.Context, n Notification) (err error) {
	if e.notifier == nil {
		return fmt.Errorf("%w: no notifier configured", ErrNotification)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: notifier panicked: %v", ErrNotification, r)
		}
	}()
	if err := e.notifier.Notify(ctx, n); err != nil {
		return fmt.Errorf("%w: %w", ErrNotification, err)
	}
	return nil
}

type noopObserver struct{}

func (noopObserver) CoordinateFailed()                              {}
func (noopObserver) ConfigFailed()                                  {}
func (noopObserver) NotifyFailed()                                  {}
func (noopObserver) CycleSkipped()                                  {}
func (noopObserver) CycleCompleted(EvaluationResult, time.Duration) {}
