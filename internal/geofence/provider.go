package geofence

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCoordinateFetch marks a failure to acquire the current position.
	ErrCoordinateFetch = errors.New("coordinate fetch failed")
	// ErrConfigLoad marks a missing or invalid geofence configuration.
	ErrConfigLoad = errors.New("geofence config load failed")
	// ErrNotification marks a failure to deliver a notification.
	ErrNotification = errors.New("notification failed")
)

// CoordinateSource abstracts a position provider (e.g. IP geolocation).
type CoordinateSource interface {
	FetchCoordinate(ctx context.Context) (Coordinate, error)
}

// GeofenceSource abstracts where the geofence corners come from.
// Implementations must not cache: the configuration may change between cycles.
type GeofenceSource interface {
	LoadGeofence(ctx context.Context) (Geofence, error)
}

// Notifier delivers the result of a cycle to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Describer turns a coordinate into a place name. Optional.
type Describer interface {
	Describe(ctx context.Context, c Coordinate) (string, error)
}

// Recorder keeps the latest result around for the status API.
type Recorder interface {
	SaveResult(r EvaluationResult)
}

// Observer receives cycle outcomes, typically for metrics.
type Observer interface {
	CoordinateFailed()
	ConfigFailed()
	NotifyFailed()
	CycleSkipped()
	CycleCompleted(r EvaluationResult, took time.Duration)
}
