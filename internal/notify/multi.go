package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

// Sink is a named geofence.Notifier.
type Sink interface {
	geofence.Notifier
	Name() string
}

// Multi fans a notification out to every sink. One failing sink does not
// prevent delivery to the others.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a fan-out over sinks.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Notify(ctx context.Context, n geofence.Notification) error {
	if len(m.sinks) == 0 {
		return errors.New("no notification sinks configured")
	}

	var errs []error
	for _, s := range m.sinks {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
