// Package notify contains the notification sinks a cycle result can be sent to.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

// LogNotifier writes notifications as structured log lines.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier writing to logger.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(_ context.Context, msg geofence.Notification) error {
	n.logger.Info().
		Str("title", msg.Title).
		Str("cycle_id", msg.Result.CycleID).
		Bool("inside", msg.Result.Inside).
		Bool("fallback", msg.Result.Fallback).
		Msg(msg.Message)
	return nil
}
