package notify

import (
	"encoding/json"
	"time"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

// EventType is the status carried by published events.
type EventType string

const (
	EventInside  EventType = "geofence_inside"
	EventOutside EventType = "geofence_outside"
)

// event is the JSON body published to brokers.
type event struct {
	CycleID   string    `json:"cycle_id"`
	Event     EventType `json:"event"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Fallback  bool      `json:"fallback"`
	Place     string    `json:"place,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

func encodeEvent(n geofence.Notification) ([]byte, error) {
	ev := event{
		CycleID:   n.Result.CycleID,
		Event:     EventOutside,
		Title:     n.Title,
		Message:   n.Message,
		Latitude:  n.Result.Coordinate.Latitude,
		Longitude: n.Result.Coordinate.Longitude,
		Fallback:  n.Result.Fallback,
		Place:     n.Result.Place,
		Timestamp: n.Result.EvaluatedAt.Unix(),
	}
	if n.Result.Inside {
		ev.Event = EventInside
	}
	if n.Result.EvaluatedAt.IsZero() {
		ev.Timestamp = time.Now().Unix()
	}
	return json.Marshal(ev)
}
