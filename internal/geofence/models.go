package geofence

import (
	"time"
)

// Coordinate is a position reported by a location source.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeofencePoint is one of the four labelled corner markers of a Geofence.
type GeofencePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geofence is a region described by four labelled corners.
// The corners are not required to form an axis-aligned rectangle; see DeriveBounds.
type Geofence struct {
	PointA GeofencePoint `json:"pointA"`
	PointB GeofencePoint `json:"pointB"`
	PointC GeofencePoint `json:"pointC"`
	PointD GeofencePoint `json:"pointD"`
}

// Bounds is the axis-aligned box derived from a Geofence for a single cycle.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// EvaluationResult is the outcome of one evaluation cycle.
type EvaluationResult struct {
	CycleID     string     `json:"cycleId"`
	Coordinate  Coordinate `json:"coordinate"`
	Bounds      Bounds     `json:"bounds"`
	Inside      bool       `json:"inside"`
	Fallback    bool       `json:"fallback"` // coordinate is the sentinel, not a real fix
	Place       string     `json:"place,omitempty"`
	EvaluatedAt time.Time  `json:"evaluatedAt"` // always UTC
}

// Notification is what gets handed to a Notifier at the end of a cycle.
type Notification struct {
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Result  EvaluationResult `json:"result"`
}
