package geofence

import (
	"math"
	"strconv"
)

// DeriveBounds computes the bounding box of g using a fixed corner pairing:
//
//	minLat = min(A.lat, C.lat)    maxLat = max(B.lat, D.lat)
//	minLon = min(A.lon, B.lon)    maxLon = max(C.lon, D.lon)
//
// This is not a min/max over all four corners. With the usual
// A=bottom-left, B=top-left, C=top-right, D=bottom-right layout it can
// yield unexpected bounds; the pairing is kept as-is and never normalised,
// so operators must supply corners that match it. See Bounds.Inverted.
func DeriveBounds(g Geofence) Bounds {
	return Bounds{
		MinLat: math.Min(g.PointA.Latitude, g.PointC.Latitude),
		MaxLat: math.Max(g.PointB.Latitude, g.PointD.Latitude),
		MinLon: math.Min(g.PointA.Longitude, g.PointB.Longitude),
		MaxLon: math.Max(g.PointC.Longitude, g.PointD.Longitude),
	}
}

// Contains reports whether c lies within b, inclusive on all four edges.
// An inverted box contains nothing.
func (b Bounds) Contains(c Coordinate) bool {
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLon && c.Longitude <= b.MaxLon
}

// Inverted reports whether either axis has min greater than max.
func (b Bounds) Inverted() bool {
	return b.MinLat > b.MaxLat || b.MinLon > b.MaxLon
}

// Message renders the human-readable text for a result.
func Message(r EvaluationResult) string {
	status := "is outside geofence"
	if r.Inside {
		status = "is within geofence"
	}

	msg := "Latitude: " + formatDegrees(r.Coordinate.Latitude) +
		", Longitude: " + formatDegrees(r.Coordinate.Longitude) + " " + status
	if r.Place != "" {
		msg += " (" + r.Place + ")"
	}
	return msg
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
