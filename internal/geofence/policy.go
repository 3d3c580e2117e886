package geofence

import "fmt"

// FetchFailurePolicy decides what a cycle does when the coordinate fetch fails.
// It returns the coordinate to continue with and whether to continue at all.
type FetchFailurePolicy interface {
	Name() string
	OnFetchFailure(err error) (Coordinate, bool)
}

// SentinelFallback substitutes (0,0) and lets the cycle finish.
// The sentinel will almost always read as "outside"; results produced this
// way are flagged with EvaluationResult.Fallback.
type SentinelFallback struct{}

func (SentinelFallback) Name() string { return "sentinel" }

func (SentinelFallback) OnFetchFailure(error) (Coordinate, bool) {
	return Coordinate{Latitude: 0, Longitude: 0}, true
}

// SkipCycle abandons the cycle; no notification is sent.
type SkipCycle struct{}

func (SkipCycle) Name() string { return "skip" }

func (SkipCycle) OnFetchFailure(error) (Coordinate, bool) {
	return Coordinate{}, false
}

// PolicyByName resolves a policy from its configuration name.
func PolicyByName(name string) (FetchFailurePolicy, error) {
	switch name {
	case "", "sentinel":
		return SentinelFallback{}, nil
	case "skip":
		return SkipCycle{}, nil
	default:
		return nil, fmt.Errorf("unknown fetch failure policy %q", name)
	}
}
