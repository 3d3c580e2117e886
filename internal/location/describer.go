package location

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

var (
	errNoAddress     = errors.New("no address found")
	errLookupPending = errors.New("previous reverse geocoding lookup still pending")
)

// reverseFunc matches geocoder.GeocodingReverse.
type reverseFunc func(geocoder.Location) ([]geocoder.Address, error)

var apiKeyOnce sync.Once

// GoogleDescriber reverse-geocodes coordinates via the Google Geocoding API.
// At most one lookup runs at a time: the underlying client has no timeout,
// so an abandoned lookup keeps its goroutine until the API answers.
type GoogleDescriber struct {
	reverse reverseFunc
	pending atomic.Bool
}

// NewGoogleDescriber configures the geocoder package with apiKey.
// The key is process-wide in the underlying package, so only the first call sets it.
func NewGoogleDescriber(apiKey string) *GoogleDescriber {
	apiKeyOnce.Do(func() {
		geocoder.ApiKey = apiKey
	})
	return &GoogleDescriber{reverse: geocoder.GeocodingReverse}
}

// Describe implements geofence.Describer. The lookup itself cannot be
// cancelled; ctx only bounds how long we wait for it. While an earlier
// lookup is still running Describe fails fast with errLookupPending.
func (d *GoogleDescriber) Describe(ctx context.Context, c geofence.Coordinate) (string, error) {
	if !d.pending.CompareAndSwap(false, true) {
		return "", errLookupPending
	}

	type result struct {
		place string
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer d.pending.Store(false)
		addresses, err := d.reverse(geocoder.Location{Latitude: c.Latitude, Longitude: c.Longitude})
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{place: formatAddress(addresses)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if r.place == "" {
			return "", errNoAddress
		}
		return r.place, nil
	}
}

func formatAddress(addresses []geocoder.Address) string {
	if len(addresses) == 0 {
		return ""
	}
	a := addresses[0]
	if a.FormattedAddress != "" {
		return a.FormattedAddress
	}

	var parts []string
	for _, p := range []string{a.City, a.State, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
