// Package location resolves the host's approximate position.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

// DefaultIPInfoURL is the IP geolocation endpoint used when none is configured.
const DefaultIPInfoURL = "https://ipinfo.io/json"

// ErrMalformedLoc is returned when the "loc" field is not "lat,lon".
var ErrMalformedLoc = errors.New("malformed loc field")

// IPInfoProvider implements geofence.CoordinateSource using ipinfo.io.
type IPInfoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewIPInfoProvider creates a provider. An empty baseURL selects DefaultIPInfoURL.
// The client should carry an explicit Timeout.
func NewIPInfoProvider(client *http.Client, baseURL string) *IPInfoProvider {
	if baseURL == "" {
		baseURL = DefaultIPInfoURL
	}
	return &IPInfoProvider{
		name:    "ipinfo",
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("ipinfo"),
	}
}

func (p *IPInfoProvider) Name() string {
	return p.name
}

// ipInfoResponse holds the only field we use from the ipinfo payload.
type ipInfoResponse struct {
	Loc string `json:"loc"`
}

// FetchCoordinate performs a single lookup; it does not retry.
func (p *IPInfoProvider) FetchCoordinate(ctx context.Context) (geofence.Coordinate, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return geofence.Coordinate{}, fmt.Errorf("%s: %w", p.name, err)
	}
	defer resp.Body.Close()

	var payload ipInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return geofence.Coordinate{}, fmt.Errorf("%s: decode response: %w", p.name, err)
	}

	c, err := ParseLoc(payload.Loc)
	if err != nil {
		return geofence.Coordinate{}, fmt.Errorf("%s: %w", p.name, err)
	}
	return c, nil
}

// ParseLoc parses a "lat,lon" string. Non-finite or out-of-range values are rejected.
func ParseLoc(loc string) (geofence.Coordinate, error) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return geofence.Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedLoc, loc)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geofence.Coordinate{}, fmt.Errorf("%w: latitude %q: %v", ErrMalformedLoc, parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geofence.Coordinate{}, fmt.Errorf("%w: longitude %q: %v", ErrMalformedLoc, parts[1], err)
	}

	if !validDegrees(lat, 90) || !validDegrees(lon, 180) {
		return geofence.Coordinate{}, fmt.Errorf("%w: %q out of range", ErrMalformedLoc, loc)
	}

	return geofence.Coordinate{Latitude: lat, Longitude: lon}, nil
}

func validDegrees(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -limit && v <= limit
}
