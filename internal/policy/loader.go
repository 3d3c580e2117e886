// Package policy loads the geofence definition from config-policy.json.
package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

// FileName is the policy file looked up next to the executable.
const FileName = "config-policy.json"

var validate = validator.New()

// document mirrors the on-disk layout. Points and their fields are pointers
// so a missing corner or coordinate is reported instead of reading as 0.
type document struct {
	Geofence *fenceDoc `json:"geofence" validate:"required"`
}

type fenceDoc struct {
	PointA *pointDoc `json:"pointA" validate:"required"`
	PointB *pointDoc `json:"pointB" validate:"required"`
	PointC *pointDoc `json:"pointC" validate:"required"`
	PointD *pointDoc `json:"pointD" validate:"required"`
}

type pointDoc struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

func (p *pointDoc) toPoint() geofence.GeofencePoint {
	return geofence.GeofencePoint{Latitude: *p.Latitude, Longitude: *p.Longitude}
}

// FileSource reads the geofence from a JSON file on every call.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// DefaultPath returns config-policy.json in the directory of the running executable.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}

// Path returns the file this source reads.
func (s *FileSource) Path() string {
	return s.path
}

// LoadGeofence implements geofence.GeofenceSource. All failures wrap geofence.ErrConfigLoad.
func (s *FileSource) LoadGeofence(ctx context.Context) (geofence.Geofence, error) {
	if err := ctx.Err(); err != nil {
		return geofence.Geofence{}, fmt.Errorf("%w: %w", geofence.ErrConfigLoad, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return geofence.Geofence{}, fmt.Errorf("%w: %w", geofence.ErrConfigLoad, err)
	}

	return Parse(data)
}

// Parse decodes and validates a policy document.
func Parse(data []byte) (geofence.Geofence, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return geofence.Geofence{}, fmt.Errorf("%w: decode %s: %w", geofence.ErrConfigLoad, FileName, err)
	}

	if err := validate.Struct(doc); err != nil {
		return geofence.Geofence{}, fmt.Errorf("%w: validate %s: %w", geofence.ErrConfigLoad, FileName, err)
	}

	return geofence.Geofence{
		PointA: doc.Geofence.PointA.toPoint(),
		PointB: doc.Geofence.PointB.toPoint(),
		PointC: doc.Geofence.PointC.toPoint(),
		PointD: doc.Geofence.PointD.toPoint(),
	}, nil
}
