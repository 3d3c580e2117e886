package policy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

const validPolicy = `{
  "geofence": {
    "pointA": {"latitude": 10, "longitude": 10},
    "pointB": {"latitude": 20, "longitude": 10},
    "pointC": {"latitude": 20, "longitude": 20},
    "pointD": {"latitude": 10, "longitude": 20}
  }
}`

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadGeofence_Valid(t *testing.T) {
	src := NewFileSource(writePolicy(t, validPolicy))

	g, err := src.LoadGeofence(context.Background())
	require.NoError(t, err)

	assert.Equal(t, geofence.GeofencePoint{Latitude: 10, Longitude: 10}, g.PointA)
	assert.Equal(t, geofence.GeofencePoint{Latitude: 20, Longitude: 10}, g.PointB)
	assert.Equal(t, geofence.GeofencePoint{Latitude: 20, Longitude: 20}, g.PointC)
	assert.Equal(t, geofence.GeofencePoint{Latitude: 10, Longitude: 20}, g.PointD)
}

func TestLoadGeofence_ExplicitZeroIsValid(t *testing.T) {
	content := `{
  "geofence": {
    "pointA": {"latitude": 0, "longitude": 0},
    "pointB": {"latitude": 1, "longitude": 0},
    "pointC": {"latitude": 0, "longitude": 1},
    "pointD": {"latitude": 1, "longitude": 1}
  }
}`

	g, err := NewFileSource(writePolicy(t, content)).LoadGeofence(context.Background())
	require.NoError(t, err)
	assert.Equal(t, geofence.GeofencePoint{}, g.PointA)
	assert.Equal(t, geofence.GeofencePoint{Latitude: 1, Longitude: 1}, g.PointD)
}

func TestLoadGeofence_ReadsFreshEachCall(t *testing.T) {
	path := writePolicy(t, validPolicy)
	src := NewFileSource(path)

	_, err := src.LoadGeofence(context.Background())
	require.NoError(t, err)

	updated := strings.Replace(validPolicy, `"pointA": {"latitude": 10`, `"pointA": {"latitude": 12`, 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	g, err := src.LoadGeofence(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12.0, g.PointA.Latitude)
}

func TestLoadGeofence_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"geofence": {"pointA": `},
		{"missing geofence", `{}`},
		{"missing corner", `{"geofence": {"pointA": {"latitude": 1, "longitude": 1}, "pointB": {"latitude": 1, "longitude": 1}, "pointC": {"latitude": 1, "longitude": 1}}}`},
		{"latitude out of range", strings.Replace(validPolicy, `"latitude": 20, "longitude": 20`, `"latitude": 91, "longitude": 20`, 1)},
		{"longitude out of range", strings.Replace(validPolicy, `"latitude": 10, "longitude": 20`, `"latitude": 10, "longitude": -181`, 1)},
		{"wrong type", `{"geofence": {"pointA": {"latitude": "north"}}}`},
		{"missing latitude", strings.Replace(validPolicy, `"pointB": {"latitude": 20, "longitude": 10}`, `"pointB": {"longitude": 10}`, 1)},
		{"missing longitude", strings.Replace(validPolicy, `"pointC": {"latitude": 20, "longitude": 20}`, `"pointC": {"latitude": 20}`, 1)},
		{"null latitude", strings.Replace(validPolicy, `"pointD": {"latitude": 10`, `"pointD": {"latitude": null`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileSource(writePolicy(t, tt.content)).LoadGeofence(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, geofence.ErrConfigLoad)
		})
	}
}

func TestLoadGeofence_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.json"))

	_, err := src.LoadGeofence(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, geofence.ErrConfigLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadGeofence_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSource(writePolicy(t, validPolicy)).LoadGeofence(ctx)
	assert.ErrorIs(t, err, geofence.ErrConfigLoad)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultPath(t *testing.T) {
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, FileName, filepath.Base(p))
}
