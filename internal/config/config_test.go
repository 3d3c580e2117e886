package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LOCATION_API_URL", "LOCATION_TIMEOUT", "FETCH_FAILURE_POLICY", "GEOCODER_API_KEY",
		"NOTIFY_SINKS", "RABBITMQ_URL", "MQTT_BROKER", "MQTT_CLIENT_ID", "MQTT_TOPIC",
		"LOG_LEVEL", "LOG_FORMAT", "PORT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://ipinfo.io/json", cfg.LocationURL)
	assert.Equal(t, 3*time.Second, cfg.LocationTimeout)
	assert.Equal(t, "sentinel", cfg.FetchFailurePolicy)
	assert.Equal(t, []string{SinkLog}, cfg.NotifySinks)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOCATION_TIMEOUT", "1500ms")
	t.Setenv("FETCH_FAILURE_POLICY", "SKIP")
	t.Setenv("NOTIFY_SINKS", "log, mqtt")
	t.Setenv("PORT", "off")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1500*time.Millisecond, cfg.LocationTimeout)
	assert.Equal(t, "skip", cfg.FetchFailurePolicy)
	assert.Equal(t, []string{SinkLog, SinkMQTT}, cfg.NotifySinks)
	assert.Empty(t, cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"LOCATION_TIMEOUT":     "soon",
		"FETCH_FAILURE_POLICY": "retry",
		"NOTIFY_SINKS":         "log,toast",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_NegativeTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOCATION_TIMEOUT", "-1s")

	_, err := Load()
	assert.Error(t, err)
}
