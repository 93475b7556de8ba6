package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"UPSTREAM_BASE_URL", "HTTP_ADDR", "SHUTDOWN_TIMEOUT", "CORS_ORIGINS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "https://bakereserve-api.onrender.com/api", cfg.UpstreamBaseURL)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("UPSTREAM_BASE_URL", "http://api.local/api/ ")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.Equal(t, "http://api.local/api", cfg.UpstreamBaseURL)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestFromEnvInvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")

	_, err := FromEnv()
	require.Error(t, err)
}
