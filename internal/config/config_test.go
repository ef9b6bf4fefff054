package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointAwayFromConfigFile keeps a developer's local config.yaml from
// leaking into the test.
func pointAwayFromConfigFile(t *testing.T) {
	t.Helper()
	t.Setenv("MARKETLENS_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoad_Defaults(t *testing.T) {
	pointAwayFromConfigFile(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(33554432), cfg.Upload.MaxSizeBytes)
	assert.Equal(t, 10, cfg.Upload.TopN)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 50.0, cfg.Security.RateLimit.RPS)
	assert.Equal(t, 25, cfg.Security.RateLimit.Burst)
	assert.Equal(t, ":8080", cfg.ListenAddr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	pointAwayFromConfigFile(t)
	t.Setenv("MARKETLENS_SERVER_PORT", "9090")
	t.Setenv("MARKETLENS_LOGGING_LEVEL", "debug")
	t.Setenv("MARKETLENS_UPLOAD_TOP_N", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Upload.TopN)
	assert.Equal(t, ":9090", cfg.ListenAddr())
}

func TestLoad_ConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 3000\nlogging:\n  level: warn\n  format: text\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("MARKETLENS_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		wants string
	}{
		{
			name:  "invalid port",
			env:   map[string]string{"MARKETLENS_SERVER_PORT": "70000"},
			wants: "invalid server port",
		},
		{
			name:  "invalid log level",
			env:   map[string]string{"MARKETLENS_LOGGING_LEVEL": "verbose"},
			wants: "invalid log level",
		},
		{
			name:  "invalid log format",
			env:   map[string]string{"MARKETLENS_LOGGING_FORMAT": "xml"},
			wants: "invalid log format",
		},
		{
			name:  "invalid upload size",
			env:   map[string]string{"MARKETLENS_UPLOAD_MAX_SIZE_BYTES": "0"},
			wants: "invalid upload max size",
		},
		{
			name:  "invalid ranking length",
			env:   map[string]string{"MARKETLENS_UPLOAD_TOP_N": "0"},
			wants: "invalid ranking length",
		},
		{
			name:  "invalid rate limit rps",
			env:   map[string]string{"MARKETLENS_SECURITY_RATE_LIMIT_RPS": "0"},
			wants: "invalid rate limit rps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pointAwayFromConfigFile(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wants)
		})
	}
}
