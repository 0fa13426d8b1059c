package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORTAL_API_URL", "")
	t.Setenv("PORTAL_HTTP_TIMEOUT", "")
	t.Setenv("APP_ENV", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, defaultAPIURL, cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.Ephemeral)
	require.NotNil(t, cfg.Location)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORTAL_API_URL", "http://example.test/api/v1/")
	t.Setenv("PORTAL_HTTP_TIMEOUT", "3s")
	t.Setenv("PORTAL_EPHEMERAL", "yes")
	t.Setenv("PORTAL_SCANNER_URL", "ws://scanner.local/feed")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://example.test/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.Ephemeral)
	assert.Equal(t, "ws://scanner.local/feed", cfg.ScannerURL)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("PORTAL_HTTP_TIMEOUT", "soon")
		_, err := FromEnv()
		assert.Error(t, err)
	})
	t.Run("bad scheme", func(t *testing.T) {
		t.Setenv("PORTAL_API_URL", "ftp://example.test")
		_, err := FromEnv()
		assert.Error(t, err)
	})
	t.Run("bad scanner url", func(t *testing.T) {
		t.Setenv("PORTAL_SCANNER_URL", "http://scanner.local")
		_, err := FromEnv()
		assert.Error(t, err)
	})
	t.Run("prod requires https", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("PORTAL_API_URL", "http://example.test")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}

func TestLoadLocation_Fallback(t *testing.T) {
	loc := loadLocation("Not/AZone")
	_, offset := time.Date(2024, 6, 10, 12, 0, 0, 0, loc).Zone()
	assert.Equal(t, -5*60*60, offset)
}
