package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfigSSLModeDefaultsToDisable(t *testing.T) {
	t.Setenv("DB_SSLMODE", "")

	cfg := GetDatabaseConfig()
	assert.Equal(t, "disable", cfg.SSLMode)
}

func TestDatabaseConfigSSLModePassthrough(t *testing.T) {
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("DB_HOST", "db.internal")

	cfg := GetDatabaseConfig()
	assert.Equal(t, "require", cfg.SSLMode)
	assert.Equal(t, "db.internal", cfg.Host)
}

func TestEngineConfigDefaults(t *testing.T) {
	t.Setenv("RETRY_CEILING", "")
	t.Setenv("RETRY_BASE_DELAY", "")

	cfg := GetEngineConfig()
	assert.Equal(t, 3, cfg.RetryCeiling)
	assert.Equal(t, 30*time.Minute, cfg.RetryBaseDelay)
	assert.Equal(t, 24*time.Hour, cfg.RetryMaxDelay)
}

func TestEngineConfigOverrides(t *testing.T) {
	t.Setenv("RETRY_CEILING", "5")
	t.Setenv("RETRY_BASE_DELAY", "10m")
	t.Setenv("BROWSER_HEADLESS", "false")

	cfg := GetEngineConfig()
	assert.Equal(t, 5, cfg.RetryCeiling)
	assert.Equal(t, 10*time.Minute, cfg.RetryBaseDelay)
	assert.False(t, cfg.Headless)
}
