package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "STORE", "DB_MAX_IDLE_TIME", "LIMITER_RPS", "LIMITER_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := parseConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.port)
	assert.Equal(t, "development", cfg.environment)
	assert.Equal(t, "mongo", cfg.store)
	assert.Equal(t, 15*time.Minute, cfg.db.maxIdleTime)
	assert.Equal(t, 2.0, cfg.limiter.rps)
	assert.True(t, cfg.limiter.enabled)
}

func TestParseConfigEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE", "postgres")
	t.Setenv("DB_MAX_IDLE_TIME", "1m")
	t.Setenv("LIMITER_ENABLED", "false")
	t.Setenv("LIMITER_BURST", "not-a-number")

	cfg, err := parseConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, "postgres", cfg.store)
	assert.Equal(t, time.Minute, cfg.db.maxIdleTime)
	assert.False(t, cfg.limiter.enabled)
	assert.Equal(t, 4, cfg.limiter.burst)

	// Flags win over the environment.
	cfg, err = parseConfig([]string{"-port", "9000", "-store", "memory"})
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.port)
	assert.Equal(t, "memory", cfg.store)
}

func TestParseConfigRejectsUnknownStore(t *testing.T) {
	_, err := parseConfig([]string{"-store", "sqlite"})
	assert.ErrorContains(t, err, "-store must be one of")

	_, err = parseConfig([]string{"-no-such-flag"})
	assert.Error(t, err)
}
