package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadSearchConfigDefaults(t *testing.T) {
	t.Setenv("SEARCH_DEFAULT_CITY", "")
	t.Setenv("SEARCH_DEFAULT_LIMIT", "")
	t.Setenv("SEARCH_MAX_LIMIT", "")
	t.Setenv("SEARCH_MAX_WINDOW", "")

	c := LoadSearchConfig()
	assert.Equal(t, "moscow", c.DefaultCity)
	assert.Equal(t, 20, c.DefaultLimit)
	assert.Equal(t, 100, c.MaxLimit)
	assert.Equal(t, 1000, c.MaxWindow)
}

func TestLoadSearchConfigClamps(t *testing.T) {
	t.Setenv("SEARCH_DEFAULT_LIMIT", "50")
	t.Setenv("SEARCH_MAX_LIMIT", "10")
	t.Setenv("SEARCH_MAX_WINDOW", "5")

	c := LoadSearchConfig()
	assert.Equal(t, 50, c.MaxLimit)
	assert.Equal(t, 50, c.MaxWindow)
}

func TestLoadRateLimitConfigMinimums(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c := LoadRateLimitConfig()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, 5*time.Second, c.TTL)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "on")
	assert.True(t, envBool("X_FLAG", false))
	t.Setenv("X_FLAG", "no")
	assert.False(t, envBool("X_FLAG", true))
	t.Setenv("X_FLAG", "maybe")
	assert.True(t, envBool("X_FLAG", true))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestMethodSet(t *testing.T) {
	m := methodSet(" get, head ,,")
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, m)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("SEARCH_CACHE_ENABLED", "off")
	t.Setenv("SEARCH_CACHE_METHODS", "")
	t.Setenv("SEARCH_CACHE_TTL", "-5s")
	t.Setenv("SEARCH_CACHE_MAX_BODY_BYTES", "oops")

	c := LoadCacheConfig()
	assert.False(t, c.Enabled)
	assert.Equal(t, map[string]bool{"GET": true}, c.Methods)
	assert.Equal(t, time.Second, c.TTL)
	assert.Equal(t, 1<<20, c.MaxBodyBytes)
	assert.Equal(t, "kiddeo:search", c.Prefix)
}
