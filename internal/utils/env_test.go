package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("WM_STR", "  value ")
	t.Setenv("WM_INT", "42")
	t.Setenv("WM_BAD_INT", "x")
	t.Setenv("WM_FLOAT", "0.25")
	t.Setenv("WM_BOOL", "Yes")
	t.Setenv("WM_DUR", "3")
	t.Setenv("WM_LIST", "a, ,b,")

	assert.Equal(t, "value", EnvString("WM_STR", "d"))
	assert.Equal(t, "d", EnvString("WM_MISSING", "d"))
	assert.Equal(t, 42, EnvInt("WM_INT", 1))
	assert.Equal(t, 1, EnvInt("WM_BAD_INT", 1))
	assert.Equal(t, int64(42), EnvInt64("WM_INT", 0))
	assert.InDelta(t, 0.25, EnvFloat("WM_FLOAT", 1), 1e-12)
	assert.True(t, EnvBool("WM_BOOL", false))
	assert.True(t, EnvBool("WM_MISSING", true))
	assert.Equal(t, 3*time.Second, EnvDuration("WM_DUR", time.Second))
	assert.Equal(t, []string{"a", "b"}, EnvList("WM_LIST"))
}

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "5433")
	t.Setenv("PG_USER", "wm")
	t.Setenv("PG_PASSWORD", "p@ss")
	t.Setenv("PG_DB", "maps")
	t.Setenv("PG_SSLMODE", "")

	assert.Equal(t, "postgres://wm:p%40ss@db:5433/maps?sslmode=disable", BuildPostgresDSNFromEnv())
}

func TestOpenRedisFromEnvWithoutHost(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	assert.Nil(t, OpenRedisFromEnv())
}
