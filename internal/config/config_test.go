package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LEARNHUB_PRIMARY__ENV", "local")
	t.Setenv("LEARNHUB_AUTH__PROVIDER", "header")
	t.Setenv("LEARNHUB_DATABASE__HOST", "db.internal")
	t.Setenv("LEARNHUB_DATABASE__PORT", "5433")
	t.Setenv("LEARNHUB_DATABASE__USER", "learn")
	t.Setenv("LEARNHUB_DATABASE__PASSWORD", "p@ss:word")
	t.Setenv("LEARNHUB_DATABASE__NAME", "learnhub")
}

func TestLoadConfig_NestedKeysAndDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LEARNHUB_SERVER__READ_TIMEOUT", "12")
	t.Setenv("LEARNHUB_SERVER__CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("LEARNHUB_OBSERVABILITY__LOGGING__LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Server.ReadTimeout)
	assert.Equal(t, 30, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, RouterEcho, cfg.Server.Router)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Equal(t, "learnhub", cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)
	assert.Equal(t, 5*time.Second, cfg.Observability.HealthChecks.Timeout)
}

func TestLoadConfig_SplitsListVariables(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LEARNHUB_SERVER__CORS_ALLOWED_ORIGINS", " https://app.test , https://admin.test,, ")
	t.Setenv("LEARNHUB_OBSERVABILITY__HEALTH_CHECKS__CHECKS", "redis, database")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.test", "https://admin.test"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, []string{"redis", "database"}, cfg.Observability.HealthChecks.Checks)
	assert.True(t, cfg.Observability.HealthChecks.Enabled)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a, b"))
	assert.Equal(t, []string{"*"}, splitList("*"))
	assert.Empty(t, splitList(" , "))
}

func TestLoadConfig_PlatformVariablesWin(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LEARNHUB_SERVER__PORT", "9000")
	t.Setenv("PORT", "3001")
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@h:5432/d", cfg.Database.DSN())
}

func TestLoadConfig_HeaderAuthOutsideLocal(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LEARNHUB_PRIMARY__ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only allowed in the local environment")
}

func TestLoadConfig_ClerkNeedsSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LEARNHUB_AUTH__PROVIDER", "clerk")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_RejectsUnknownRouter(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LEARNHUB_SERVER__ROUTER", "gin")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestDatabaseConfig_DSNEscapesPassword(t *testing.T) {
	d := DatabaseConfig{Host: "::1", Port: 5432, User: "app", Password: "p@ss:word", Name: "learnhub"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@[::1]:5432/learnhub?sslmode=disable", d.DSN())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.HealthChecks.Checks = []string{"database", "kafka"}
	assert.Error(t, cfg.Validate())
}

func TestObservabilityConfig_HasCheck(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	assert.True(t, cfg.HasCheck("redis"))

	cfg.HealthChecks.Checks = []string{"database"}
	assert.False(t, cfg.HasCheck("redis"))

	cfg.HealthChecks.Enabled = false
	assert.False(t, cfg.HasCheck("database"))
}
