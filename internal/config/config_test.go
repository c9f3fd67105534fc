package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 12*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, "sf_admin_session", cfg.Security.CookieName)
	assert.Equal(t, "admin", cfg.Security.AdminUser)
	assert.Equal(t, 10, cfg.Security.LoginMaxAttempts)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadDSNFromAlternateEnvNames(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app@db-one.example.com/leads")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@db-one.example.com/leads", cfg.Postgres.DSN)
}

func TestLoadDSNFirstNonEmptyWins(t *testing.T) {
	t.Setenv("SKILLFORGE_POSTGRES_DSN", "postgres://app@primary.example.com/leads")
	t.Setenv("DATABASE_URL", "postgres://app@fallback.example.com/leads")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@primary.example.com/leads", cfg.Postgres.DSN)
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv("SKILLFORGE_SECURITY_ADMINUSER", "ops")
	t.Setenv("SKILLFORGE_SECURITY_ADMINPASSWORD", "hunter2-rotated")
	t.Setenv("SKILLFORGE_SECURITY_SESSIONSECRET", "prod-signing-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ops", cfg.Security.AdminUser)
	assert.Equal(t, "hunter2-rotated", cfg.Security.AdminPassword)
	assert.Equal(t, "prod-signing-secret", cfg.Security.SessionSecret)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SKILLFORGE_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}
