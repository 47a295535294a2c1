package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret-value")
	t.Setenv("DB_PASSWORD", "test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenExpiry)
	assert.Equal(t, 5, cfg.Auth.MaxFailedAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockoutDuration)
	assert.False(t, cfg.Auth.RevokeSessionsOnPasswordChange)
	assert.Equal(t, "bizadmin", cfg.Database.Name)
	assert.False(t, cfg.Database.MigrateOnStart)
	assert.Empty(t, cfg.Notify.FromAddress)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins)
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_READ_TIMEOUT", "30s")
	t.Setenv("AUTH_MAX_FAILED_ATTEMPTS", "3")
	t.Setenv("AUTH_LOCKOUT_DURATION", "10m")
	t.Setenv("AUTH_REVOKE_SESSIONS_ON_PASSWORD_CHANGE", "true")
	t.Setenv("AUTH_TIMING_DELAY_BASE_MS", "0")
	t.Setenv("DB_MIGRATE_ON_START", "1")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, ,172.16.0.0/12")
	t.Setenv("NOTIFY_FROM_ADDRESS", "security@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 3, cfg.Auth.MaxFailedAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Auth.LockoutDuration)
	assert.True(t, cfg.Auth.RevokeSessionsOnPasswordChange)
	assert.Equal(t, time.Duration(0), cfg.Auth.TimingDelayBase)
	assert.True(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "security@example.com", cfg.Notify.FromAddress)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_WRITE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
}

func TestLoad_RequiredValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "test")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret-value")
	t.Setenv("DB_PASSWORD", "")
	_, err = Load()
	assert.ErrorContains(t, err, "DB_PASSWORD")
}

func TestLoad_RejectsBadLockoutPolicy(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTH_MAX_FAILED_ATTEMPTS", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "AUTH_MAX_FAILED_ATTEMPTS")
}

func TestLoad_ProductionOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef!")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestValidateJWTSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		env     string
		wantErr bool
	}{
		{"dev minimum", "0123456789abcdef", "development", false},
		{"dev too short", "short", "development", true},
		{"prod requires 32", "0123456789abcdef", "production", true},
		{"prod ok", "0123456789abcdef0123456789abcdef", "production", false},
		{"repeated weak word", "testtesttesttest", "development", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateJWTSecret(tt.secret, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDatabase_DSN(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db.internal")

	db, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, "host=db.internal port=5432 user=postgres password=pw dbname=bizadmin sslmode=disable", db.DSN())
}
