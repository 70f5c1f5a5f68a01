package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "UTC", cfg.App.Timezone)
	assert.Equal(t, 2, cfg.Booking.MaxPendingPerPatient)
	assert.Equal(t, "notifications:email", cfg.Notification.Stream)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_TIMEZONE", "Africa/Lagos")
	t.Setenv("BOOKING_MAX_PENDING", "3")
	t.Setenv("JWT_ACCESS_EXPIRY", "30m")
	t.Setenv("REDIS_DB", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3, cfg.Booking.MaxPendingPerPatient)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 4, cfg.Redis.DB)
	assert.Equal(t, "Africa/Lagos", cfg.Location().String())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:          AppConfig{Timezone: "UTC"},
			JWT:          JWTConfig{Secret: "s"},
			Booking:      BookingConfig{MaxPendingPerPatient: 2},
			Notification: NotificationConfig{BufferSize: 10},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Booking.MaxPendingPerPatient = 0
	assert.ErrorContains(t, cfg.Validate(), "BOOKING_MAX_PENDING")

	cfg = valid()
	cfg.App.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "APP_TIMEZONE")

	cfg = valid()
	cfg.Notification.BufferSize = 0
	assert.ErrorContains(t, cfg.Validate(), "NOTIFICATION_BUFFER_SIZE")
}

func TestLoadConfig_CORSOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://clinic.example, ,http://localhost:3000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://clinic.example", "http://localhost:3000"}, cfg.App.CORSOrigins)
}
