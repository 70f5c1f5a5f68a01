package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Booking      BookingConfig
	Notification NotificationConfig
	Log          LogConfig
}

type AppConfig struct {
	Name     string
	Port     string
	Env      string
	URL      string
	Timezone string
	// Allowed CORS origins; empty allows any
	CORSOrigins []string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
	LogLevel     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BookingConfig holds appointment booking rules
type BookingConfig struct {
	MaxPendingPerPatient int
}

// NotificationConfig controls the appointment confirmation outbox
type NotificationConfig struct {
	Stream      string
	BufferSize  int
	FromAddress string
}

type LogConfig struct {
	Level string
}

// LoadConfig reads configuration from an optional .env file and the environment.
// Environment variables take precedence over the file.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if _, err := os.Stat(".env"); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	config := &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			URL:      v.GetString("APP_URL"),
			Timezone: v.GetString("APP_TIMEZONE"),

			CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			LogLevel:     v.GetString("DB_LOG_LEVEL"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Booking: BookingConfig{
			MaxPendingPerPatient: v.GetInt("BOOKING_MAX_PENDING"),
		},
		Notification: NotificationConfig{
			Stream:      v.GetString("NOTIFICATION_STREAM"),
			BufferSize:  v.GetInt("NOTIFICATION_BUFFER_SIZE"),
			FromAddress: v.GetString("NOTIFICATION_FROM_ADDRESS"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "Clinic Management")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_URL", "http://localhost:8080")
	v.SetDefault("APP_TIMEZONE", "UTC")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("BOOKING_MAX_PENDING", 2)

	v.SetDefault("NOTIFICATION_STREAM", "notifications:email")
	v.SetDefault("NOTIFICATION_BUFFER_SIZE", 1000)
	v.SetDefault("NOTIFICATION_FROM_ADDRESS", "no-reply@clinic.local")

	v.SetDefault("LOG_LEVEL", "info")
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Booking.MaxPendingPerPatient < 1 {
		return fmt.Errorf("BOOKING_MAX_PENDING must be at least 1, got %d", c.Booking.MaxPendingPerPatient)
	}
	if c.Notification.BufferSize < 1 {
		return fmt.Errorf("NOTIFICATION_BUFFER_SIZE must be at least 1, got %d", c.Notification.BufferSize)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	return nil
}

// Location returns the clinic's timezone, used to decide what "today" is
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
