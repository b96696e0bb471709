package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds the runtime settings of the service.
type Config struct {
	AppPort          string `mapstructure:"APP_PORT" validate:"required"`
	DBDriver         string `mapstructure:"DB_DRIVER" validate:"required,oneof=postgres sqlite memory"`
	DatabaseDSN      string `mapstructure:"DATABASE_DSN" validate:"required_unless=DBDriver memory"`
	DBMigrate        bool   `mapstructure:"DB_MIGRATE"`
	PhoneRegion      string `mapstructure:"PHONE_REGION" validate:"required,len=2"`
	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange string `mapstructure:"RABBITMQ_EXCHANGE" validate:"required"`
	RabbitMQAudit    bool   `mapstructure:"RABBITMQ_AUDIT"`
	LogLevel         string `mapstructure:"LOG_LEVEL" validate:"required"`
	LogFormat        string `mapstructure:"LOG_FORMAT" validate:"oneof=console json"`
}

var keys = []string{
	"APP_PORT", "DB_DRIVER", "DATABASE_DSN", "DB_MIGRATE", "PHONE_REGION",
	"RABBITMQ_URL", "RABBITMQ_EXCHANGE", "RABBITMQ_AUDIT", "LOG_LEVEL", "LOG_FORMAT",
}

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=users port=5432 sslmode=disable")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("PHONE_REGION", "IN")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "users")
	v.SetDefault("RABBITMQ_AUDIT", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, is loaded first; variables already set in
// the process environment win over it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	// AutomaticEnv only answers Get calls, Unmarshal needs every key bound.
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	cfg.PhoneRegion = strings.ToUpper(cfg.PhoneRegion)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// EventsEnabled reports whether a broker is configured.
func (c Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}
