package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the full service configuration, read from the environment.
// Every JWT field is mandatory with no default: a missing value fails
// startup rather than surfacing later as an unsigned or unexpiring token.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT      JWTConfig
	Lockout  LockoutConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Audit    AuditConfig
	Throttle ThrottleConfig
}

type JWTConfig struct {
	Secret                   string `env:"JWT_SECRET, required"`
	Issuer                   string `env:"JWT_ISSUER, required"`
	Audience                 string `env:"JWT_AUDIENCE, required"`
	AccessTokenExpiryMinutes int    `env:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES, required"`
	RefreshTokenExpiryDays   int    `env:"JWT_REFRESH_TOKEN_EXPIRY_DAYS, required"`

	// StrictRefresh makes refresh require the submitted refresh token to
	// match the stored one instead of only checking presence and expiry.
	StrictRefresh bool `env:"JWT_STRICT_REFRESH, default=false"`
}

// AccessTokenTTL returns the configured access-token lifetime.
func (c JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiryMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh-token lifetime.
func (c JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpiryDays) * 24 * time.Hour
}

type LockoutConfig struct {
	// MaxFailedAttempts is the number of consecutive wrong passwords that
	// triggers a lockout.
	MaxFailedAttempts int `env:"LOCKOUT_MAX_FAILED_ATTEMPTS, default=5"`
	// WindowMinutes is how long a triggered lockout lasts, timed from the
	// last failure.
	WindowMinutes int `env:"LOCKOUT_WINDOW_MINUTES, default=5"`
}

// Window returns the lockout duration.
func (c LockoutConfig) Window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=tourbooking_auth"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type ThrottleConfig struct {
	RegistrationMaxAttempts     int `env:"REGISTRATION_MAX_ATTEMPTS,     default=5"`
	RegistrationCooldownMinutes int `env:"REGISTRATION_COOLDOWN_MINUTES, default=60"`
}

// RegistrationCooldown returns the throttle window.
func (c ThrottleConfig) RegistrationCooldown() time.Duration {
	return time.Duration(c.RegistrationCooldownMinutes) * time.Minute
}

// Load reads configuration from environment variables using go-envconfig.
// A missing required value is returned as an error so the caller can fail
// fast at startup.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWT.AccessTokenExpiryMinutes <= 0 {
		return nil, fmt.Errorf("config: JWT_ACCESS_TOKEN_EXPIRY_MINUTES must be positive")
	}
	if cfg.JWT.RefreshTokenExpiryDays <= 0 {
		return nil, fmt.Errorf("config: JWT_REFRESH_TOKEN_EXPIRY_DAYS must be positive")
	}
	return &cfg, nil
}
