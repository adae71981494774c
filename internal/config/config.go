package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
type Config struct {
	Port            string `validate:"required,numeric"`
	UpstreamBaseURL string `validate:"required,url"`
	JWTSecret       string `validate:"required"`
	Timezone        string `validate:"required"`

	Session   SessionConfig
	Shift     ShiftConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	RBAC      RBACConfig

	location *time.Location
}

// SessionConfig tunes the per-user attendance session.
type SessionConfig struct {
	PollInterval    time.Duration `validate:"gte=1s"`    // authoritative status refresh
	TickInterval    time.Duration `validate:"gte=100ms"` // local counter refresh
	RefetchDelay    time.Duration `validate:"gte=0"`     // wait after a mutation before refetching
	MutationTimeout time.Duration `validate:"gte=1s"`
	IdleTimeout     time.Duration `validate:"gte=1m"` // unmount sessions nobody reads
}

// ShiftConfig is the shift used when the upstream status carries none.
type ShiftConfig struct {
	DefaultStartHour int `validate:"gte=0,lte=23"`
	DefaultEndHour   int `validate:"gte=0,lte=23"`
}

type RedisConfig struct {
	Addr          string        // empty disables the leave cache
	LeaveCacheTTL time.Duration `validate:"gte=0"`
}

type KafkaConfig struct {
	Broker string // empty disables event publishing
}

type RateLimitConfig struct {
	RPS   float64 `validate:"gt=0"`
	Burst int     `validate:"gte=1"`
}

// RBACConfig lists the token roles allowed to drill into another user's
// attendance.
type RBACConfig struct {
	DetailsRoles []string `validate:"min=1,dive,required"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Port:     "3000",
		Timezone: "Local",
		Session: SessionConfig{
			PollInterval:    30 * time.Second,
			TickInterval:    time.Second,
			RefetchDelay:    500 * time.Millisecond,
			MutationTimeout: 15 * time.Second,
			IdleTimeout:     30 * time.Minute,
		},
		Shift: ShiftConfig{
			DefaultStartHour: 9,
			DefaultEndHour:   18,
		},
		Redis: RedisConfig{
			LeaveCacheTTL: 5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			RPS:   2,
			Burst: 5,
		},
		RBAC: RBACConfig{
			DetailsRoles: []string{"admin", "hr"},
		},
	}
}

// Load builds the configuration from defaults overridden by the process
// environment. Every malformed variable is reported in a single error.
func Load() (*Config, error) {
	cfg := Default()
	var invalid []string

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				invalid = append(invalid, key)
				return
			}
			*dst = d
		}
	}
	integer := func(key string, dst *int) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				invalid = append(invalid, key)
				return
			}
			*dst = n
		}
	}

	str("PORT", &cfg.Port)
	str("UPSTREAM_BASE_URL", &cfg.UpstreamBaseURL)
	str("JWT_SECRET", &cfg.JWTSecret)
	str("TIMEZONE", &cfg.Timezone)

	dur("POLL_INTERVAL", &cfg.Session.PollInterval)
	dur("TICK_INTERVAL", &cfg.Session.TickInterval)
	dur("REFETCH_DELAY", &cfg.Session.RefetchDelay)
	dur("MUTATION_TIMEOUT", &cfg.Session.MutationTimeout)
	dur("SESSION_IDLE_TIMEOUT", &cfg.Session.IdleTimeout)

	integer("DEFAULT_SHIFT_START", &cfg.Shift.DefaultStartHour)
	integer("DEFAULT_SHIFT_END", &cfg.Shift.DefaultEndHour)

	str("REDIS_ADDR", &cfg.Redis.Addr)
	dur("LEAVE_CACHE_TTL", &cfg.Redis.LeaveCacheTTL)
	str("KAFKA_BROKER", &cfg.Kafka.Broker)

	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			invalid = append(invalid, "RATE_LIMIT_RPS")
		} else {
			cfg.RateLimit.RPS = rps
		}
	}
	integer("RATE_LIMIT_BURST", &cfg.RateLimit.Burst)

	if v := strings.TrimSpace(os.Getenv("DETAILS_ROLES")); v != "" {
		var roles []string
		for _, role := range strings.Split(v, ",") {
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}
		cfg.RBAC.DetailsRoles = roles
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints and resolves the timezone.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc
	return nil
}

// Location is the zone shift hours are evaluated in. It is only populated
// after Validate; before that it falls back to time.Local.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}
