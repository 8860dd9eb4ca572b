package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, read from the environment so
// main stays lean.
type Config struct {
	Server     Server
	Flags      Flags
	Presence   Collaborator `envPrefix:"PRESENCE_"`
	Social     Collaborator `envPrefix:"SOCIAL_"`
	Redis      RedisConfig
	Rules      Rules
	Settlement Settlement
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr      string `env:"NILGATE_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Flags configures the feature-flag collaborator. An empty URL means the
// gate always serves its fallback set.
type Flags struct {
	URL          string        `env:"FEATURE_FLAG_URL"`
	Timeout      time.Duration `env:"FEATURE_FLAG_TIMEOUT" envDefault:"750ms"`
	Fallback     string        `env:"FEATURE_FLAG_FALLBACK" envDefault:"permissive"`
	PollSchedule string        `env:"FEATURE_FLAG_POLL" envDefault:"@every 30s"`

	// Circuit breaker around the flag service.
	FailureThreshold int           `env:"FEATURE_FLAG_FAILURE_THRESHOLD" envDefault:"3"`
	SuccessThreshold int           `env:"FEATURE_FLAG_SUCCESS_THRESHOLD" envDefault:"1"`
	Cooldown         time.Duration `env:"FEATURE_FLAG_COOLDOWN" envDefault:"10s"`
}

// Collaborator configures an external verification service. An empty URL
// selects the in-process implementation where one exists.
type Collaborator struct {
	URL     string        `env:"URL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// RedisConfig configures the session store. An empty URL keeps sessions in memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"1s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"1s"`
	SessionTTL   time.Duration `env:"CHECKIN_SESSION_TTL" envDefault:"168h"`
}

// Rules selects the jurisdiction rule source and the hotspot seed file.
type Rules struct {
	DatabaseURL  string `env:"RULES_DATABASE_URL"`
	HotspotsFile string `env:"HOTSPOTS_FILE"`
}

// Settlement configures where settlement authorizations are published. No
// brokers means an in-memory log.
type Settlement struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"SETTLEMENT_TOPIC" envDefault:"nilgate.settlement.authorized"`
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Flags.Fallback {
	case "permissive", "conservative":
	default:
		return fmt.Errorf("FEATURE_FLAG_FALLBACK must be permissive or conservative, got %q", c.Flags.Fallback)
	}
	if c.Flags.Timeout <= 0 {
		return fmt.Errorf("FEATURE_FLAG_TIMEOUT must be positive")
	}
	if c.Presence.Timeout <= 0 || c.Social.Timeout <= 0 {
		return fmt.Errorf("collaborator timeouts must be positive")
	}
	return nil
}
