package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Location sources.
const (
	SourceSimulator = "simulator"
	SourcePush      = "push"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Location  LocationConfig
	Simulator SimulatorConfig
	Flickr    FlickrConfig
	Redis     RedisConfig
}

type LocationConfig struct {
	// Source selects the device: "simulator" or "push".
	Source     string `env:"LOCATION_SOURCE,     default=simulator"`
	AutoGrant  bool   `env:"LOCATION_AUTO_GRANT, default=true"`
	BufferSize int    `env:"LOCATION_BUFFER,     default=10"`
}

type SimulatorConfig struct {
	Interval   time.Duration `env:"SIM_INTERVAL,    default=5s"`
	StepMeters float64       `env:"SIM_STEP_METERS, default=60"`
	StartLat   float64       `env:"SIM_START_LAT,   default=52.5163"`
	StartLng   float64       `env:"SIM_START_LNG,   default=13.3777"`
	Seed       int64         `env:"SIM_SEED"`
}

type FlickrConfig struct {
	APIKey  string        `env:"FLICKR_API_KEY"`
	BaseURL string        `env:"FLICKR_BASE_URL, default=https://www.flickr.com"`
	Timeout time.Duration `env:"FLICKR_TIMEOUT,  default=0s"`
}

// RedisConfig is optional; an empty Addr selects the in-memory seen store.
type RedisConfig struct {
	Addr        string        `env:"REDIS_ADDR"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB, default=0"`
	PingTimeout time.Duration `env:"REDIS_PING_TIMEOUT, default=5s"`
	SeenTTL     time.Duration `env:"SEEN_TTL, default=12h"`
}

// IsDevelopment reports whether ENV selects development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Location.Source {
	case SourceSimulator, SourcePush:
	default:
		return fmt.Errorf("LOCATION_SOURCE must be %q or %q, got %q", SourceSimulator, SourcePush, c.Location.Source)
	}
	if c.Location.BufferSize <= 0 {
		return fmt.Errorf("LOCATION_BUFFER must be positive, got %d", c.Location.BufferSize)
	}
	return nil
}
