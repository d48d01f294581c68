package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development by default")
	}
	if cfg.Location.Source != SourceSimulator || !cfg.Location.AutoGrant || cfg.Location.BufferSize != 10 {
		t.Fatalf("unexpected location defaults: %+v", cfg.Location)
	}
	if cfg.Simulator.Interval != 5*time.Second || cfg.Simulator.StepMeters != 60 {
		t.Fatalf("unexpected simulator defaults: %+v", cfg.Simulator)
	}
	if cfg.Flickr.BaseURL != "https://www.flickr.com" || cfg.Flickr.Timeout != 0 {
		t.Fatalf("unexpected flickr defaults: %+v", cfg.Flickr)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.SeenTTL != 12*time.Hour || cfg.Redis.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":            "9090",
		"ENV":             "production",
		"LOCATION_SOURCE": "push",
		"LOCATION_BUFFER": "32",
		"SIM_SEED":        "42",
		"FLICKR_API_KEY":  "secret",
		"FLICKR_TIMEOUT":  "3s",
		"REDIS_ADDR":      "localhost:6379",
		"REDIS_DB":        "2",
		"REDIS_PASSWORD":  "pw",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9090" || cfg.IsDevelopment() {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
	if cfg.Location.Source != SourcePush || cfg.Location.BufferSize != 32 {
		t.Fatalf("unexpected location config: %+v", cfg.Location)
	}
	if cfg.Simulator.Seed != 42 {
		t.Fatalf("expected seed 42, got %d", cfg.Simulator.Seed)
	}
	if cfg.Flickr.APIKey != "secret" || cfg.Flickr.Timeout != 3*time.Second {
		t.Fatalf("unexpected flickr config: %+v", cfg.Flickr)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 || cfg.Redis.Password != "pw" {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown source":  {"LOCATION_SOURCE": "gps"},
		"zero buffer":     {"LOCATION_BUFFER": "0"},
		"bad duration":    {"SIM_INTERVAL": "soon"},
		"bad buffer type": {"LOCATION_BUFFER": "ten"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
