// Package config loads service configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/netobserve/topoview/pkg/zones"
)

// Config is the topoviewd service configuration.
type Config struct {
	// ListenAddr is the API server bind address.
	ListenAddr string `yaml:"listenAddr"`

	// Backend holds monitoring-backend endpoints.
	Backend BackendConfig `yaml:"backend"`

	// Events selects and configures the push-event transport.
	Events EventsConfig `yaml:"events"`

	// Store selects the layout persistence backend.
	Store StoreConfig `yaml:"store"`

	// Layout tunes the engine.
	Layout LayoutConfig `yaml:"layout"`
}

// BackendConfig points at the monitoring backend.
type BackendConfig struct {
	BaseURL      string        `yaml:"baseUrl"`
	PollInterval time.Duration `yaml:"pollInterval"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
}

// EventsConfig selects the push-event transport.
type EventsConfig struct {
	// Transport is "websocket" or "nng".
	Transport string `yaml:"transport"`
	URL       string `yaml:"url"`
}

// StoreConfig selects the layout persistence backend.
type StoreConfig struct {
	// Driver is "memory" or "postgres".
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"databaseUrl"`
}

// LayoutConfig tunes zoning and simulation.
type LayoutConfig struct {
	Zones           zones.Config  `yaml:"zones"`
	IterationBudget int           `yaml:"iterationBudget"`
	DebounceQuiet   time.Duration `yaml:"debounceQuiet"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		Backend: BackendConfig{
			BaseURL:      "http://localhost:9000",
			PollInterval: 30 * time.Second,
			FetchTimeout: 10 * time.Second,
		},
		Events: EventsConfig{
			Transport: "websocket",
			URL:       "ws://localhost:9000/events",
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		Layout: LayoutConfig{
			Zones:           zones.DefaultConfig(),
			IterationBudget: 600,
			DebounceQuiet:   time.Second,
		},
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. A missing path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TOPOVIEW_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("TOPOVIEW_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("TOPOVIEW_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("TOPOVIEW_DATABASE_URL"); v != "" {
		cfg.Store.Driver = "postgres"
		cfg.Store.DatabaseURL = v
	}
}

func (c *Config) validate() error {
	switch c.Events.Transport {
	case "websocket", "nng":
	default:
		return fmt.Errorf("unknown events transport %q", c.Events.Transport)
	}
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("postgres store requires databaseUrl")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Backend.PollInterval <= 0 {
		return fmt.Errorf("pollInterval must be positive")
	}
	return nil
}
