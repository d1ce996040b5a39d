package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Relay: RelayConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			HeartbeatInterval: 2 * time.Second,
			HeartbeatTimeout:  6 * time.Second,
		},
		Engine: EngineConfig{
			TickRate:   15,
			MoveSpeed:  160,
			EntitySize: 32,
			Smoothing:  12,
		},
		World:   WorldConfig{Width: 800, Height: 600},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Relay.Addr())
	assert.Equal(t, 15, cfg.Engine.TickRate)
	assert.Equal(t, 160.0, cfg.Engine.MoveSpeed)
	assert.Equal(t, 32.0, cfg.Engine.EntitySize)
	assert.Equal(t, 800.0, cfg.World.Width)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
relay:
  port: 9090
engine:
  tick_rate: 30
logging:
  level: debug
  format: console
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Relay.Port)
	assert.Equal(t, 30, cfg.Engine.TickRate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 160.0, cfg.Engine.MoveSpeed)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	cases := map[string]func(*Config){
		"zero port":          func(c *Config) { c.Relay.Port = 0 },
		"huge port":          func(c *Config) { c.Relay.Port = 70000 },
		"timeout < interval": func(c *Config) { c.Relay.HeartbeatTimeout = time.Second },
		"zero tick rate":     func(c *Config) { c.Engine.TickRate = 0 },
		"negative speed":     func(c *Config) { c.Engine.MoveSpeed = -1 },
		"zero entity size":   func(c *Config) { c.Engine.EntitySize = 0 },
		"zero world bounds":  func(c *Config) { c.World.Width = 0 },
		"bad log level":      func(c *Config) { c.Logging.Level = "verbose" },
		"bad log format":     func(c *Config) { c.Logging.Format = "xml" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWorldFileSkipsBoundsValidation(t *testing.T) {
	cfg := validConfig()
	cfg.World = WorldConfig{File: "world.json"}
	assert.NoError(t, cfg.Validate())
}

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Relay.Port = port
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyInvalidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.Relay.Port = port
		if cfg.Validate() == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}
