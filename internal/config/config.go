// Package config provides Viper-based configuration loading for the relay
// and the client engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RelayConfig holds relay server settings.
type RelayConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// HeartbeatInterval is how often clients are expected to report in.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	// HeartbeatTimeout is the silence after which a player is evicted.
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat_timeout"`
}

// Addr returns the "host:port" listen address.
func (r RelayConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// EngineConfig holds the local movement-loop settings.
type EngineConfig struct {
	// TickRate is the movement loop frequency in Hz.
	TickRate int `mapstructure:"tick_rate"`
	// MoveSpeed is the entity speed in world units per second.
	MoveSpeed float64 `mapstructure:"move_speed"`
	// EntitySize is the side length of the entity bounding box.
	EntitySize float64 `mapstructure:"entity_size"`
	// Smoothing is the remote-entity interpolation rate in 1/seconds.
	Smoothing float64 `mapstructure:"smoothing"`
}

// WorldConfig locates the geometry snapshot.
type WorldConfig struct {
	// File is an optional path to a geometry snapshot JSON document.
	File string `mapstructure:"file"`
	// Width and Height are the fallback bounds when no file is given.
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the full configuration tree.
type Config struct {
	Relay   RelayConfig   `mapstructure:"relay"`
	Engine  EngineConfig  `mapstructure:"engine"`
	World   WorldConfig   `mapstructure:"world"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks the configuration for values no component can run with.
func (c Config) Validate() error {
	if c.Relay.Port < 1 || c.Relay.Port > 65535 {
		return fmt.Errorf("relay.port %d outside 1-65535", c.Relay.Port)
	}
	if c.Relay.HeartbeatInterval <= 0 {
		return fmt.Errorf("relay.heartbeat_interval must be positive")
	}
	if c.Relay.HeartbeatTimeout < c.Relay.HeartbeatInterval {
		return fmt.Errorf("relay.heartbeat_timeout %s shorter than the interval %s",
			c.Relay.HeartbeatTimeout, c.Relay.HeartbeatInterval)
	}
	if c.Engine.TickRate < 1 || c.Engine.TickRate > 240 {
		return fmt.Errorf("engine.tick_rate %d outside 1-240", c.Engine.TickRate)
	}
	if c.Engine.MoveSpeed <= 0 {
		return fmt.Errorf("engine.move_speed must be positive")
	}
	if c.Engine.EntitySize <= 0 {
		return fmt.Errorf("engine.entity_size must be positive")
	}
	if c.World.File == "" && (c.World.Width <= 0 || c.World.Height <= 0) {
		return fmt.Errorf("world bounds must be positive when no world.file is set")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug/info/warn/error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q is not json or console", c.Logging.Format)
	}
	return nil
}

// Load reads configuration from the optional file path, the environment
// (OASIS_ prefix), and defaults, in that priority order.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("OASIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("relay.host", "0.0.0.0")
	v.SetDefault("relay.port", 8080)
	v.SetDefault("relay.heartbeat_interval", 2*time.Second)
	v.SetDefault("relay.heartbeat_timeout", 6*time.Second)

	v.SetDefault("engine.tick_rate", 15)
	v.SetDefault("engine.move_speed", 160.0)
	v.SetDefault("engine.entity_size", 32.0)
	v.SetDefault("engine.smoothing", 12.0)

	v.SetDefault("world.file", "")
	v.SetDefault("world.width", 800.0)
	v.SetDefault("world.height", 600.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
