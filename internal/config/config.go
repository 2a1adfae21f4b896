// Package config loads the bot configuration from YAML. An empty path
// yields the built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"craftbot.dev/internal/protocol"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Capture  CaptureConfig  `yaml:"capture"`
	Observer ObserverConfig `yaml:"observer"`
	Bot      BotConfig      `yaml:"bot"`
}

type ServerConfig struct {
	Address string `yaml:"address"`
	// Protocol is the numeric protocol version to speak.
	Protocol int32 `yaml:"protocol"`
	// CompressionThreshold mirrors the server's setting; -1 disables.
	CompressionThreshold int `yaml:"compression_threshold"`
}

type CaptureConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	IndexDB string `yaml:"index_db"`
}

type ObserverConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type BotConfig struct {
	TickIntervalMs int `yaml:"tick_interval_ms"`
}

func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Address:              "localhost:25565",
			Protocol:             int32(protocol.Version1_19_1),
			CompressionThreshold: -1,
		},
		Capture: CaptureConfig{
			Enabled: false,
			Dir:     "./captures",
			IndexDB: "./captures/captures.db",
		},
		Observer: ObserverConfig{
			Enabled: false,
			Listen:  "localhost:8666",
		},
		Bot: BotConfig{
			TickIntervalMs: 50,
		},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if strings.TrimSpace(c.Capture.Dir) == "" {
		c.Capture.Dir = "./captures"
	}
	if strings.TrimSpace(c.Capture.IndexDB) == "" {
		c.Capture.IndexDB = c.Capture.Dir + "/captures.db"
	}
	if c.Bot.TickIntervalMs <= 0 {
		c.Bot.TickIntervalMs = 50
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if !protocol.Version(c.Server.Protocol).Supported() {
		return fmt.Errorf("server.protocol %d is not supported", c.Server.Protocol)
	}
	if c.Server.CompressionThreshold < -1 {
		return fmt.Errorf("server.compression_threshold must be >= -1")
	}
	if c.Observer.Enabled && strings.TrimSpace(c.Observer.Listen) == "" {
		return fmt.Errorf("observer.listen must not be empty when enabled")
	}
	return nil
}
