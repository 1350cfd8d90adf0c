package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ajanata/softrtc/clockpub"
	"github.com/ajanata/softrtc/ds1307"
)

type NTPConfig struct {
	Server         string `toml:"server"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type MQTTConfig struct {
	Broker          string `toml:"broker"`
	ClientID        string `toml:"client_id"`
	Topic           string `toml:"topic"`
	IntervalSeconds int    `toml:"interval_seconds"`
}

// Config is the rtcctl configuration file.
type Config struct {
	// Bus is a periph I2C bus name such as "/dev/i2c-1" or "1". Empty picks
	// the first bus.
	Bus         string     `toml:"bus"`
	Address     uint8      `toml:"address"`
	NoDayOfWeek bool       `toml:"no_day_of_week"`
	LogLevel    string     `toml:"log_level"`
	NTP         NTPConfig  `toml:"ntp"`
	MQTT        MQTTConfig `toml:"mqtt"`
}

func DefaultConfig() Config {
	return Config{
		Address:  ds1307.Address,
		LogLevel: "info",
		NTP: NTPConfig{
			Server:         "pool.ntp.org",
			TimeoutSeconds: 5,
		},
		MQTT: MQTTConfig{
			Broker:          "tcp://localhost:1883",
			ClientID:        "rtcctl",
			Topic:           clockpub.DefaultTopic,
			IntervalSeconds: 1,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path gives the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Address == 0 || c.Address > 0x77 {
		return fmt.Errorf("invalid I2C address 0x%02x", c.Address)
	}
	if c.NTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid NTP timeout %d", c.NTP.TimeoutSeconds)
	}
	if c.MQTT.IntervalSeconds <= 0 {
		return fmt.Errorf("invalid publish interval %d", c.MQTT.IntervalSeconds)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func (c Config) NTPTimeout() time.Duration {
	return time.Duration(c.NTP.TimeoutSeconds) * time.Second
}

func (c Config) PublishInterval() time.Duration {
	return time.Duration(c.MQTT.IntervalSeconds) * time.Second
}
