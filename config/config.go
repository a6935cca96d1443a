// Package config loads engine configuration from a file and the
// environment. Everything has a working default so the engine runs with
// no config file at all.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Input       string   `mapstructure:"input"`
	Output      string   `mapstructure:"output"`
	Instruments []string `mapstructure:"instruments"`
	OrderPrefix string   `mapstructure:"order_prefix"`
	LogLevel    string   `mapstructure:"log_level"`

	Stream StreamConfig `mapstructure:"stream"`
	Outbox OutboxConfig `mapstructure:"outbox"`
}

// StreamConfig controls the live Kafka report stream.
type StreamConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// OutboxConfig controls the durable report outbox and its drain job.
type OutboxConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Dir           string        `mapstructure:"dir"`
	Brokers       []string      `mapstructure:"brokers"`
	Topic         string        `mapstructure:"topic"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Default returns the reference configuration: the five-instrument set,
// file in, file out, no Kafka surfaces.
func Default() Config {
	return Config{
		Input:       "orders.csv",
		Output:      "executions.csv",
		Instruments: []string{"Rose", "Lavender", "Lotus", "Tulip", "Orchid"},
		OrderPrefix: "ord",
		LogLevel:    "info",
		Stream: StreamConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "executions",
		},
		Outbox: OutboxConfig{
			Dir:           "outbox",
			Brokers:       []string{"localhost:9092"},
			Topic:         "executions",
			SweepInterval: 250 * time.Millisecond,
		},
	}
}

// Load reads configuration from path (optional) with FLORIN_* env
// overrides layered on top of the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("FLORIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("input", d.Input)
	v.SetDefault("output", d.Output)
	v.SetDefault("instruments", d.Instruments)
	v.SetDefault("order_prefix", d.OrderPrefix)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("stream.enabled", d.Stream.Enabled)
	v.SetDefault("stream.brokers", d.Stream.Brokers)
	v.SetDefault("stream.topic", d.Stream.Topic)
	v.SetDefault("outbox.enabled", d.Outbox.Enabled)
	v.SetDefault("outbox.dir", d.Outbox.Dir)
	v.SetDefault("outbox.brokers", d.Outbox.Brokers)
	v.SetDefault("outbox.topic", d.Outbox.Topic)
	v.SetDefault("outbox.sweep_interval", d.Outbox.SweepInterval)
}
