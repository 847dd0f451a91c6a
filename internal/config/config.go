// Package config provides configuration loading for primegrid.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for all primegrid services.
type Config struct {
	NATS       NATSConfig       `yaml:"nats"`
	FileServer FileServerConfig `yaml:"fileserver"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Crunch     CrunchConfig     `yaml:"crunch"`
}

// NATSConfig configures the NATS connection shared by all services.
type NATSConfig struct {
	// URL is the NATS server URL (e.g. "nats://localhost:4222").
	URL string `yaml:"url"`
}

// FileServerConfig configures the segment fileserver.
type FileServerConfig struct {
	// Listen is the address the fileserver binds.
	Listen string `yaml:"listen"`
	// BaseURL is the address workers use to reach the fileserver.
	BaseURL string `yaml:"base_url"`
	// DataDir is the only directory the fileserver will read from.
	DataDir string `yaml:"data_dir"`
}

// MetricsConfig configures the consolidator's metrics endpoint.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// CrunchConfig configures job sizing and worker behavior.
type CrunchConfig struct {
	// SegmentSize is the per-job byte length handed out by the dispatcher.
	SegmentSize int64 `yaml:"segment_size"`
	// ChunkSize is the per-read byte length workers use when fetching.
	ChunkSize int64 `yaml:"chunk_size"`
	// Workers is the number of concurrent worker goroutines per process.
	Workers int `yaml:"workers"`
	// CacheSize enables a memoizing checker when positive.
	CacheSize int `yaml:"cache_size"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		NATS: NATSConfig{
			URL: "nats://localhost:4222",
		},
		FileServer: FileServerConfig{
			Listen:  ":8090",
			BaseURL: "http://localhost:8090",
			DataDir: ".",
		},
		Metrics: MetricsConfig{
			Listen: ":9180",
		},
		Crunch: CrunchConfig{
			SegmentSize: 64 * 1024,
			ChunkSize:   1024,
			Workers:     1,
			CacheSize:   0,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required")
	}
	if c.FileServer.Listen == "" {
		return fmt.Errorf("fileserver.listen is required")
	}
	if c.FileServer.BaseURL == "" {
		return fmt.Errorf("fileserver.base_url is required")
	}
	if c.FileServer.DataDir == "" {
		return fmt.Errorf("fileserver.data_dir is required")
	}
	if c.Crunch.SegmentSize <= 0 || c.Crunch.SegmentSize%8 != 0 {
		return fmt.Errorf("crunch.segment_size must be positive and divisible by 8")
	}
	if c.Crunch.ChunkSize <= 0 || c.Crunch.ChunkSize%8 != 0 {
		return fmt.Errorf("crunch.chunk_size must be positive and divisible by 8")
	}
	if c.Crunch.Workers <= 0 {
		return fmt.Errorf("crunch.workers must be positive")
	}
	if c.Crunch.CacheSize < 0 {
		return fmt.Errorf("crunch.cache_size must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file layered over the
// defaults, then validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}
