package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LucidConfig represents the top-level lucidboard.yml configuration.
type LucidConfig struct {
	Version string        `yaml:"version"`
	Listen  string        `yaml:"listen,omitempty"` // HTTP listen address, default :3000
	Redis   RedisConfig   `yaml:"redis,omitempty"`
	Colsets []ColsetEntry `yaml:"colsets,omitempty"`
}

// RedisConfig specifies the Redis connection and key namespace.
type RedisConfig struct {
	Addr      string `yaml:"addr,omitempty"`     // default localhost:6379
	Password  string `yaml:"password,omitempty"` // empty means no auth
	DB        int    `yaml:"db,omitempty"`
	Namespace string `yaml:"namespace,omitempty"` // key prefix, default "default"
}

// ColsetEntry is a named column-set preset offered when creating a board.
type ColsetEntry struct {
	ID      int      `yaml:"id"`
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

// Validate performs strict validation on the configuration and applies
// defaults for omitted fields.
func (c *LucidConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Apply defaults for omitted server/redis fields
	if c.Listen == "" {
		c.Listen = ":3000"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Namespace == "" {
		c.Redis.Namespace = "default"
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Validate colsets when provided; an empty list means the built-in
	// default set.
	idsSeen := make(map[int]string) // id -> name
	for _, cs := range c.Colsets {
		if err := cs.Validate(); err != nil {
			return err
		}
		if existing, exists := idsSeen[cs.ID]; exists {
			return fmt.Errorf("duplicate colset id %d (colsets '%s' and '%s')", cs.ID, existing, cs.Name)
		}
		idsSeen[cs.ID] = cs.Name
	}

	return nil
}

// Validate performs validation on a single colset entry.
func (cs *ColsetEntry) Validate() error {
	if cs.ID < 1 {
		return fmt.Errorf("colset '%s': id must be >= 1, got %d", cs.Name, cs.ID)
	}
	if cs.Name == "" {
		return fmt.Errorf("colset %d: name is required", cs.ID)
	}
	if len(cs.Columns) == 0 {
		return fmt.Errorf("colset '%s': at least one column is required", cs.Name)
	}
	for _, title := range cs.Columns {
		if title == "" {
			return fmt.Errorf("colset '%s': column titles cannot be empty", cs.Name)
		}
	}
	return nil
}

// Load reads and validates lucidboard.yml from the specified path.
func Load(path string) (*LucidConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config LucidConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
