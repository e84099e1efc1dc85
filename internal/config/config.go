// ABOUTME: Configuration loading and parsing for echorelay
// ABOUTME: Supports YAML files with environment variable expansion and timeout-unit resolution

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete echorelay configuration
type Config struct {
	Map     MapConfig     `yaml:"map"`
	Storage StorageConfig `yaml:"storage"`
	Bridges []Bridge      `yaml:"bridges"`
	Logging LoggingConfig `yaml:"logging"`
}

// MapConfig holds the correspondence-map timeout as an amount plus unit.
// The pair is kept separate in YAML for compatibility with existing
// deployments and resolved into Timeout after load.
type MapConfig struct {
	Timeout time.Duration `yaml:"-"`

	TimeoutAmount int    `yaml:"timeout_amount"`
	TimeoutUnit   string `yaml:"timeout_unit"`
}

// StorageConfig holds snapshot persistence configuration
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"` // "file" (default) or "sqlite"
	DataDir string `yaml:"data_dir"`
}

// Bridge is one configured channel pairing. Name is the stable identifier
// the correspondence map is scoped by; the channel ids belong to the relay
// clients and are opaque here.
type Bridge struct {
	Name           string `yaml:"name"`
	DiscordChannel string `yaml:"discord_channel"`
	TelegramChatID string `yaml:"telegram_chat_id"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// timeoutUnits maps the accepted timeout_unit spellings to their duration.
var timeoutUnits = map[string]time.Duration{
	"seconds": time.Second,
	"minutes": time.Minute,
	"hours":   time.Hour,
	"days":    24 * time.Hour,
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded and
// the map timeout is resolved from its amount and unit.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.Map.Timeout = time.Duration(cfg.Map.TimeoutAmount) * timeoutUnits[cfg.Map.TimeoutUnit]

	return &cfg, nil
}

// applyDefaults fills in values for fields the file may omit
func applyDefaults(cfg *Config) {
	if cfg.Map.TimeoutAmount == 0 && cfg.Map.TimeoutUnit == "" {
		cfg.Map.TimeoutAmount = 24
		cfg.Map.TimeoutUnit = "hours"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Map.TimeoutAmount <= 0 {
		return fmt.Errorf("map.timeout_amount must be positive")
	}
	if _, ok := timeoutUnits[c.Map.TimeoutUnit]; !ok {
		return fmt.Errorf("map.timeout_unit %q is not one of seconds, minutes, hours, days", c.Map.TimeoutUnit)
	}

	if c.Storage.Enabled {
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir is required when storage is enabled")
		}
		if c.Storage.Backend != "file" && c.Storage.Backend != "sqlite" {
			return fmt.Errorf("storage.backend %q is not one of file, sqlite", c.Storage.Backend)
		}
	}

	seen := make(map[string]bool, len(c.Bridges))
	for i, b := range c.Bridges {
		if b.Name == "" {
			return fmt.Errorf("bridges[%d].name is required", i)
		}
		if seen[b.Name] {
			return fmt.Errorf("bridges[%d].name %q is duplicated", i, b.Name)
		}
		seen[b.Name] = true
	}

	return nil
}
