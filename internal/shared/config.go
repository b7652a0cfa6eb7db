package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	SourceGraphQL = "graphql"
	SourceREST    = "rest"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Mixcloud MixcloudConfig `toml:"mixcloud"`
	HTTP     HTTPConfig     `toml:"http"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// MixcloudConfig contains the platform endpoints and crawl tuning.
type MixcloudConfig struct {
	FrontendURL string `toml:"frontend_url"`
	APIURL      string `toml:"api_url"`
	GraphQLURL  string `toml:"graphql_url"`
	Source      string `toml:"source"`
	PageSize    int    `toml:"page_size"`
	OrderBy     string `toml:"order_by"`
	MaxPages    int    `toml:"max_pages"`
}

// HTTPConfig contains outbound HTTP client settings.
type HTTPConfig struct {
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Timeout returns the configured client timeout. Zero means none.
func (h HTTPConfig) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// Validate reports the first setting that cannot drive a crawl.
func (c *Config) Validate() error {
	switch {
	case c.Database.Path == "":
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	case c.Mixcloud.FrontendURL == "" || c.Mixcloud.APIURL == "" || c.Mixcloud.GraphQLURL == "":
		return fmt.Errorf("%w: mixcloud endpoints must all be set", ErrInvalidConfig)
	case c.Mixcloud.Source != SourceGraphQL && c.Mixcloud.Source != SourceREST:
		return fmt.Errorf("%w: mixcloud.source must be %q or %q, got %q", ErrInvalidConfig, SourceGraphQL, SourceREST, c.Mixcloud.Source)
	case c.Mixcloud.PageSize <= 0:
		return fmt.Errorf("%w: mixcloud.page_size must be positive", ErrInvalidConfig)
	case c.Mixcloud.MaxPages < 0:
		return fmt.Errorf("%w: mixcloud.max_pages cannot be negative", ErrInvalidConfig)
	case c.HTTP.RequestsPerSecond < 0:
		return fmt.Errorf("%w: http.requests_per_second cannot be negative", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
