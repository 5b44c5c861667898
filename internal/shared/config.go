package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultConfigPath is the file name looked up when no --config flag is given.
const DefaultConfigPath = "codecatch.toml"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server ServerConfig `toml:"server" json:"server"`
	Page   PageConfig   `toml:"page" json:"page"`
	OAuth  OAuthConfig  `toml:"oauth" json:"oauth"`
}

// ServerConfig contains listener settings.
type ServerConfig struct {
	Host            string  `toml:"host" json:"host"`
	Port            int     `toml:"port" json:"port"`
	Path            string  `toml:"path" json:"path"`
	ShutdownTimeout int     `toml:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimit       float64 `toml:"rate_limit" json:"rate_limit"`
}

// PageConfig controls the text of the rendered code page.
type PageConfig struct {
	Provider string `toml:"provider" json:"provider"`
	App      string `toml:"app" json:"app"`
	Escape   bool   `toml:"escape" json:"escape"`
}

// Address returns the host:port pair the listener binds to.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the redirect URL announced on startup, e.g. http://localhost:5000/auth
func (s ServerConfig) URL() string {
	return "http://" + s.Address() + s.Path
}

// Timeout returns the shutdown grace period as a [time.Duration].
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// Validate reports the first invalid field, wrapped in [ErrInvalidConfig].
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Server.Host) == "":
		return fmt.Errorf("%w: server.host must not be empty", ErrInvalidConfig)
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	case !strings.HasPrefix(c.Server.Path, "/"):
		return fmt.Errorf("%w: server.path %q must start with /", ErrInvalidConfig, c.Server.Path)
	case c.Server.ShutdownTimeout < 0:
		return fmt.Errorf("%w: server.shutdown_timeout must not be negative", ErrInvalidConfig)
	case c.Server.RateLimit < 0:
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ResolveConfig loads path when it exists and falls back to [DefaultConfig] otherwise.
//
// A file that exists but cannot be parsed is an error.
func ResolveConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
