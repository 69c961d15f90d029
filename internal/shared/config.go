package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Tracker modes select how stage progress is produced.
const (
	ModeSimulate = "simulate"
	ModeExec     = "exec"
	ModeRelay    = "relay"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Tools       ToolsConfig       `toml:"tools"`
	Tracker     TrackerConfig     `toml:"tracker"`
	Mounts      map[string]string `toml:"mounts"`
	Credentials CredentialsConfig `toml:"credentials"`
}

// ServerConfig contains execution relay settings.
type ServerConfig struct {
	Host               string  `toml:"host"`
	Port               int     `toml:"port"`
	UIDir              string  `toml:"ui_dir"`
	ExecTimeoutSeconds int     `toml:"exec_timeout_seconds"`
	RateLimit          float64 `toml:"rate_limit"`
	RateBurst          int     `toml:"rate_burst"`
}

// DatabaseConfig contains settings store connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ToolsConfig maps each external tool to the binary that runs it.
type ToolsConfig struct {
	SpotDL string `toml:"spotdl"`
	YTDLP  string `toml:"ytdlp"`
	EyeD3  string `toml:"eyed3"`
}

// TrackerConfig selects the progress source for job stages.
type TrackerConfig struct {
	Mode     string `toml:"mode"`
	RelayURL string `toml:"relay_url"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify client credentials used to resolve names for URLs.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Binaries returns the tool name → binary mapping used as the execution allow-list.
func (t ToolsConfig) Binaries() map[string]string {
	return map[string]string{
		"spotdl": t.SpotDL,
		"yt-dlp": t.YTDLP,
		"eyeD3":  t.EyeD3,
	}
}

// Addr returns host:port for the relay listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ExecTimeout returns the per-command deadline, zero meaning none.
func (s ServerConfig) ExecTimeout() time.Duration {
	if s.ExecTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.ExecTimeoutSeconds) * time.Second
}

// Validate checks fields that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.Tracker.Mode {
	case ModeSimulate, ModeExec, ModeRelay:
	default:
		return fmt.Errorf("%w: unknown tracker mode %q", ErrInvalidConfig, c.Tracker.Mode)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}

// ApplyEnv overrides configuration from the environment. Only PORT is consumed.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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
