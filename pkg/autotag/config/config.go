// Package config loads service settings and seed data.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// AUTOTAG_* environment variables. Later layers win.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar names the environment variable that points at a config file
const PathEnvVar = "AUTOTAG_CONFIG"

// Config holds all service settings
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Artifact ArtifactConfig `koanf:"artifact"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	// RateLimit caps inference-backed requests per IP per RateWindow; 0 disables
	RateLimit  int           `koanf:"rate_limit"`
	RateWindow time.Duration `koanf:"rate_window"`
}

// ArtifactConfig locates the trained model artifact
type ArtifactConfig struct {
	Path string `koanf:"path"`
	// Lazy defers loading until the first inference
	Lazy bool `koanf:"lazy"`
}

// DatabaseConfig locates the record store
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// AuthConfig holds the token signing secret
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

// LoggingConfig mirrors logging.Config
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000"},
			RateLimit:       120,
			RateWindow:      time.Minute,
		},
		Artifact: ArtifactConfig{
			Path: "model/autotag.json",
		},
		Database: DatabaseConfig{
			Path: "autotag.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envKeys maps AUTOTAG_* variables to config paths. Unlisted variables are
// ignored.
var envKeys = map[string]string{
	"autotag_addr":             "server.addr",
	"autotag_read_timeout":     "server.read_timeout",
	"autotag_write_timeout":    "server.write_timeout",
	"autotag_shutdown_timeout": "server.shutdown_timeout",
	"autotag_cors_origins":     "server.cors_origins",
	"autotag_rate_limit":       "server.rate_limit",
	"autotag_rate_window":      "server.rate_window",
	"autotag_artifact_path":    "artifact.path",
	"autotag_artifact_lazy":    "artifact.lazy",
	"autotag_db_path":          "database.path",
	"autotag_jwt_secret":       "auth.jwt_secret",
	"autotag_log_level":        "logging.level",
	"autotag_log_format":       "logging.format",
}

func envTransform(key string) string {
	return envKeys[strings.ToLower(key)]
}

// Load builds the configuration. path may be empty, in which case the file
// named by AUTOTAG_CONFIG is used if set.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("AUTOTAG_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitList(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// splitList turns a comma-separated env value into a slice
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

// Validate checks that required settings are present and sane
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.RateLimit < 0 || (c.Server.RateLimit > 0 && c.Server.RateWindow <= 0) {
		return fmt.Errorf("server.rate_limit needs a positive rate_window")
	}
	if c.Artifact.Path == "" {
		return fmt.Errorf("artifact.path is required (AUTOTAG_ARTIFACT_PATH)")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required (AUTOTAG_DB_PATH)")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 bytes")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
