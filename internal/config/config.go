// Package config loads the typetheword configuration file.
//
// Configuration comes from three layers, later ones winning: built-in
// defaults, a TOML file, and TYPETHEWORD_* environment variables. CLI flags
// are applied on top by the caller.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TYPETHEWORD_"

// Config is the complete configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
	Passages PassagesConfig `toml:"passages"`
	Progress ProgressConfig `toml:"progress"`
}

// ServerConfig configures the HTTP and WebSocket server.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	ReadTimeoutSec  int      `toml:"read_timeout_sec"`
	WriteTimeoutSec int      `toml:"write_timeout_sec"`
	PingIntervalSec int      `toml:"ping_interval_sec"`
	MaxMessageBytes int64    `toml:"max_message_bytes"`
}

// ReadTimeout returns the read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSec) * time.Second
}

// PingInterval returns the WebSocket ping interval as a duration.
func (s ServerConfig) PingInterval() time.Duration {
	return time.Duration(s.PingIntervalSec) * time.Second
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// PassagesConfig locates provider markup and snapshots.
type PassagesConfig struct {
	// Dir holds <translation>/<book>_<chapter>.html files.
	Dir string `toml:"dir"`

	// SnapshotDir holds last-good markup snapshots. Empty disables them.
	SnapshotDir string `toml:"snapshot_dir"`

	// CacheSize bounds the parsed passage cache. 0 means unbounded.
	CacheSize int `toml:"cache_size"`
}

// ProgressConfig configures the progress store.
type ProgressConfig struct {
	Database string `toml:"database"`
	Buffer   int    `toml:"buffer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 15,
			PingIntervalSec: 30,
			MaxMessageBytes: 4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Passages: PassagesConfig{
			Dir:         "passages",
			SnapshotDir: filepath.Join("data", "snapshots"),
			CacheSize:   256,
		},
		Progress: ProgressConfig{
			Database: filepath.Join("data", "progress.db"),
			Buffer:   256,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file yields the defaults; an empty path
// skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewIO("read", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		pe := errors.NewParse("config", path, "invalid TOML")
		pe.Err = err
		return pe
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.NewParse("config", path, "unknown keys: "+strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnvOverrides applies TYPETHEWORD_* variables.
func (c *Config) ApplyEnvOverrides() error {
	str := map[string]*string{
		"ADDR":         &c.Server.Addr,
		"LOG_LEVEL":    &c.Logging.Level,
		"LOG_FORMAT":   &c.Logging.Format,
		"PASSAGES_DIR": &c.Passages.Dir,
		"SNAPSHOT_DIR": &c.Passages.SnapshotDir,
		"DATABASE":     &c.Progress.Database,
	}
	for name, dst := range str {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CACHE_SIZE":      &c.Passages.CacheSize,
		"PROGRESS_BUFFER": &c.Progress.Buffer,
	}
	for name, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.NewValidation(EnvPrefix+name, fmt.Sprintf("not an integer: %q", v))
		}
		*dst = n
	}

	if v, ok := os.LookupEnv(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}
	return nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.NewValidation("server.addr", "must not be empty")
	}
	if c.Server.ReadTimeoutSec < 0 || c.Server.WriteTimeoutSec < 0 {
		return errors.NewValidation("server", "timeouts must not be negative")
	}
	if c.Server.PingIntervalSec <= 0 {
		return errors.NewValidation("server.ping_interval_sec", "must be positive")
	}
	if c.Server.MaxMessageBytes <= 0 {
		return errors.NewValidation("server.max_message_bytes", "must be positive")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return errors.NewValidation("logging.level", err.Error())
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return errors.NewValidation("logging.format", err.Error())
	}
	if c.Passages.CacheSize < 0 {
		return errors.NewValidation("passages.cache_size", "must not be negative")
	}
	if c.Progress.Buffer <= 0 {
		return errors.NewValidation("progress.buffer", "must be positive")
	}
	return nil
}

// InitLogging configures the global logger from c.Logging.
func (c *Config) InitLogging() error {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes c to path as TOML, creating the directory.
func (c *Config) Save(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewIO("create directory", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}
