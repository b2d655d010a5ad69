package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	configFileName = "config.toml"
)

// Config is the optional user config file (config.toml in ConfigDir).
// Values here are overridden by environment variables and flags.
type Config struct {
	// File is the backing tasks file. Defaults to tasks.json/tasks.sqlite in ConfigDir.
	File    string `toml:"file,omitempty" json:"file,omitempty"`
	Backend string `toml:"backend,omitempty" json:"backend,omitempty"`

	// Addr is the default bind address for `taskline web`.
	Addr string `toml:"addr,omitempty" json:"addr,omitempty"`
	// Title is the chart title.
	Title string `toml:"title,omitempty" json:"title,omitempty"`

	LogLevel string `toml:"log_level,omitempty" json:"logLevel,omitempty"`
	Format   string `toml:"format,omitempty" json:"format,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Backend:  BackendJSON,
		Addr:     "127.0.0.1:3336",
		Title:    "Project Timeline",
		LogLevel: "info",
		Format:   "json",
	}
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.taskline).
	if v := strings.TrimSpace(os.Getenv("TASKLINE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskline"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig reads path (or ConfigPath when empty) over DefaultConfig.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	var fileCfg Config
	if _, err := toml.Decode(string(b), &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.merge(fileCfg)
	return cfg, nil
}

func (c *Config) merge(o Config) {
	if v := strings.TrimSpace(o.File); v != "" {
		c.File = v
	}
	if v := strings.TrimSpace(o.Backend); v != "" {
		c.Backend = v
	}
	if v := strings.TrimSpace(o.Addr); v != "" {
		c.Addr = v
	}
	if v := strings.TrimSpace(o.Title); v != "" {
		c.Title = v
	}
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(o.Format); v != "" {
		c.Format = v
	}
}

func SaveConfig(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return atomicWriteFile(dir, configFileName+".*.tmp", path, buf.Bytes(), 0o600)
}

// DefaultTasksPath is where tasks live when neither config nor flags name a file.
func DefaultTasksPath(kind string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if kind == BackendSQLite {
		return filepath.Join(dir, "tasks.sqlite"), nil
	}
	return filepath.Join(dir, "tasks.json"), nil
}

// Open returns the backend for kind. An empty path selects DefaultTasksPath.
func Open(kind, path string) (Backend, error) {
	kind, err := NormalizeKind(kind)
	if err != nil {
		return nil, err
	}
	if kind == BackendMemory {
		return Memory{}, nil
	}
	path = strings.TrimSpace(path)
	if path == "" {
		if path, err = DefaultTasksPath(kind); err != nil {
			return nil, err
		}
	}
	if kind == BackendSQLite {
		return SQLite{Path: path}, nil
	}
	return JSONFile{Path: path}, nil
}

// KindForPath guesses a backend kind from a file extension.
func KindForPath(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(path))) {
	case ".json":
		return BackendJSON, true
	case ".sqlite", ".sqlite3", ".db":
		return BackendSQLite, true
	default:
		return "", false
	}
}
