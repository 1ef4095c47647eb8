package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Backends.
const (
	BackendSQLite = "sqlite"
	BackendHTTP   = "http"
)

func init() {
	// Name fields in validation errors by their config.yaml keys.
	validation.ErrorTag = "yaml"
}

type Config struct {
	// Backend selects the persistence collaborator ("sqlite" or "http").
	Backend string `yaml:"backend"`
	// Dir is the local SQLite store directory (default: <config dir>/data).
	Dir string `yaml:"dir,omitempty"`

	Remote RemoteConfig `yaml:"remote,omitempty"`

	// Debounce is the quiet period before an edited node is saved.
	Debounce time.Duration `yaml:"debounce,omitempty"`
	LogLevel string        `yaml:"logLevel,omitempty"`

	// CurrentNote is the note opened by the TUI when none is given.
	CurrentNote string `yaml:"currentNote,omitempty"`
}

type RemoteConfig struct {
	BaseURL string `yaml:"baseUrl,omitempty"`
	Token   string `yaml:"token,omitempty"`
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendSQLite, BackendHTTP)),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	); err != nil {
		return err
	}
	if c.Backend == BackendHTTP {
		return validation.ValidateStruct(&c.Remote,
			validation.Field(&c.Remote.BaseURL, validation.Required),
		)
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Backend:  BackendSQLite,
		Debounce: 500 * time.Millisecond,
		LogLevel: "warn",
	}
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.outline).
	if v := strings.TrimSpace(os.Getenv("OUTLINE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".outline"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns the store directory: cfg.Dir when set, else <config dir>/data.
func (c *Config) DataDir() (string, error) {
	if d := strings.TrimSpace(c.Dir); d != "" {
		return d, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// LoadConfig reads config.yaml over the defaults. A missing file is not an error.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	// Unique temp name + rename so a CLI and a TUI writing at once can't corrupt the file.
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}
