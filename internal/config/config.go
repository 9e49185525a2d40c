package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultDBFileName = ".taskwire.db"
	DefaultOutput     = "json"
	DefaultLogLevel   = "debug"

	DefaultStoreMaxOpenConns  = 1
	DefaultStoreBusyTimeoutMS = 5000

	configFileName           = ".taskwire.toml"
	configDirEnvKey          = "TASKWIRE_CONFIG_DIR"
	trustProjectConfigEnvKey = "TASKWIRE_TRUST_PROJECT_CONFIG"
	dbPathEnvKey             = "TASKWIRE_DB"
	outputEnvKey             = "TASKWIRE_OUTPUT"
)

// StoreConfig tunes the local snapshot database.
type StoreConfig struct {
	MaxOpenConns  int `toml:"max_open_conns"`
	BusyTimeoutMS int `toml:"busy_timeout_ms"`
}

// Config defines runtime configuration for taskwire.
type Config struct {
	DBPath                   string      `toml:"db_path"`
	Output                   string      `toml:"output"`
	LogLevel                 string      `toml:"log_level"`
	Store                    StoreConfig `toml:"store"`
	TrustedProjectConfigPath string      `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		DBPath:   "",
		Output:   DefaultOutput,
		LogLevel: DefaultLogLevel,
		Store: StoreConfig{
			MaxOpenConns:  DefaultStoreMaxOpenConns,
			BusyTimeoutMS: DefaultStoreBusyTimeoutMS,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"db_path",
	"output",
	"log_level",
	"store.max_open_conns",
	"store.busy_timeout_ms",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "db_path":
		return c.DBPath, nil
	case "output":
		return c.Output, nil
	case "log_level":
		return c.LogLevel, nil
	case "store.max_open_conns":
		return strconv.Itoa(c.Store.MaxOpenConns), nil
	case "store.busy_timeout_ms":
		return strconv.Itoa(c.Store.BusyTimeoutMS), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, configFileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if output := strings.TrimSpace(os.Getenv(outputEnvKey)); output != "" {
		cfg.Output = output
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "store.max_open_conns", "store.busy_timeout_ms":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "output":
		normalized := strings.ToLower(value)
		if normalized != "json" && normalized != "yaml" {
			return nil, fmt.Errorf("output must be json or yaml")
		}
		return normalized, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func (c *Config) normalizeDefaults() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if strings.TrimSpace(c.Output) == "" {
		c.Output = DefaultOutput
	}
	if c.Store.MaxOpenConns <= 0 {
		c.Store.MaxOpenConns = DefaultStoreMaxOpenConns
	}
	if c.Store.BusyTimeoutMS <= 0 {
		c.Store.BusyTimeoutMS = DefaultStoreBusyTimeoutMS
	}
}
