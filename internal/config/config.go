// Package config loads the stoptime configuration.
//
// Sources, lowest precedence first: built-in defaults, a YAML file, a .env file,
// STOPTIME_* environment variables. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Default file names, looked up in the working directory.
const (
	DefaultFile    = "stoptime.yaml"
	DefaultEnvFile = ".env"
	EnvPrefix      = "STOPTIME_"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// RedisConfig configures the redis store and locker.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Config is the resolved configuration.
type Config struct {
	Store        string        `mapstructure:"store" yaml:"store"`
	Dir          string        `mapstructure:"dir" yaml:"dir"`
	SQLitePath   string        `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	Redis        RedisConfig   `mapstructure:"redis" yaml:"redis"`
	BatchSize    uint64        `mapstructure:"batch_size" yaml:"batch_size"`
	PollInterval uint64        `mapstructure:"poll_interval" yaml:"poll_interval"`
	Retire       bool          `mapstructure:"retire" yaml:"retire"`
	Lock         bool          `mapstructure:"lock" yaml:"lock"`
	LockTTL      time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
	MetricsAddr  string        `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	LogJSON      bool          `mapstructure:"log_json" yaml:"log_json"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Store:        StoreFile,
		Dir:          ".stoptime/checkpoints",
		SQLitePath:   ".stoptime/checkpoints.db",
		Redis:        RedisConfig{Addr: "localhost:6379", Prefix: "stoptime:"},
		BatchSize:    domain.DefaultBatchSize,
		PollInterval: domain.DefaultPollInterval,
		LockTTL:      24 * time.Hour,
		LogLevel:     "info",
	}
}

// envKeys maps environment variable suffixes to nested config keys.
var envKeys = map[string][]string{
	"STORE":          {"store"},
	"DIR":            {"dir"},
	"SQLITE_PATH":    {"sqlite_path"},
	"REDIS_ADDR":     {"redis", "addr"},
	"REDIS_PASSWORD": {"redis", "password"},
	"REDIS_DB":       {"redis", "db"},
	"REDIS_PREFIX":   {"redis", "prefix"},
	"REDIS_TTL":      {"redis", "ttl"},
	"BATCH_SIZE":     {"batch_size"},
	"POLL_INTERVAL":  {"poll_interval"},
	"RETIRE":         {"retire"},
	"LOCK":           {"lock"},
	"LOCK_TTL":       {"lock_ttl"},
	"METRICS_ADDR":   {"metrics_addr"},
	"LOG_LEVEL":      {"log_level"},
	"LOG_JSON":       {"log_json"},
}

// Options selects the sources read by Load.
type Options struct {
	// File is the YAML file. Empty means DefaultFile, which may be absent.
	File string
	// EnvFile is the dotenv file. Empty means DefaultEnvFile, which may be absent.
	EnvFile string
	// Environ overrides os.Environ, mainly for tests.
	Environ []string
}

// Load resolves the configuration from defaults, file and environment.
func Load(opts Options) (Config, error) {
	raw := map[string]any{}

	file, required := opts.File, true
	if file == "" {
		file, required = DefaultFile, false
	}
	if err := readYAML(file, required, raw); err != nil {
		return Config{}, err
	}

	envFile, required := opts.EnvFile, true
	if envFile == "" {
		envFile, required = DefaultEnvFile, false
	}
	env, err := readEnv(envFile, required, opts.Environ)
	if err != nil {
		return Config{}, err
	}
	for suffix, path := range envKeys {
		if v, ok := env[EnvPrefix+suffix]; ok {
			setPath(raw, path, v)
		}
	}

	cfg := Defaults()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want memory, file, sqlite or redis)", c.Store)
	}
	if c.BatchSize == 0 {
		return errors.New("batch_size must be positive")
	}
	if c.Store == StoreRedis && c.Redis.Addr == "" {
		return errors.New("redis.addr is required for the redis store")
	}
	return nil
}

func readYAML(path string, required bool, into map[string]any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &into); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// readEnv merges the dotenv file under the process environment.
func readEnv(path string, required bool, environ []string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || required {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
		env = map[string]string{}
	}

	if environ == nil {
		environ = os.Environ()
	}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

func setPath(m map[string]any, path []string, v any) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
