package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileNames are the config file names looked up, in order
var FileNames = []string{"modelref.yml", "modelref.yaml"}

// EnvPrefix prefixes environment overrides (MODELREF_CATALOG_PATH, ...)
const EnvPrefix = "MODELREF"

// ErrNoConfigFile is returned by FindConfigFile when no config file exists
// in the working directory or any of its parents
var ErrNoConfigFile = errors.New("no modelref.yml found")

// Config represents the modelref configuration
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Log      LogConfig      `mapstructure:"log"`

	// File is the config file that was read, empty when only defaults apply
	File string `mapstructure:"-"`
}

// CatalogConfig selects where models come from
type CatalogConfig struct {
	Path   string `mapstructure:"path"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
}

// FromFile reports whether the catalog is read from a YAML file
func (c CatalogConfig) FromFile() bool {
	return c.Driver == "file"
}

// SnapshotConfig configures the catalog snapshot store
type SnapshotConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig represents Redis connection settings for snapshots
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig represents logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads the configuration. An empty path searches the working
// directory and its parents for modelref.yml or modelref.yaml; when none is
// found the defaults apply. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		found, err := FindConfigFile()
		if err != nil && !errors.Is(err, ErrNoConfigFile) {
			return nil, err
		}
		path = found
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.File = path

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.path", "models.yml")
	v.SetDefault("catalog.driver", "file")
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("catalog.schema", "public")
	v.SetDefault("snapshot.backend", "none")
	v.SetDefault("snapshot.ttl", "10m")
	v.SetDefault("snapshot.prefix", "modelref:catalog:")
	v.SetDefault("snapshot.redis.addr", "localhost:6379")
	v.SetDefault("snapshot.redis.password", "")
	v.SetDefault("snapshot.redis.db", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// FindConfigFile walks up from the working directory looking for a config file
func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfigFile
		}
		dir = parent
	}
}

// Validate checks enumerated settings and required combinations
func (c *Config) Validate() error {
	switch c.Catalog.Driver {
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required when catalog.driver is 'file'")
		}
	case "postgres", "pgx", "sqlite3":
		if c.Catalog.DSN == "" {
			return fmt.Errorf("catalog.dsn is required when catalog.driver is '%s'", c.Catalog.Driver)
		}
	default:
		return fmt.Errorf("catalog.driver must be one of file, postgres, pgx, sqlite3, got: %s", c.Catalog.Driver)
	}

	switch c.Snapshot.Backend {
	case "none", "memory":
	case "redis":
		if c.Snapshot.Redis.Addr == "" {
			return fmt.Errorf("snapshot.redis.addr is required when snapshot.backend is 'redis'")
		}
	default:
		return fmt.Errorf("snapshot.backend must be one of none, memory, redis, got: %s", c.Snapshot.Backend)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be 'console' or 'json', got: %s", c.Log.Format)
	}

	return nil
}
