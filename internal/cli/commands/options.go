package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/modelref/internal/catalog"
	"github.com/conduit-lang/modelref/internal/cli/config"
	"github.com/conduit-lang/modelref/internal/introspect"
	"github.com/conduit-lang/modelref/internal/snapshot"
)

var errInvalidConfig = errors.New("invalid configuration")

// options holds the global flags and the state derived from them. Config
// and logger are built on first use so that commands like version work
// without a valid configuration.
type options struct {
	configFile  string
	catalogPath string
	driver      string
	dsn         string
	schema      string
	format      string
	logLevel    string
	noColor     bool

	cmd    *cobra.Command
	cfg    *config.Config
	logger *zap.Logger
}

func (o *options) bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "Config file (default: modelref.yml in this or a parent directory)")
	flags.StringVar(&o.catalogPath, "catalog", "", "Catalog YAML file (overrides catalog.path)")
	flags.StringVar(&o.driver, "driver", "", "Catalog source: file, postgres, pgx or sqlite3 (overrides catalog.driver)")
	flags.StringVar(&o.dsn, "dsn", "", "Database connection string (overrides catalog.dsn)")
	flags.StringVar(&o.schema, "schema", "", "Database schema to introspect (overrides catalog.schema)")
	flags.StringVar(&o.format, "format", "table", "Output format: table or json")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides log.level)")
	flags.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
}

// config loads the configuration and applies flag overrides
func (o *options) config(cmd *cobra.Command) (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}

	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidConfig, err)
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog.Path = o.catalogPath
		if !flags.Changed("driver") {
			cfg.Catalog.Driver = "file"
		}
	}
	if flags.Changed("driver") {
		cfg.Catalog.Driver = o.driver
	}
	if flags.Changed("dsn") {
		cfg.Catalog.DSN = o.dsn
	}
	if flags.Changed("schema") {
		cfg.Catalog.Schema = o.schema
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidConfig, err)
	}

	o.cfg = cfg
	return cfg, nil
}

// log returns the command logger, building it from the log config
func (o *options) log(cmd *cobra.Command) (*zap.Logger, error) {
	if o.logger != nil {
		return o.logger, nil
	}

	cfg, err := o.config(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidConfig, err)
	}
	o.logger = logger
	return logger, nil
}

func (o *options) close() {
	if o.logger != nil {
		_ = o.logger.Sync()
	}
}

// newLogger builds a development (console) or production (json) logger
// writing to stderr at the configured level
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}

	zapConfig := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	return zapConfig.Build()
}

// catalog loads the configured catalog, going through the snapshot store
// when one is configured
func (o *options) catalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := o.log(cmd)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	source := catalogSource(cfg.Catalog, logger)

	store, err := openStore(ctx, cfg.Snapshot)
	if err != nil {
		logger.Warn("snapshot store unavailable, loading from source", zap.Error(err))
		return source(ctx)
	}
	if store == nil {
		return source(ctx)
	}
	defer store.Close()

	key, err := sourceKey(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	loader := snapshot.NewLoader(store,
		snapshot.WithTTL(cfg.Snapshot.TTL),
		snapshot.WithLogger(logger),
	)
	return loader.Load(ctx, key, source)
}

// catalogSource returns the loader of the configured catalog origin
func catalogSource(cfg config.CatalogConfig, logger *zap.Logger) snapshot.Source {
	if cfg.FromFile() {
		return func(ctx context.Context) (*catalog.Catalog, error) {
			return catalog.LoadFile(cfg.Path)
		}
	}
	return func(ctx context.Context) (*catalog.Catalog, error) {
		return introspect.Open(ctx, cfg.Driver, cfg.DSN,
			introspect.WithSchema(cfg.Schema),
			introspect.WithLogger(logger),
		)
	}
}

// openStore returns the configured snapshot store, or nil for backend none
func openStore(ctx context.Context, cfg config.SnapshotConfig) (snapshot.Store, error) {
	storeConfig := snapshot.Config{DefaultTTL: cfg.TTL, Prefix: cfg.Prefix}

	switch cfg.Backend {
	case "memory":
		return snapshot.NewMemoryStoreWithConfig(storeConfig), nil
	case "redis":
		return snapshot.NewRedisStore(ctx, snapshot.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Config:   storeConfig,
		})
	default:
		return nil, nil
	}
}

// sourceKey identifies a catalog origin. File keys include the modification
// time so that edits invalidate stored snapshots.
func sourceKey(cfg config.CatalogConfig) (string, error) {
	if !cfg.FromFile() {
		return snapshot.SourceKey(cfg.Driver, cfg.DSN, cfg.Schema), nil
	}

	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to open catalog: %w", err)
	}
	return snapshot.SourceKey("file", path, strconv.FormatInt(info.ModTime().UnixNano(), 10)), nil
}
