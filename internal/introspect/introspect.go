// Package introspect builds a model catalog from a live database.
// Tables become models, columns become scalar or enum fields, primary keys
// become (possibly composite) catalog keys, and every foreign key yields a
// relation field on both sides.
package introspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/modelref/internal/catalog"
)

// ErrUnsupportedDriver is returned for drivers without an introspection dialect
var ErrUnsupportedDriver = errors.New("unsupported driver")

// Querier is an interface for executing SQL queries, allowing for testing and instrumentation
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// dialect reads raw table metadata from one database family
type dialect interface {
	name() string
	read(ctx context.Context, db Querier, schema string) (*schemaInfo, error)
}

// Introspector reads a catalog from a database
type Introspector struct {
	db      Querier
	dialect dialect
	schema  string
	logger  *zap.Logger
}

// Option configures an Introspector
type Option func(*Introspector)

// WithSchema sets the database schema to read (PostgreSQL only; default "public")
func WithSchema(schema string) Option {
	return func(i *Introspector) {
		if schema != "" {
			i.schema = schema
		}
	}
}

// WithLogger sets the introspector logger
func WithLogger(logger *zap.Logger) Option {
	return func(i *Introspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New creates an introspector for a database opened with driver
// ("postgres", "pgx" or "sqlite3").
func New(db Querier, driver string, opts ...Option) (*Introspector, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	i := &Introspector{
		db:      db,
		dialect: d,
		schema:  "public",
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return postgresDialect{}, nil
	case "sqlite3":
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
}

// Catalog reads the database metadata and builds a catalog
func (i *Introspector) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	start := time.Now()

	info, err := i.dialect.read(ctx, i.db, i.schema)
	if err != nil {
		return nil, fmt.Errorf("%s introspection failed: %w", i.dialect.name(), err)
	}

	c, err := info.build()
	if err != nil {
		return nil, err
	}

	i.logger.Info("database introspected",
		zap.String("dialect", i.dialect.name()),
		zap.String("schema", i.schema),
		zap.Int("models", c.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return c, nil
}

// Open connects with driver and dsn, introspects, and closes the connection
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*catalog.Catalog, error) {
	if _, err := dialectFor(driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	i, err := New(db, driver, opts...)
	if err != nil {
		return nil, err
	}
	return i.Catalog(ctx)
}
