package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/modelref/internal/cli/config"
)

// run executes the root command with args and returns its output
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--no-color"))

	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "modelref", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	registered := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		registered[sub.Name()] = true
	}
	for _, expected := range []string{"version", "models", "describe", "relation", "cursor", "introspect", "completion"} {
		assert.True(t, registered[expected], "expected command %s to be registered", expected)
	}

	for _, flag := range []string{"config", "catalog", "driver", "dsn", "schema", "format", "log-level", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "expected persistent flag --%s", flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "go1.23"
	defer func() {
		Version, GitCommit, BuildDate, GoVersion = "dev", "unknown", "unknown", "unknown"
	}()

	out, err := run(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "modelref version: 1.0.0-test")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "go1.23")
}

func TestVersionCommand_IgnoresInvalidConfig(t *testing.T) {
	t.Setenv("MODELREF_CATALOG_DRIVER", "mysql")

	_, err := run(t, "version")
	assert.NoError(t, err)
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "modelref")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "models", "--catalog", "testdata/blog.yml", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("MODELREF_SNAPSHOT_BACKEND", "etcd")

	_, err := run(t, "models", "--catalog", "testdata/blog.yml")
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = newLogger(config.LogConfig{Level: "error", Format: "console"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(0))

	_, err = newLogger(config.LogConfig{Level: "verbose", Format: "console"})
	assert.Error(t, err)
}

func TestSourceKey(t *testing.T) {
	key, err := sourceKey(config.CatalogConfig{Driver: "file", Path: "testdata/blog.yml"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "file:"))

	again, err := sourceKey(config.CatalogConfig{Driver: "file", Path: "testdata/blog.yml"})
	require.NoError(t, err)
	assert.Equal(t, key, again)

	_, err = sourceKey(config.CatalogConfig{Driver: "file", Path: "testdata/missing.yml"})
	assert.Error(t, err)

	db, err := sourceKey(config.CatalogConfig{Driver: "pgx", DSN: "postgres://u:secret@db/app", Schema: "public"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(db, "pgx:"))
	assert.NotContains(t, db, "secret")
}
