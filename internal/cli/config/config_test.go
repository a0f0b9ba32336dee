package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoad(t *testing.T) {
	// No config file: defaults apply
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Catalog.Driver != "file" {
		t.Errorf("expected default driver 'file', got %s", cfg.Catalog.Driver)
	}
	if cfg.Catalog.Path != "models.yml" {
		t.Errorf("expected default path 'models.yml', got %s", cfg.Catalog.Path)
	}
	if cfg.Catalog.Schema != "public" {
		t.Errorf("expected default schema 'public', got %s", cfg.Catalog.Schema)
	}
	if cfg.Snapshot.Backend != "none" {
		t.Errorf("expected default backend 'none', got %s", cfg.Snapshot.Backend)
	}
	if cfg.Snapshot.TTL != 10*time.Minute {
		t.Errorf("expected default ttl 10m, got %s", cfg.Snapshot.TTL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected default log level 'warn', got %s", cfg.Log.Level)
	}
	if cfg.File != "" {
		t.Errorf("expected no config file, got %s", cfg.File)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	configContent := `
catalog:
  driver: pgx
  dsn: postgres://localhost/blog
  schema: blog
snapshot:
  backend: redis
  ttl: 1h
  redis:
    addr: cache:6379
    db: 2
log:
  level: debug
  format: json
`
	if err := os.WriteFile("modelref.yml", []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Catalog.Driver != "pgx" {
		t.Errorf("expected driver 'pgx', got %s", cfg.Catalog.Driver)
	}
	if cfg.Catalog.DSN != "postgres://localhost/blog" {
		t.Errorf("unexpected dsn %s", cfg.Catalog.DSN)
	}
	if cfg.Catalog.FromFile() {
		t.Error("expected database catalog")
	}
	if cfg.Snapshot.TTL != time.Hour {
		t.Errorf("expected ttl 1h, got %s", cfg.Snapshot.TTL)
	}
	if cfg.Snapshot.Redis.Addr != "cache:6379" || cfg.Snapshot.Redis.DB != 2 {
		t.Errorf("unexpected redis config %+v", cfg.Snapshot.Redis)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json log format, got %s", cfg.Log.Format)
	}

	// Found files are reported through their resolved path
	if filepath.Base(cfg.File) != "modelref.yml" {
		t.Errorf("expected modelref.yml, got %s", cfg.File)
	}
}

func TestLoadFromParentDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "modelref.yaml"), []byte("catalog:\n  path: schema/models.yml\n"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	chdir(t, nested)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Catalog.Path != "schema/models.yml" {
		t.Errorf("expected path from parent config, got %s", cfg.Catalog.Path)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "custom.yml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected level info, got %s", cfg.Log.Level)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MODELREF_CATALOG_DRIVER", "sqlite3")
	t.Setenv("MODELREF_CATALOG_DSN", "file:blog.db")
	t.Setenv("MODELREF_SNAPSHOT_BACKEND", "memory")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Catalog.Driver != "sqlite3" || cfg.Catalog.DSN != "file:blog.db" {
		t.Errorf("expected env overrides, got %+v", cfg.Catalog)
	}
	if cfg.Snapshot.Backend != "memory" {
		t.Errorf("expected memory backend, got %s", cfg.Snapshot.Backend)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Catalog:  CatalogConfig{Driver: "file", Path: "models.yml"},
			Snapshot: SnapshotConfig{Backend: "none"},
			Log:      LogConfig{Level: "warn", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Catalog.Driver = "mysql" }, true},
		{"file without path", func(c *Config) { c.Catalog.Path = "" }, true},
		{"database without dsn", func(c *Config) { c.Catalog.Driver = "postgres" }, true},
		{"database with dsn", func(c *Config) { c.Catalog.Driver = "postgres"; c.Catalog.DSN = "postgres://x" }, false},
		{"unknown backend", func(c *Config) { c.Snapshot.Backend = "etcd" }, true},
		{"redis without addr", func(c *Config) { c.Snapshot.Backend = "redis" }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
