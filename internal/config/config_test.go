package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.DBName != "bakery_ims" {
		t.Errorf("database.dbname = %q", cfg.Database.DBName)
	}
	if cfg.Idempotency.TTL != 24*time.Hour {
		t.Errorf("idempotency.ttl = %v", cfg.Idempotency.TTL)
	}
	if cfg.Redis.Host != "" {
		t.Errorf("redis disabled by default, got host %q", cfg.Redis.Host)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`server:
  port: 9090
database:
  host: db.internal
  port: 6432
log:
  level: debug
idempotency:
  ttl: 1h
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("env should override file, port = %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 6432 {
		t.Errorf("database = %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.Password != "secret" {
		t.Errorf("database.password = %q", cfg.Database.Password)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
	if cfg.Idempotency.TTL != time.Hour {
		t.Errorf("idempotency.ttl = %v", cfg.Idempotency.TTL)
	}
	want := "host=db.internal port=6432 user=postgres password=secret dbname=bakery_ims sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Errorf("DSN = %q", got)
	}
}
