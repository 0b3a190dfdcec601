package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/ledger_test")

	cfg := Load()
	if cfg.App.Env != "development" {
		t.Fatalf("expected development env, got %s", cfg.App.Env)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("expected port 8080, got %s", cfg.App.Port)
	}
	if cfg.DB.MigrationsPath != "file://migrations" {
		t.Fatalf("unexpected migrations path: %s", cfg.DB.MigrationsPath)
	}
	if cfg.Payout.QueueSize != 16 {
		t.Fatalf("expected queue size 16, got %d", cfg.Payout.QueueSize)
	}
	if cfg.Sec.AdminToken != "" {
		t.Fatalf("admin token should default empty, got %q", cfg.Sec.AdminToken)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/ledger_test")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ADMIN_TOKEN", "  secret  ")
	t.Setenv("PAYOUT_QUEUE_SIZE", "32")

	cfg := Load()
	if cfg.App.Env != "production" || cfg.App.Port != "9090" {
		t.Fatalf("unexpected app config: %+v", cfg.App)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr)
	}
	if cfg.Sec.AdminToken != "secret" {
		t.Fatalf("admin token should be trimmed, got %q", cfg.Sec.AdminToken)
	}
	if cfg.Payout.QueueSize != 32 {
		t.Fatalf("expected queue size 32, got %d", cfg.Payout.QueueSize)
	}
}
