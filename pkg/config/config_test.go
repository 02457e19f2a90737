package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNFromParts(t *testing.T) {
	cfg := DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "khidmaty",
		Password: "s3cret",
		Name:     "khidmaty",
		SSLMode:  "disable",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN failed: %v", err)
	}
	if !strings.HasPrefix(cfg.DSN, "postgres://khidmaty:") {
		t.Fatalf("unexpected dsn %q", cfg.DSN)
	}
	if !strings.Contains(cfg.DSN, "sslmode=disable") {
		t.Fatalf("dsn missing sslmode: %q", cfg.DSN)
	}
}

func TestEnsureDSNKeepsExplicitValue(t *testing.T) {
	cfg := DBConfig{DSN: "postgres://u:p@h:5432/db"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN failed: %v", err)
	}
	if cfg.DSN != "postgres://u:p@h:5432/db" {
		t.Fatalf("explicit dsn was rewritten: %q", cfg.DSN)
	}
}

func TestEnsureDSNRequiresParts(t *testing.T) {
	cfg := DBConfig{Host: "localhost"}
	if err := cfg.ensureDSN(); err == nil {
		t.Fatal("expected error when user/name are missing")
	}
}

func TestAppEnvHelpers(t *testing.T) {
	app := AppConfig{Env: "DEV"}
	if !app.IsDev() || app.IsProd() {
		t.Fatalf("env helpers mismatched for %q", app.Env)
	}
}
