package config

import (
	"os"
	"testing"
)

func TestConfigLoad_Defaults(t *testing.T) {
	_ = os.Unsetenv("MATCHPOINT_HTTP_PORT")
	_ = os.Unsetenv("MATCHPOINT_DB_DRIVER")
	_ = os.Unsetenv("MATCHPOINT_POSTGRES_DSN")
	_ = os.Unsetenv("MATCHPOINT_GEMINI_MODEL")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 8080 || cfg.GeminiModel != "gemini-2.0-flash" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected auto driver to resolve to sqlite without a DSN, got %s", cfg.DBDriver)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	_ = os.Setenv("MATCHPOINT_GEMINI_MODEL", "test-model")
	defer func() { _ = os.Unsetenv("MATCHPOINT_GEMINI_MODEL") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.GeminiModel != "test-model" {
		t.Fatalf("gemini model env override failed, got %s", cfg.GeminiModel)
	}
}

func TestResolveDefaults_PostgresFromDSN(t *testing.T) {
	cfg := &Config{DBDriver: "auto", PostgresDSN: "postgres://localhost/matchpoint"}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaults_RejectsUnknownDriver(t *testing.T) {
	cfg := &Config{DBDriver: "oracle"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestResolveDefaults_PostgresRequiresDSN(t *testing.T) {
	cfg := &Config{DBDriver: "postgres"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatalf("expected error when postgres is forced without a DSN")
	}
}
