package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NG_CONFIG_PATH", "NG_HTTP_ADDR", "NG_CORS_ORIGINS", "NG_ENGINE_TYPE", "LOG_MODE"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "development" {
		t.Fatalf("unexpected env: %q", cfg.Env)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected addr: %q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ShutdownTimeout.Duration != 15*time.Second {
		t.Fatalf("unexpected shutdown timeout: %v", cfg.HTTP.ShutdownTimeout.Duration)
	}
	if cfg.Engine.Type != "mock" {
		t.Fatalf("unexpected engine type: %q", cfg.Engine.Type)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LOG_MODE", "production")
	t.Setenv("NG_HTTP_ADDR", ":9090")
	t.Setenv("NG_ENGINE_TYPE", "none")
	t.Setenv("NG_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "production" {
		t.Fatalf("unexpected env: %q", cfg.Env)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected addr: %q", cfg.HTTP.Addr)
	}
	if cfg.Engine.Type != "none" {
		t.Fatalf("unexpected engine type: %q", cfg.Engine.Type)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.HTTP.CORSOrigins) != 2 || cfg.HTTP.CORSOrigins[0] != want[0] || cfg.HTTP.CORSOrigins[1] != want[1] {
		t.Fatalf("unexpected origins: %#v", cfg.HTTP.CORSOrigins)
	}
}

func TestLoadConfigUnknownEngine(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("NG_ENGINE_TYPE", "llama")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown engine type")
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearConfigEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"env": "production",
		"http": {"addr": ":7070", "shutdown_timeout": "3s", "idle_timeout": 60000000000},
		"engine": {"type": "none"}
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("NG_CONFIG_PATH", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Fatalf("unexpected addr: %q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ShutdownTimeout.Duration != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout: %v", cfg.HTTP.ShutdownTimeout.Duration)
	}
	if cfg.HTTP.IdleTimeout.Duration != time.Minute {
		t.Fatalf("unexpected idle timeout: %v", cfg.HTTP.IdleTimeout.Duration)
	}
	// Fields the file omits fall back to validated defaults.
	if cfg.HTTP.ReadHeaderTimeout.Duration != 5*time.Second {
		t.Fatalf("unexpected read header timeout: %v", cfg.HTTP.ReadHeaderTimeout.Duration)
	}
}
