package config

import (
	"os"
	"testing"
	"time"
)

// writeTempConfig creates a minimal configuration file required for
// LoadConfig and returns its path.
func writeTempConfig(t *testing.T) string {
	t.Helper()
	content := `arbscan:
  name: "TestApp"
  version: "1.0"
engine:
  policy: two_sided
reader:
  timeout: 5s
storage:
  reports:
    enabled: false
`
	f, err := os.CreateTemp("", "cfg-*.yml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	return f.Name()
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Arbscan.Name != "TestApp" {
		t.Errorf("unexpected name: %s", cfg.Arbscan.Name)
	}
	if cfg.Reader.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Reader.Timeout)
	}
	// Defaults fill what the file leaves out.
	if cfg.Engine.TopN != 20 {
		t.Errorf("unexpected top_n default: %d", cfg.Engine.TopN)
	}
	if cfg.Venues.Kucoin.TickerURL == "" {
		t.Error("kucoin ticker URL default missing")
	}
	if !cfg.Venues.Bingx.RequiresSigning {
		t.Error("bingx should default to requires_signing")
	}
	if cfg.Venues.Bingx.MinCallInterval != time.Second {
		t.Errorf("unexpected bingx min_call_interval: %v", cfg.Venues.Bingx.MinCallInterval)
	}
}

func TestLoadConfigCredentialEnvOverride(t *testing.T) {
	path := writeTempConfig(t)
	defer os.Remove(path)

	t.Setenv("BINGX_API_KEY", "key-from-env")
	t.Setenv("BINGX_SECRET_KEY", "secret-from-env")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Venues.Bingx.APIKey != "key-from-env" {
		t.Errorf("api key not overridden: %s", cfg.Venues.Bingx.APIKey)
	}
	if cfg.Venues.Bingx.SecretKey != "secret-from-env" {
		t.Errorf("secret key not overridden: %s", cfg.Venues.Bingx.SecretKey)
	}
}

func TestValidateConfigRejectsBadPolicy(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Arbscan = ArbscanConfig{Name: "x", Version: "1"}
	cfg.Engine.Policy = "best_effort"
	if err := validateConfig(cfg); err == nil {
		t.Fatal("expected error for invalid policy")
	}
}

func TestLoadConfigProductionRequiresSigningCredentials(t *testing.T) {
	path := writeTempConfig(t)
	defer os.Remove(path)

	t.Setenv("APP_ENV", "production")
	for _, prefix := range []string{"BYBIT", "BINGX", "MEXC"} {
		t.Setenv(prefix+"_API_KEY", "")
		t.Setenv(prefix+"_SECRET_KEY", "")
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for missing signing credentials in production")
	}

	for _, prefix := range []string{"BYBIT", "BINGX", "MEXC"} {
		t.Setenv(prefix+"_API_KEY", "key")
		t.Setenv(prefix+"_SECRET_KEY", "secret")
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed with credentials present: %v", err)
	}

	// Development keeps degrading gracefully at call time instead.
	t.Setenv("APP_ENV", "development")
	for _, prefix := range []string{"BYBIT", "BINGX", "MEXC"} {
		t.Setenv(prefix+"_API_KEY", "")
		t.Setenv(prefix+"_SECRET_KEY", "")
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed in development: %v", err)
	}
}

func TestAppEnvironmentAliases(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", EnvironmentDevelopment},
		{"prod", EnvironmentProduction},
		{"stag", EnvironmentStaging},
		{"production", EnvironmentProduction},
	}
	for _, tt := range tests {
		t.Setenv("APP_ENV", tt.in)
		if got := AppEnvironment(); got != tt.want {
			t.Errorf("AppEnvironment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
