package config

import (
	"slices"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every known variable so host settings do not leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("Expected no redis address by default, got %s", cfg.RedisAddr)
	}
	if cfg.CatalogRefresh != 12*time.Hour {
		t.Errorf("Expected catalog refresh 12h, got %s", cfg.CatalogRefresh)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected session TTL 30m, got %s", cfg.SessionTTL)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("Expected wildcard origin, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CATALOG_URL", "https://example.com/catalog.tsv")
	t.Setenv("CATALOG_REFRESH", "1h")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Expected env prod, got %s", cfg.Env)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("Unexpected redis settings %s/%d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.CatalogRefresh != time.Hour {
		t.Errorf("Expected catalog refresh 1h, got %s", cfg.CatalogRefresh)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Errorf("Expected session TTL 45m, got %s", cfg.SessionTTL)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !slices.Equal(cfg.AllowedOrigins, want) {
		t.Errorf("Expected origins %v, got %v", want, cfg.AllowedOrigins)
	}
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"port not a number", "PORT", "abc", "PORT must be a valid number"},
		{"port zero", "PORT", "0", "PORT must be between 1 and 65535"},
		{"port too high", "PORT", "65536", "PORT must be between 1 and 65535"},
		{"port privileged", "PORT", "80", "PORT 80 is privileged"},
		{"address", "ADDRESS", "invalid", "ADDRESS must be a valid IP address"},
		{"public address", "ADDRESS", "8.8.8.8", "is a public IP"},
		{"env", "ENV", "invalid", "ENV must be one of"},
		{"log level", "LOG_LEVEL", "invalid", "LOG_LEVEL must be one of"},
		{"request body", "MAX_REQUEST_BODY", "-1", "MAX_REQUEST_BODY must be positive"},
		{"retention", "LOG_RETENTION_WEEKS", "60", "LOG_RETENTION_WEEKS is too large"},
		{"log file size", "MAX_LOG_FILE_SIZE", "10", "MAX_LOG_FILE_SIZE is too small"},
		{"redis address", "REDIS_ADDR", "localhost", "REDIS_ADDR must be host:port"},
		{"redis db", "REDIS_DB", "16", "REDIS_DB must be between 0 and 15"},
		{"catalog url scheme", "CATALOG_URL", "ftp://example.com/c.tsv", "CATALOG_URL must use http or https"},
		{"catalog refresh", "CATALOG_REFRESH", "10s", "CATALOG_REFRESH"},
		{"session ttl", "SESSION_TTL", "5s", "SESSION_TTL"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%s, got nil", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %v", tc.expected, err)
			}
		})
	}
}

func TestMalformedDurationFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected default session TTL, got %s", cfg.SessionTTL)
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
		wantErr  bool
	}{
		{"dev", EnvDevelopment, false},
		{"development", EnvDevelopment, false},
		{"staging", EnvStaging, false},
		{"prod", EnvProduction, false},
		{"production", EnvProduction, false},
		{" Test ", EnvTest, false},
		{"invalid", EnvDevelopment, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := ParseEnvironment(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEnvironment(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if env != tt.expected {
				t.Errorf("ParseEnvironment(%q) = %s, want %s", tt.input, env, tt.expected)
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	tests := []struct {
		env      Environment
		expected string
	}{
		{EnvDevelopment, "dev"},
		{EnvStaging, "staging"},
		{EnvProduction, "prod"},
		{EnvTest, "test"},
	}

	for _, tt := range tests {
		if got := tt.env.String(); got != tt.expected {
			t.Errorf("String() = %s, want %s", got, tt.expected)
		}
	}
}
