package config

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func setBase(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/padel?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "secret")
	for _, k := range []string{"SERVER_PORT", "LOG_LEVEL", "RATING_SWEEP_SCHEDULE", "CORS_ALLOWED_ORIGINS", "R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setBase(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 8080 || cfg.LogLevel != slog.LevelInfo || cfg.RatingSweepSchedule != "0 */5 * * * *" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"*"}) {
		t.Fatalf("origins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ArchiveEnabled() {
		t.Fatal("archive storage should be disabled without R2 settings")
	}
}

func TestLoadOverrides(t *testing.T) {
	setBase(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATING_SWEEP_SCHEDULE", "@every 1m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://club.example, https://app.example,")
	t.Setenv("R2_ACCOUNT_ID", "acc")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "archives")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != 9090 || cfg.LogLevel != slog.LevelDebug || cfg.RatingSweepSchedule != "@every 1m" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if want := []string{"https://club.example", "https://app.example"}; !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Fatalf("origins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
	if !cfg.ArchiveEnabled() {
		t.Fatal("archive storage should be enabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"missing database", "DATABASE_URL", "", "DATABASE_URL"},
		{"missing secret", "JWT_SECRET_KEY", "", "JWT_SECRET_KEY"},
		{"port not a number", "SERVER_PORT", "http", "SERVER_PORT"},
		{"port out of range", "SERVER_PORT", "70000", "SERVER_PORT"},
		{"log level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
		{"sweep schedule", "RATING_SWEEP_SCHEDULE", "every now and then", "RATING_SWEEP_SCHEDULE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setBase(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %s", err, tc.want)
			}
		})
	}
}
