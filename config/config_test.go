package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Port != "8080" {
		t.Errorf("App.Port = %q, want 8080", cfg.App.Port)
	}
	if cfg.Reminder.Interval != time.Hour || cfg.Reminder.Lead != 24*time.Hour || cfg.Reminder.Window != time.Hour {
		t.Errorf("Reminder = %+v, want 1h/24h/1h", cfg.Reminder)
	}
	if cfg.Booking.DefaultDurationMinutes != 30 {
		t.Errorf("DefaultDurationMinutes = %d, want 30", cfg.Booking.DefaultDurationMinutes)
	}
	if cfg.Search.DefaultRadiusKm != 25 || cfg.Search.MaxRadiusKm != 500 {
		t.Errorf("Search = %+v", cfg.Search)
	}
}

func TestLoadReadsEnvFileAndEnvironmentOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET=file-secret\nAPP_PORT=9000\nREMINDER_INTERVAL=30m\nREMINDER_LEAD=bogus\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.JWT.Secret != "file-secret" {
		t.Errorf("JWT.Secret = %q", cfg.JWT.Secret)
	}
	if cfg.App.Port != "9100" {
		t.Errorf("App.Port = %q, want env override 9100", cfg.App.Port)
	}
	if cfg.Reminder.Interval != 30*time.Minute {
		t.Errorf("Reminder.Interval = %v, want 30m", cfg.Reminder.Interval)
	}
	if cfg.Reminder.Lead != 24*time.Hour {
		t.Errorf("Reminder.Lead = %v, want fallback 24h", cfg.Reminder.Lead)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("Load() expected error without JWT_SECRET")
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.CORS.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORS.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.CORS.AllowedOrigins[i], want[i])
		}
	}
	if cfg.Redis.PoolSize != 10 || cfg.Redis.DialTimeout != 5*time.Second {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
}
