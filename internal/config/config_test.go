package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Errorf("server.address = %q", cfg.Server.Address)
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.QuotaBytes != 5*1024*1024 {
		t.Errorf("unexpected storage defaults %+v", cfg.Storage)
	}
	if cfg.Storage.SessionsKey != "sessions-store" || cfg.Storage.ThemeKey != "theme-store" {
		t.Errorf("unexpected storage keys %+v", cfg.Storage)
	}
	if cfg.JWT.Expiration != 24*time.Hour {
		t.Errorf("jwt.expiration = %v", cfg.JWT.Expiration)
	}
	want := TimerConfig{Prep: 5 * time.Second, Hang: 7 * time.Second, Rest: 180 * time.Second, Tick: 100 * time.Millisecond}
	if cfg.Timer != want {
		t.Errorf("timer = %+v, want %+v", cfg.Timer, want)
	}
	if cfg.Recommend.MaxLevel != 0 {
		t.Errorf("recommend.max_level = %d", cfg.Recommend.MaxLevel)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
storage:
  backend: memory
  quota_bytes: 1024
recommend:
  max_level: 12
timer:
  rest: 90s
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("S3_PREFIX", "climbs")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Backend != BackendMemory || cfg.Storage.QuotaBytes != 1024 {
		t.Errorf("file values not applied: %+v", cfg.Storage)
	}
	if cfg.Recommend.MaxLevel != 12 || cfg.Timer.Rest != 90*time.Second {
		t.Errorf("file values not applied: %+v %+v", cfg.Recommend, cfg.Timer)
	}
	if cfg.Server.Address != ":9090" || cfg.S3.Prefix != "climbs" {
		t.Errorf("env values not applied: %q %q", cfg.Server.Address, cfg.S3.Prefix)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Storage: StorageConfig{Backend: BackendMemory},
		Timer:   TimerConfig{Tick: time.Millisecond},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}

	tests := map[string]func(c *Config){
		"unknown backend": func(c *Config) { c.Storage.Backend = "floppy" },
		"negative quota":  func(c *Config) { c.Storage.QuotaBytes = -1 },
		"negative level":  func(c *Config) { c.Recommend.MaxLevel = -3 },
		"auth without jwt": func(c *Config) {
			c.Auth.PassphraseHash = "$2a$10$abc"
		},
		"zero tick": func(c *Config) { c.Timer.Tick = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
