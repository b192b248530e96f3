package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Database.Driver = %q, want sqlite3", cfg.Database.Driver)
	}
	if cfg.Blob.Backend != "filesystem" || cfg.Blob.Dir != "storage" {
		t.Errorf("Blob = %+v, want filesystem at storage", cfg.Blob)
	}
	if cfg.DefaultOwnerID != 1 {
		t.Errorf("DefaultOwnerID = %d, want 1", cfg.DefaultOwnerID)
	}
	if cfg.Redis.RateLimit.Capacity != 60 {
		t.Errorf("RateLimit.Capacity = %d, want 60", cfg.Redis.RateLimit.Capacity)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdfsum.toml")
	content := `
port = "9000"
page_limit_max = 50

[database]
driver = "mysql"
user = "app"
name = "pdfsum"

[summarizer]
url = "http://summarizer:8000/summarize"
timeout = "30s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("Port = %q, want env override 9100", cfg.Port)
	}
	if cfg.PageLimitMax != 50 {
		t.Errorf("PageLimitMax = %d, want 50", cfg.PageLimitMax)
	}
	if cfg.Database.Driver != "mysql" || cfg.Database.Name != "pdfsum" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Summarizer.Timeout != 30*time.Second {
		t.Errorf("Summarizer.Timeout = %v, want 30s", cfg.Summarizer.Timeout)
	}
	// Values the file did not mention keep their defaults.
	if cfg.MaxUploadMB != 32 {
		t.Errorf("MaxUploadMB = %d, want 32", cfg.MaxUploadMB)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.toml"))

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: "unknown database driver",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Blob.Backend = "s3" },
			wantErr: "s3_bucket required",
		},
		{
			name:    "bcrypt cost too low",
			mutate:  func(c *Config) { c.Auth.BcryptCost = 1 },
			wantErr: "bcrypt cost",
		},
		{
			name:    "mysql without credentials",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "mysql requires",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := loadRateLimitConfig(RateLimitConfig{})
	if rl.Capacity != 1 {
		t.Errorf("Capacity = %d, want clamp to 1", rl.Capacity)
	}
	if rl.RefillInterval != 2*time.Second || rl.RefillTokens != 1 {
		t.Errorf("refill = %d every %v, want 1 every 2s", rl.RefillTokens, rl.RefillInterval)
	}
	if rl.TTL != 10*time.Second {
		t.Errorf("TTL = %v, want 5x refill interval", rl.TTL)
	}
}
