package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config: %s", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(writeConfigFile(t, ""))
	if err != nil {
		t.Fatalf("failed to load config: %s", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("expected default listen :8080, got %s", cfg.Listen)
	}
	if cfg.StorePath != "deckdata" {
		t.Errorf("expected default store path deckdata, got %s", cfg.StorePath)
	}
	if cfg.Archive.Interval != time.Minute {
		t.Errorf("expected default archive interval 1m, got %s", cfg.Archive.Interval)
	}
	if len(cfg.Decks) != 1 || cfg.Decks[0].ID != 1 {
		t.Fatalf("expected a single default deck, got %+v", cfg.Decks)
	}
	if cfg.Decks[0].MaxAddCount != 10 || cfg.Decks[0].MaxQueueSize != 10 || cfg.Decks[0].MaxSkipCount != 2 {
		t.Errorf("unexpected default deck limits %+v", cfg.Decks[0])
	}
}

func TestLoadConfigFull(t *testing.T) {
	cfg, err := loadConfig(writeConfigFile(t, `
listen = ":9000"
store_path = "/tmp/decks"

[redis]
url = "redis://localhost:6379/0"

[archive]
path = "/tmp/playlog.json"
interval = "30s"

[[deck]]
id = 1
write_protect = true
max_add_count = 3
max_queue_size = 5
max_skip_count = 1
skip_limit_time = "45s"

[[deck]]
id = 2
`))
	if err != nil {
		t.Fatalf("failed to load config: %s", err)
	}
	if cfg.Listen != ":9000" {
		t.Errorf("expected listen :9000, got %s", cfg.Listen)
	}
	if cfg.Archive.Interval != 30*time.Second {
		t.Errorf("expected archive interval 30s, got %s", cfg.Archive.Interval)
	}
	if len(cfg.Decks) != 2 {
		t.Fatalf("expected 2 decks, got %d", len(cfg.Decks))
	}
	d := cfg.Decks[0]
	if !d.WriteProtect || d.MaxAddCount != 3 || d.MaxQueueSize != 5 || d.MaxSkipCount != 1 || d.SkipLimitTime != 45*time.Second {
		t.Errorf("unexpected deck config %+v", d)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"non-positive id", "[[deck]]\nid = 0\n"},
		{"duplicate id", "[[deck]]\nid = 1\n\n[[deck]]\nid = 1\n"},
		{"negative limit", "[[deck]]\nid = 1\nmax_add_count = -1\n"},
		{"channel without token", "[[deck]]\nid = 1\ndiscord_channel = 123456789\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfigFile(t, tt.contents))
			var verrs validationErrors
			if !errors.As(err, &verrs) {
				t.Errorf("expected validation errors, got %v", err)
			}
		})
	}
}
