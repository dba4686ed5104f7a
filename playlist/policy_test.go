package playlist

import (
	"testing"
	"time"

	"github.com/mkobayashi/playdeck/deck"
)

func TestAllowAdd(t *testing.T) {
	tests := []struct {
		name   string
		max    int
		active int
		admin  bool
		want   bool
	}{
		{"under limit", 2, 1, false, true},
		{"at limit", 2, 2, false, false},
		{"zero allows nothing", 0, 0, false, false},
		{"admin bypasses limit", 2, 2, true, true},
		{"admin bypasses zero", 0, 0, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := deck.Config{MaxAddCount: tt.max}
			if got := allowAdd(cfg, tt.active, tt.admin); got != tt.want {
				t.Errorf("allowAdd(%d, %d, %v) = %v, want %v", tt.max, tt.active, tt.admin, got, tt.want)
			}
		})
	}
}

func TestAllowSkip(t *testing.T) {
	tests := []struct {
		name  string
		max   int
		skips int
		admin bool
		want  bool
	}{
		{"under limit", 2, 1, false, true},
		{"at limit", 2, 2, false, false},
		{"zero allows nothing", 0, 0, false, false},
		{"admin bypasses limit", 1, 5, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := deck.Config{MaxSkipCount: tt.max}
			if got := allowSkip(cfg, tt.skips, tt.admin); got != tt.want {
				t.Errorf("allowSkip(%d, %d, %v) = %v, want %v", tt.max, tt.skips, tt.admin, got, tt.want)
			}
		})
	}
}

func TestCooldownElapsed(t *testing.T) {
	tests := []struct {
		name    string
		limit   time.Duration
		elapsed time.Duration
		admin   bool
		want    bool
	}{
		{"zero disables cooldown", 0, 0, false, true},
		{"before limit", 10 * time.Second, 5 * time.Second, false, false},
		{"exactly at limit", 10 * time.Second, 10 * time.Second, false, true},
		{"past limit", 10 * time.Second, 15 * time.Second, false, true},
		{"admin bypasses", 10 * time.Second, 0, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := deck.Config{SkipLimitTime: tt.limit}
			if got := cooldownElapsed(cfg, tt.elapsed, tt.admin); got != tt.want {
				t.Errorf("cooldownElapsed(%s, %s, %v) = %v, want %v", tt.limit, tt.elapsed, tt.admin, got, tt.want)
			}
		})
	}
}
