package playlist

import (
	"time"

	"github.com/mkobayashi/playdeck/deck"
)

// The admin exemption lives in these predicates and nowhere else.
// Admins pass every count- and time-based limit but are still subject
// to write protection, queue capacity, and existence checks, which
// are not quota decisions and are enforced by the engine directly.

// allowAdd reports whether an account with `active` currently queued
// items may add another. A MaxAddCount of zero allows nothing for
// non-admins.
func allowAdd(cfg deck.Config, active int, admin bool) bool {
	if admin {
		return true
	}
	return active < cfg.MaxAddCount
}

// allowSkip reports whether an account that has performed `skips`
// skips may perform another.
func allowSkip(cfg deck.Config, skips int, admin bool) bool {
	if admin {
		return true
	}
	return skips < cfg.MaxSkipCount
}

// cooldownElapsed reports whether enough playback time has passed for
// a skip. A SkipLimitTime of zero disables the cooldown entirely.
func cooldownElapsed(cfg deck.Config, elapsed time.Duration, admin bool) bool {
	if admin || cfg.SkipLimitTime == 0 {
		return true
	}
	return elapsed >= cfg.SkipLimitTime
}
