// Package player implements playback transitions. Tracker keeps
// in-process start times and derives elapsed playback from the wall
// clock; MPV additionally drives an mpv instance and reads the real
// playback position from it.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/mkobayashi/playdeck/deck"
)

// Tracker records when each deck's current item started playing.
// PlaybackTime is the wall-clock time since the transition, which is
// a good enough cooldown source when no real player is attached.
type Tracker struct {
	mu      sync.Mutex
	playing map[int]playingItem
	now     func() time.Time
}

type playingItem struct {
	id      deck.ItemID
	started time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		playing: make(map[int]playingItem),
		now:     time.Now,
	}
}

func (t *Tracker) PlayItem(_ context.Context, item deck.QueueItem) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playing[item.Deck] = playingItem{id: item.ID, started: t.now()}
	return nil
}

func (t *Tracker) PlaybackTime(_ context.Context, item deck.QueueItem) (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	current, ok := t.playing[item.Deck]
	if !ok || current.id != item.ID {
		return 0, nil
	}
	return t.now().Sub(current.started), nil
}
