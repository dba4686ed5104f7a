package deck

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ItemID identifies a queue item. The same id keys the item's log
// entry, which outlives the item.
type ItemID = uuid.UUID

// Duration marshals to JSON as whole seconds, matching the wire
// format expected by broadcast subscribers.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(time.Duration(d) / time.Second))
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s int64
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = Duration(time.Duration(s) * time.Second)
	return nil
}

// MusicInfo is the playable metadata resolved from a link.
type MusicInfo struct {
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Duration Duration `json:"duration"`
}

// QueueItem is a single queued track. Items are FIFO-ordered by a
// store-assigned sequence and are never mutated in place.
type QueueItem struct {
	ID      ItemID    `json:"id"`
	Deck    int       `json:"deck"`
	Link    string    `json:"link"`
	Account string    `json:"account"`
	Music   MusicInfo `json:"music_info"`
	AddedAt time.Time `json:"added_at"`

	seq uint64
}

// LogEntry records one successful addition. Entries are append-only
// and never deleted; SkippedAccount and SkippedAt are set at most
// once, when the item is skipped.
type LogEntry struct {
	UUID           ItemID    `json:"uuid"`
	Deck           int       `json:"deck"`
	Account        string    `json:"account"`
	AddedAt        time.Time `json:"added_at"`
	SkippedAccount string    `json:"skipped_account,omitempty"`
	SkippedAt      time.Time `json:"skipped_at,omitempty"`
}

// Skipped reports whether a skip has been recorded against the entry.
func (e LogEntry) Skipped() bool {
	return !e.SkippedAt.IsZero()
}

// Config holds a deck's admission-control settings. Counts of zero
// allow nothing for non-admins; a SkipLimitTime of zero disables the
// skip cooldown.
type Config struct {
	WriteProtect  bool
	MaxAddCount   int
	MaxQueueSize  int
	MaxSkipCount  int
	SkipLimitTime time.Duration
}
