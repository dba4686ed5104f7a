package deck

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestQueueItemBinaryRoundtrip(t *testing.T) {
	want := QueueItem{
		ID:      uuid.New(),
		Deck:    7,
		Link:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Account: "account1",
		Music: MusicInfo{
			Title:    "Never Gonna Give You Up",
			Artist:   "Rick Astley",
			Duration: Duration(3*time.Minute + 33*time.Second),
		},
		AddedAt: time.Now(),
	}

	data, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to marshal: %s", err)
	}

	var got QueueItem
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("failed to unmarshal: %s", err)
	}

	if got.ID != want.ID ||
		got.Deck != want.Deck ||
		got.Link != want.Link ||
		got.Account != want.Account ||
		got.Music != want.Music ||
		!got.AddedAt.Equal(want.AddedAt) {
		t.Errorf("item mismatch: got %+v, want %+v", got, want)
	}
}

func TestLogEntryBinaryRoundtrip(t *testing.T) {
	want := LogEntry{
		UUID:    uuid.New(),
		Deck:    3,
		Account: "account1",
		AddedAt: time.Now(),
	}

	data, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to marshal: %s", err)
	}
	var got LogEntry
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("failed to unmarshal: %s", err)
	}
	if got.Skipped() {
		t.Error("expected entry to not be skipped")
	}
	if got.UUID != want.UUID || got.Deck != want.Deck || got.Account != want.Account || !got.AddedAt.Equal(want.AddedAt) {
		t.Errorf("entry mismatch: got %+v, want %+v", got, want)
	}

	want.SkippedAccount = "account2"
	want.SkippedAt = time.Now()

	data, err = want.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to marshal: %s", err)
	}
	got = LogEntry{}
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("failed to unmarshal: %s", err)
	}
	if !got.Skipped() {
		t.Error("expected entry to be skipped")
	}
	if got.SkippedAccount != want.SkippedAccount || !got.SkippedAt.Equal(want.SkippedAt) {
		t.Errorf("entry mismatch: got %+v, want %+v", got, want)
	}
}

func TestConfigBinaryRoundtrip(t *testing.T) {
	want := Config{
		WriteProtect:  true,
		MaxAddCount:   10,
		MaxQueueSize:  20,
		MaxSkipCount:  2,
		SkipLimitTime: 45 * time.Second,
	}

	data, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to marshal: %s", err)
	}
	var got Config
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("failed to unmarshal: %s", err)
	}
	if got != want {
		t.Errorf("config mismatch: got %+v, want %+v", got, want)
	}

	if err := got.UnmarshalBinary(data[:10]); err == nil {
		t.Error("expected error for truncated data")
	}
}
