package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mkobayashi/playdeck/deck"
)

func newArchiverTestStore(t *testing.T) *deck.Store {
	t.Helper()
	s, err := deck.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %s", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func appendLogEntry(t *testing.T, s *deck.Store, deckID int) deck.ItemID {
	t.Helper()
	tx := s.BeginTxn(true)
	defer tx.Discard()
	id := uuid.New()
	err := tx.LogAppend(deck.LogEntry{
		UUID:    id,
		Deck:    deckID,
		Account: "account1",
		AddedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to append log entry: %s", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit: %s", err)
	}
	return id
}

func readArchive(t *testing.T, path string) map[int][]deck.LogEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read archive: %s", err)
	}
	var logs map[int][]deck.LogEntry
	if err := json.Unmarshal(data, &logs); err != nil {
		t.Fatalf("failed to unmarshal archive: %s", err)
	}
	return logs
}

func TestArchiverExportsLog(t *testing.T) {
	s := newArchiverTestStore(t)

	tx := s.BeginTxn(true)
	if err := tx.PutConfig(1, deck.Config{MaxAddCount: 10}); err != nil {
		t.Fatalf("failed to put config: %s", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit: %s", err)
	}
	id := appendLogEntry(t, s, 1)

	path := filepath.Join(t.TempDir(), "playlog.json")
	a := newArchiver(s, path, time.Minute)
	defer a.ticker.Stop()

	if err := a.maybeArchive(); err != nil {
		t.Fatalf("failed to archive: %s", err)
	}

	logs := readArchive(t, path)
	if len(logs[1]) != 1 || logs[1][0].UUID != id {
		t.Errorf("unexpected archive contents %+v", logs)
	}
}

func TestArchiverSkipsUnchangedLog(t *testing.T) {
	s := newArchiverTestStore(t)

	tx := s.BeginTxn(true)
	if err := tx.PutConfig(1, deck.Config{}); err != nil {
		t.Fatalf("failed to put config: %s", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit: %s", err)
	}
	id := appendLogEntry(t, s, 1)

	path := filepath.Join(t.TempDir(), "playlog.json")
	a := newArchiver(s, path, time.Minute)
	defer a.ticker.Stop()

	if err := a.maybeArchive(); err != nil {
		t.Fatalf("failed to archive: %s", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove archive: %s", err)
	}

	// Nothing changed, so no new export.
	if err := a.maybeArchive(); err != nil {
		t.Fatalf("failed to archive: %s", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected no export for an unchanged log")
	}

	// Marking a skip changes the log without changing its length.
	tx = s.BeginTxn(true)
	if _, err := tx.MarkSkipped(1, id, "account2", time.Now()); err != nil {
		t.Fatalf("failed to mark skipped: %s", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit: %s", err)
	}

	if err := a.maybeArchive(); err != nil {
		t.Fatalf("failed to archive: %s", err)
	}
	logs := readArchive(t, path)
	if len(logs[1]) != 1 || !logs[1][0].Skipped() {
		t.Errorf("unexpected archive contents %+v", logs)
	}
}
