package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mkobayashi/playdeck/deck"
)

// archiver periodically exports every deck's play log to a JSON file.
// The file is written through a temp file and a rename so readers
// never observe a partial export.
type archiver struct {
	store    *deck.Store
	path     string
	ticker   *time.Ticker
	entries  int
	skipped  int
	archived bool
}

func newArchiver(store *deck.Store, path string, interval time.Duration) *archiver {
	return &archiver{
		store:  store,
		path:   path,
		ticker: time.NewTicker(interval),
	}
}

func (a *archiver) run(ctx context.Context) {
	defer a.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := a.maybeArchive(); err != nil {
				slog.Warn("Unable to archive play log", slog.String("err", err.Error()))
			}
			return
		case <-a.ticker.C:
			if err := a.maybeArchive(); err != nil {
				slog.Warn("Unable to archive play log", slog.String("err", err.Error()))
			}
		}
	}
}

func (a *archiver) maybeArchive() error {
	logs, err := a.collect()
	if err != nil {
		return err
	}
	// Entries are append-only and mutated at most once (the skip
	// marking), so these two counts detect every change.
	entries, skipped := 0, 0
	for _, deckLog := range logs {
		entries += len(deckLog)
		for _, e := range deckLog {
			if e.Skipped() {
				skipped++
			}
		}
	}
	if a.archived && entries == a.entries && skipped == a.skipped {
		return nil
	}
	if err := a.writeArchive(logs); err != nil {
		return err
	}
	a.entries = entries
	a.skipped = skipped
	a.archived = true
	return nil
}

func (a *archiver) collect() (map[int][]deck.LogEntry, error) {
	tx := a.store.BeginTxn(false)
	defer tx.Discard()

	decks, err := tx.Decks()
	if err != nil {
		return nil, err
	}

	logs := make(map[int][]deck.LogEntry, len(decks))
	for _, id := range decks {
		var entries []deck.LogEntry
		err := tx.IterateLog(id, func(e deck.LogEntry) bool {
			entries = append(entries, e)
			return true
		})
		if err != nil {
			return nil, err
		}
		logs[id] = entries
	}
	return logs, nil
}

func (a *archiver) writeArchive(logs map[int][]deck.LogEntry) error {
	tempFile, err := os.CreateTemp(filepath.Dir(a.path), "playlog-*.tmp")
	if err != nil {
		return err
	}

	if err := json.NewEncoder(tempFile).Encode(logs); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	return os.Rename(tempFile.Name(), a.path)
}
