package deck

import (
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Tx is a transaction over the deck store. Mutating operations are
// assumed to run inside the engine's per-deck critical section; the
// transaction only guarantees atomicity and durability of the commit.
type Tx struct {
	txn   *badger.Txn
	store *Store
}

// Commit commits all changes in the current transaction.
func (tx *Tx) Commit() error {
	return tx.txn.Commit()
}

// Discard cancels the current transaction.
func (tx *Tx) Discard() {
	tx.txn.Discard()
}

// Append places item at the tail of its deck's queue and returns the
// stored item with its sequence assigned.
func (tx *Tx) Append(item QueueItem) (QueueItem, error) {
	seq, err := tx.store.seq.Next()
	if err != nil {
		return QueueItem{}, err
	}
	item.seq = seq
	if err := tx.setMarshaledValue(itemKey(item.Deck, seq), &item); err != nil {
		return QueueItem{}, err
	}
	return item, nil
}

// Head returns the first queued item without removing it. Returns
// ErrQueueEmpty if the deck has no items.
func (tx *Tx) Head(deckID int) (QueueItem, error) {
	it := tx.itemIterator(deckID)
	defer it.Close()
	if !it.Valid() {
		return QueueItem{}, ErrQueueEmpty
	}
	return it.item()
}

// RemoveHead deletes and returns the first queued item.
func (tx *Tx) RemoveHead(deckID int) (QueueItem, error) {
	head, err := tx.Head(deckID)
	if err != nil {
		return QueueItem{}, err
	}
	if err := tx.txn.Delete(itemKey(deckID, head.seq)); err != nil {
		return QueueItem{}, err
	}
	return head, nil
}

// QueueItems returns the deck's queue in FIFO order.
func (tx *Tx) QueueItems(deckID int) ([]QueueItem, error) {
	var items []QueueItem
	err := tx.iterateItems(deckID, func(item QueueItem) bool {
		items = append(items, item)
		return true
	})
	return items, err
}

// QueueLen counts the deck's queued items.
func (tx *Tx) QueueLen(deckID int) (n int, err error) {
	err = tx.iterateItems(deckID, func(QueueItem) bool {
		n++
		return true
	})
	return
}

// CountActiveAdditions counts the account's currently queued items on
// the deck. This is the add-quota usage figure: it rises on add and
// falls when the item is dequeued.
func (tx *Tx) CountActiveAdditions(deckID int, account string) (n int, err error) {
	err = tx.iterateItems(deckID, func(item QueueItem) bool {
		if item.Account == account {
			n++
		}
		return true
	})
	return
}

func (tx *Tx) iterateItems(deckID int, f func(QueueItem) bool) error {
	it := tx.itemIterator(deckID)
	defer it.Close()

	for it.Valid() {
		item, err := it.item()
		if err != nil {
			return err
		}
		if !f(item) {
			break
		}
		it.Next()
	}
	return nil
}

// LogAppend records a new log entry. The entry's UUID must be unique
// within the deck's log; appending twice is a programming error and
// overwrites silently, which the engine never does.
func (tx *Tx) LogAppend(entry LogEntry) error {
	return tx.setMarshaledValue(logKey(entry.Deck, entry.UUID), &entry)
}

// LogFind returns the log entry for id, or ErrLogNotFound.
func (tx *Tx) LogFind(deckID int, id ItemID) (entry LogEntry, err error) {
	err = tx.getUnmarshaledValue(logKey(deckID, id), &entry)
	if errors.Is(err, badger.ErrKeyNotFound) {
		err = ErrLogNotFound
	}
	return
}

// MarkSkipped sets the skip fields on the entry for id. The fields
// are set exactly once; a second call returns ErrAlreadySkipped.
func (tx *Tx) MarkSkipped(deckID int, id ItemID, account string, at time.Time) (LogEntry, error) {
	entry, err := tx.LogFind(deckID, id)
	if err != nil {
		return LogEntry{}, err
	}
	if entry.Skipped() {
		return LogEntry{}, ErrAlreadySkipped
	}
	entry.SkippedAccount = account
	entry.SkippedAt = at
	if err := tx.setMarshaledValue(logKey(deckID, id), &entry); err != nil {
		return LogEntry{}, err
	}
	return entry, nil
}

// CountSkips counts skips the account has performed on the deck.
func (tx *Tx) CountSkips(deckID int, account string) (n int, err error) {
	err = tx.IterateLog(deckID, func(entry LogEntry) bool {
		if entry.Skipped() && entry.SkippedAccount == account {
			n++
		}
		return true
	})
	return
}

// LogLen counts the deck's log entries.
func (tx *Tx) LogLen(deckID int) (n int, err error) {
	err = tx.IterateLog(deckID, func(LogEntry) bool {
		n++
		return true
	})
	return
}

// IterateLog visits every log entry of the deck.
func (tx *Tx) IterateLog(deckID int, f func(LogEntry) bool) error {
	prefix := logKeyPrefix(deckID)
	it := tx.txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()

	for it.Seek(prefix); it.Valid(); it.Next() {
		var entry LogEntry
		err := it.Item().Value(entry.UnmarshalBinary)
		if err != nil {
			return err
		}
		if !f(entry) {
			break
		}
	}
	return nil
}

// Config returns the deck's admission-control settings, or
// ErrDeckNotFound for a deck that was never configured.
func (tx *Tx) Config(deckID int) (cfg Config, err error) {
	err = tx.getUnmarshaledValue(configKey(deckID), &cfg)
	if errors.Is(err, badger.ErrKeyNotFound) {
		err = ErrDeckNotFound
	}
	return
}

// PutConfig creates or replaces the deck's settings.
func (tx *Tx) PutConfig(deckID int, cfg Config) error {
	return tx.setMarshaledValue(configKey(deckID), &cfg)
}

// Decks lists the ids of all configured decks in ascending order.
func (tx *Tx) Decks() ([]int, error) {
	prefix := []byte{byte(recordTypeConfig)}
	it := tx.txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()

	var ids []int
	for it.Seek(prefix); it.Valid(); it.Next() {
		ids = append(ids, deckIDFromKey(it.Item().Key()))
	}
	return ids, nil
}

func (tx *Tx) itemIterator(deckID int) *itemIterator {
	prefix := itemKeyPrefix(deckID)
	it := tx.txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	it.Seek(prefix)
	return &itemIterator{it}
}
