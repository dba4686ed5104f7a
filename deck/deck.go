// Package deck provides the durable storage layer for playback decks:
// the per-deck FIFO queue, the append-only play log used for quota
// accounting and auditing, and the persisted deck configuration.
package deck

import (
	"encoding/binary"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

const (
	version uint32 = 1
)

type recordType byte

const (
	recordTypeVersion recordType = iota
	recordTypeSequence
	recordTypeItem
	recordTypeLog
	recordTypeConfig
)

var (
	ErrVersionMismatch = errors.New("version mismatch")
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrLogNotFound     = errors.New("log entry not found")
	ErrAlreadySkipped  = errors.New("log entry already skipped")
	ErrDeckNotFound    = errors.New("deck not found")
)

type Store struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens the deck store at path. The path ":memory:" opens a
// non-persistent store, which is what the tests use.
func Open(path string) (*Store, error) {
	var opts badger.Options
	if path == ":memory:" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	seqKey := []byte{byte(recordTypeSequence)}
	seqKey = append(seqKey, []byte("item_seq")...)

	seq, err := db.GetSequence(seqKey, 100)
	if err != nil {
		return nil, err
	}

	if v, err := checkVersion(db); err != nil {
		return nil, err
	} else if v != version {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrVersionMismatch, version, v)
	}

	return &Store{
		db:  db,
		seq: seq,
	}, nil
}

func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		return err
	}
	return s.db.Close()
}

func (s *Store) BeginTxn(write bool) *Tx {
	return &Tx{
		txn:   s.db.NewTransaction(write),
		store: s,
	}
}

// GC reclaims badger value log space. Safe to call while the store
// is in use.
func (s *Store) GC() (err error) {
	err = s.db.RunValueLogGC(0.3)
	for err == nil {
		err = s.db.RunValueLogGC(0.3)
	}
	if err == badger.ErrNoRewrite {
		err = nil
	}
	return
}

func checkVersion(db *badger.DB) (v uint32, err error) {
	key := []byte{byte(recordTypeVersion)}
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			v = binary.BigEndian.Uint32(val)
			return nil
		})
	})
	// Set version if not set already (first run)
	if errors.Is(err, badger.ErrKeyNotFound) {
		err = db.Update(func(txn *badger.Txn) error {
			var versionBytes [4]byte
			binary.BigEndian.PutUint32(versionBytes[:], version)
			return txn.Set(key, versionBytes[:])
		})
		v = version
	}
	return
}

func itemKeyPrefix(deckID int) []byte {
	k := make([]byte, 9)
	k[0] = byte(recordTypeItem)
	binary.BigEndian.PutUint64(k[1:], uint64(deckID))
	return k
}

func itemKey(deckID int, seq uint64) []byte {
	k := make([]byte, 17)
	k[0] = byte(recordTypeItem)
	binary.BigEndian.PutUint64(k[1:], uint64(deckID))
	binary.BigEndian.PutUint64(k[9:], seq)
	return k
}

func logKeyPrefix(deckID int) []byte {
	k := make([]byte, 9)
	k[0] = byte(recordTypeLog)
	binary.BigEndian.PutUint64(k[1:], uint64(deckID))
	return k
}

func logKey(deckID int, id ItemID) []byte {
	k := make([]byte, 0, 25)
	k = append(k, logKeyPrefix(deckID)...)
	k = append(k, id[:]...)
	return k
}

func configKey(deckID int) []byte {
	k := make([]byte, 9)
	k[0] = byte(recordTypeConfig)
	binary.BigEndian.PutUint64(k[1:], uint64(deckID))
	return k
}
