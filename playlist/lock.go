package playlist

import "sync"

// deckLocks is a keyed lock table: one mutex per deck, created on
// first use. Mutations on the same deck serialize; different decks
// never contend.
type deckLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func (dl *deckLocks) get(deckID int) *sync.Mutex {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.locks == nil {
		dl.locks = make(map[int]*sync.Mutex)
	}
	lock, ok := dl.locks[deckID]
	if !ok {
		lock = &sync.Mutex{}
		dl.locks[deckID] = lock
	}
	return lock
}
