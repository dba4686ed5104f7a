package deck

import (
	"encoding/binary"

	badger "github.com/dgraph-io/badger/v4"
)

type itemIterator struct {
	*badger.Iterator
}

func (it *itemIterator) item() (item QueueItem, err error) {
	err = it.Item().Value(item.UnmarshalBinary)
	if err != nil {
		return
	}
	item.seq = seqFromKey(it.Item().Key())
	return
}

func seqFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[9:])
}

func deckIDFromKey(key []byte) int {
	return int(binary.BigEndian.Uint64(key[1:9]))
}
