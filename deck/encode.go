package deck

import (
	"encoding"
	"encoding/binary"
	"errors"
	"time"
)

// getUnmarshaledValue reads a value with key `k` and unmarshals into `v`
func (tx *Tx) getUnmarshaledValue(k []byte, v encoding.BinaryUnmarshaler) (err error) {
	item, err := tx.txn.Get(k)
	if err != nil {
		return
	}
	return item.Value(v.UnmarshalBinary)
}

// setMarshaledValue sets a key `k` with the marshalled result of `v`
func (tx *Tx) setMarshaledValue(k []byte, v encoding.BinaryMarshaler) (err error) {
	vb, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	return tx.txn.Set(k, vb)
}

func (item *QueueItem) MarshalBinary() ([]byte, error) {
	size := 16                          // ID
	size += 8                           // Deck
	size += 16                          // AddedAt
	size += 8                           // Duration
	size += 4 + len(item.Link)          // Link
	size += 4 + len(item.Account)       // Account
	size += 4 + len(item.Music.Title)   // Title
	size += 4 + len(item.Music.Artist)  // Artist
	buf := make([]byte, size)
	copy(buf, item.ID[:])
	binary.BigEndian.PutUint64(buf[16:], uint64(item.Deck))
	if err := writeTime(buf[24:], item.AddedAt); err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint64(buf[40:], uint64(item.Music.Duration))
	writeStrings(buf[48:], item.Link, item.Account, item.Music.Title, item.Music.Artist)
	return buf, nil
}

func (item *QueueItem) UnmarshalBinary(data []byte) error {
	copy(item.ID[:], data[:16])
	item.Deck = int(binary.BigEndian.Uint64(data[16:24]))
	if err := item.AddedAt.UnmarshalBinary(timeUnmarshalSlice(data[24:])); err != nil {
		return err
	}
	item.Music.Duration = Duration(binary.BigEndian.Uint64(data[40:48]))
	readStrings(data[48:], &item.Link, &item.Account, &item.Music.Title, &item.Music.Artist)
	return nil
}

func (e *LogEntry) MarshalBinary() ([]byte, error) {
	size := 16                           // UUID
	size += 8                            // Deck
	size += 16                           // AddedAt
	size += 16                           // SkippedAt
	size += 4 + len(e.Account)           // Account
	size += 4 + len(e.SkippedAccount)    // SkippedAccount
	buf := make([]byte, size)
	copy(buf, e.UUID[:])
	binary.BigEndian.PutUint64(buf[16:], uint64(e.Deck))
	if err := writeTime(buf[24:], e.AddedAt); err != nil {
		return nil, err
	}
	if err := writeTime(buf[40:], e.SkippedAt); err != nil {
		return nil, err
	}
	writeStrings(buf[56:], e.Account, e.SkippedAccount)
	return buf, nil
}

func (e *LogEntry) UnmarshalBinary(data []byte) error {
	copy(e.UUID[:], data[:16])
	e.Deck = int(binary.BigEndian.Uint64(data[16:24]))
	if err := e.AddedAt.UnmarshalBinary(timeUnmarshalSlice(data[24:])); err != nil {
		return err
	}
	if err := e.SkippedAt.UnmarshalBinary(timeUnmarshalSlice(data[40:])); err != nil {
		return err
	}
	readStrings(data[56:], &e.Account, &e.SkippedAccount)
	return nil
}

func (c *Config) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 33)
	if c.WriteProtect {
		buf[0] = 1
	}
	binary.BigEndian.PutUint64(buf[1:], uint64(c.MaxAddCount))
	binary.BigEndian.PutUint64(buf[9:], uint64(c.MaxQueueSize))
	binary.BigEndian.PutUint64(buf[17:], uint64(c.MaxSkipCount))
	binary.BigEndian.PutUint64(buf[25:], uint64(c.SkipLimitTime))
	return buf, nil
}

func (c *Config) UnmarshalBinary(data []byte) error {
	if len(data) != 33 {
		return errors.New("invalid length")
	}
	c.WriteProtect = data[0] == 1
	c.MaxAddCount = int(binary.BigEndian.Uint64(data[1:9]))
	c.MaxQueueSize = int(binary.BigEndian.Uint64(data[9:17]))
	c.MaxSkipCount = int(binary.BigEndian.Uint64(data[17:25]))
	c.SkipLimitTime = time.Duration(binary.BigEndian.Uint64(data[25:33]))
	return nil
}

// Weird hack because unmarshal isn't happy when
// slice isn't exactly the right size
const (
	timeBinaryVersionV1 byte = iota + 1
	timeBinaryVersionV2
)

func timeUnmarshalSlice(data []byte) []byte {
	switch data[0] {
	case timeBinaryVersionV1:
		return data[:15]
	case timeBinaryVersionV2:
		return data[:16]
	default:
		panic("unknown time binary version")
	}
}

func writeTime(buf []byte, t time.Time) error {
	tb, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	copy(buf, tb)
	return nil
}

func writeStrings(buf []byte, strings ...string) int {
	i := 0
	for _, s := range strings {
		binary.BigEndian.PutUint32(buf[i:], uint32(len(s)))
		i += 4
		i += copy(buf[i:], s)
	}
	return i
}

func readStrings(buf []byte, strings ...*string) int {
	i := 0
	for _, s := range strings {
		l := int(binary.BigEndian.Uint32(buf[i:]))
		i += 4
		*s = string(buf[i : i+l])
		i += l
	}
	return i
}
