package playlist

import "errors"

// Admission-control and validation failures. All are synchronous
// failures of the originating call; the engine never retries.
var (
	// ErrMusicSourceNotFound means the link did not resolve to
	// playable media.
	ErrMusicSourceNotFound = errors.New("music source not found")

	// ErrPlaylistWriteProtection means the deck rejects ordinary
	// additions and the call was not forced.
	ErrPlaylistWriteProtection = errors.New("playlist is write protected")

	// ErrPlayerControlLimit means the account's add or skip quota
	// is exhausted.
	ErrPlayerControlLimit = errors.New("player control limit reached")

	// ErrPlaylistSizeOver means the queue is at capacity.
	ErrPlaylistSizeOver = errors.New("playlist size limit reached")

	// ErrPlaylistItemNotFound means the referenced id is not the
	// current head, or does not exist.
	ErrPlaylistItemNotFound = errors.New("playlist item not found")

	// ErrPlayerControlSkipLimitTime means the skip cooldown has not
	// elapsed yet.
	ErrPlayerControlSkipLimitTime = errors.New("skip limit time not reached")

	// ErrDeckNotFound means the deck was never configured.
	ErrDeckNotFound = errors.New("deck not found")
)
