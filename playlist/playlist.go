// Package playlist implements the queue-mutation engine: add, next,
// and skip on shared playback decks, with per-deck mutual exclusion,
// admission control, an auditable mutation log, and broadcast events.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkobayashi/playdeck/deck"
)

// Broadcast actions emitted after a committed mutation.
const (
	ActionAdd = "add"
	ActionEnd = "end"
)

// Account is a resolved caller identity. Anonymous calls are rejected
// upstream; the engine always receives a concrete account.
type Account struct {
	ID    string
	Admin bool
}

// EndPayload is the broadcast payload for ActionEnd events. ActionAdd
// events carry the full queue item.
type EndPayload struct {
	ID deck.ItemID `json:"id"`
}

// Resolver turns a shareable link into playable media metadata.
type Resolver interface {
	Resolve(ctx context.Context, link string) (deck.MusicInfo, error)
}

// Player receives playback transitions and reports how long the
// current item has been playing.
type Player interface {
	PlayItem(ctx context.Context, item deck.QueueItem) error
	PlaybackTime(ctx context.Context, item deck.QueueItem) (time.Duration, error)
}

// Notifier delivers a fire-and-forget event to an external real-time
// channel. Delivery failures must not propagate to the caller.
type Notifier interface {
	Publish(ctx context.Context, deckID int, action string, payload any)
}

type Engine struct {
	store    *deck.Store
	resolver Resolver
	player   Player
	notifier Notifier
	locks    deckLocks
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Engine)

// WithClock replaces the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger replaces the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func NewEngine(store *deck.Store, resolver Resolver, player Player, notifier Notifier, options ...Option) *Engine {
	e := &Engine{
		store:    store,
		resolver: resolver,
		player:   player,
		notifier: notifier,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Add resolves link, runs the deck's admission checks, and appends a
// new item to the tail of the queue along with its log entry. If the
// queue was empty the new item starts playing. One ActionAdd event is
// published after the mutation commits and the deck lock is released.
//
// Force bypasses write protection and nothing else.
func (e *Engine) Add(ctx context.Context, deckID int, link string, account Account, force bool) (deck.QueueItem, error) {
	lock := e.locks.get(deckID)
	lock.Lock()
	item, err := e.addLocked(ctx, deckID, link, account, force)
	lock.Unlock()
	if err != nil {
		return deck.QueueItem{}, err
	}
	e.notifier.Publish(ctx, deckID, ActionAdd, item)
	return item, nil
}

func (e *Engine) addLocked(ctx context.Context, deckID int, link string, account Account, force bool) (deck.QueueItem, error) {
	tx := e.store.BeginTxn(true)
	defer tx.Discard()

	cfg, err := e.deckConfig(tx, deckID)
	if err != nil {
		return deck.QueueItem{}, err
	}

	if link == "" {
		return deck.QueueItem{}, ErrMusicSourceNotFound
	}
	music, err := e.resolver.Resolve(ctx, link)
	if err != nil {
		return deck.QueueItem{}, fmt.Errorf("%w: %v", ErrMusicSourceNotFound, err)
	}

	if cfg.WriteProtect && !force {
		return deck.QueueItem{}, ErrPlaylistWriteProtection
	}

	active, err := tx.CountActiveAdditions(deckID, account.ID)
	if err != nil {
		return deck.QueueItem{}, err
	}
	if !allowAdd(cfg, active, account.Admin) {
		return deck.QueueItem{}, ErrPlayerControlLimit
	}

	// Capacity applies to admins as well.
	length, err := tx.QueueLen(deckID)
	if err != nil {
		return deck.QueueItem{}, err
	}
	if length >= cfg.MaxQueueSize {
		return deck.QueueItem{}, ErrPlaylistSizeOver
	}

	now := e.now()
	item := deck.QueueItem{
		ID:      uuid.New(),
		Deck:    deckID,
		Link:    link,
		Account: account.ID,
		Music:   music,
		AddedAt: now,
	}
	item, err = tx.Append(item)
	if err != nil {
		return deck.QueueItem{}, err
	}
	err = tx.LogAppend(deck.LogEntry{
		UUID:    item.ID,
		Deck:    deckID,
		Account: account.ID,
		AddedAt: now,
	})
	if err != nil {
		return deck.QueueItem{}, err
	}
	if err := tx.Commit(); err != nil {
		return deck.QueueItem{}, err
	}

	if length == 0 {
		e.playItem(ctx, item)
	}
	return item, nil
}

// Next removes the head item. The id must identify the head; any
// other id fails with ErrPlaylistItemNotFound and leaves the queue
// unchanged. If the queue is non-empty afterwards the new head starts
// playing. One ActionEnd event is published after commit.
func (e *Engine) Next(ctx context.Context, deckID int, id deck.ItemID) error {
	lock := e.locks.get(deckID)
	lock.Lock()
	err := e.nextLocked(ctx, deckID, id)
	lock.Unlock()
	if err != nil {
		return err
	}
	e.notifier.Publish(ctx, deckID, ActionEnd, EndPayload{ID: id})
	return nil
}

func (e *Engine) nextLocked(ctx context.Context, deckID int, id deck.ItemID) error {
	tx := e.store.BeginTxn(true)
	defer tx.Discard()

	next, err := e.advance(tx, deckID, id)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if next != nil {
		e.playItem(ctx, *next)
	}
	return nil
}

// Skip marks the head item's log entry as skipped by account, then
// removes it exactly like Next. Non-admins are subject to the skip
// cooldown and the per-account skip quota.
func (e *Engine) Skip(ctx context.Context, deckID int, id deck.ItemID, account Account) error {
	lock := e.locks.get(deckID)
	lock.Lock()
	err := e.skipLocked(ctx, deckID, id, account)
	lock.Unlock()
	if err != nil {
		return err
	}
	e.notifier.Publish(ctx, deckID, ActionEnd, EndPayload{ID: id})
	return nil
}

func (e *Engine) skipLocked(ctx context.Context, deckID int, id deck.ItemID, account Account) error {
	tx := e.store.BeginTxn(true)
	defer tx.Discard()

	cfg, err := e.deckConfig(tx, deckID)
	if err != nil {
		return err
	}

	if _, err := tx.LogFind(deckID, id); err != nil {
		if errors.Is(err, deck.ErrLogNotFound) {
			return ErrPlaylistItemNotFound
		}
		return err
	}

	elapsed := e.headElapsed(ctx, tx, deckID, id)
	if !cooldownElapsed(cfg, elapsed, account.Admin) {
		return ErrPlayerControlSkipLimitTime
	}

	skips, err := tx.CountSkips(deckID, account.ID)
	if err != nil {
		return err
	}
	if !allowSkip(cfg, skips, account.Admin) {
		return ErrPlayerControlLimit
	}

	if _, err := tx.MarkSkipped(deckID, id, account.ID, e.now()); err != nil {
		// An already-skipped entry has left the queue; to the caller
		// that item no longer exists.
		if errors.Is(err, deck.ErrAlreadySkipped) {
			return ErrPlaylistItemNotFound
		}
		return err
	}

	// Failure here discards the skip marking with the rest of the
	// transaction, so no partial mutation survives.
	next, err := e.advance(tx, deckID, id)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if next != nil {
		e.playItem(ctx, *next)
	}
	return nil
}

// advance validates that id is the head, removes it, and returns the
// new head (nil if the queue became empty).
func (e *Engine) advance(tx *deck.Tx, deckID int, id deck.ItemID) (*deck.QueueItem, error) {
	head, err := tx.Head(deckID)
	if err != nil {
		if errors.Is(err, deck.ErrQueueEmpty) {
			return nil, ErrPlaylistItemNotFound
		}
		return nil, err
	}
	if head.ID != id {
		return nil, ErrPlaylistItemNotFound
	}
	if _, err := tx.RemoveHead(deckID); err != nil {
		return nil, err
	}
	next, err := tx.Head(deckID)
	if err != nil {
		if errors.Is(err, deck.ErrQueueEmpty) {
			return nil, nil
		}
		return nil, err
	}
	return &next, nil
}

// Queue returns a snapshot of the deck's queue. Snapshots are read
// outside the deck lock and may be slightly stale; mutations always
// re-validate inside the lock.
func (e *Engine) Queue(deckID int) ([]deck.QueueItem, error) {
	tx := e.store.BeginTxn(false)
	defer tx.Discard()
	if _, err := e.deckConfig(tx, deckID); err != nil {
		return nil, err
	}
	return tx.QueueItems(deckID)
}

// Config returns the deck's current settings.
func (e *Engine) Config(deckID int) (deck.Config, error) {
	tx := e.store.BeginTxn(false)
	defer tx.Discard()
	return e.deckConfig(tx, deckID)
}

// SetConfig creates or replaces the deck's settings.
func (e *Engine) SetConfig(deckID int, cfg deck.Config) error {
	lock := e.locks.get(deckID)
	lock.Lock()
	defer lock.Unlock()

	tx := e.store.BeginTxn(true)
	defer tx.Discard()
	if err := tx.PutConfig(deckID, cfg); err != nil {
		return err
	}
	return tx.Commit()
}

func (e *Engine) deckConfig(tx *deck.Tx, deckID int) (deck.Config, error) {
	cfg, err := tx.Config(deckID)
	if err != nil {
		if errors.Is(err, deck.ErrDeckNotFound) {
			return deck.Config{}, ErrDeckNotFound
		}
		return deck.Config{}, err
	}
	return cfg, nil
}

func (e *Engine) playItem(ctx context.Context, item deck.QueueItem) {
	if err := e.player.PlayItem(ctx, item); err != nil {
		e.logger.WarnContext(ctx, "Playback transition failed",
			slog.Int("deck", item.Deck),
			slog.String("id", item.ID.String()),
			slog.String("err", err.Error()))
	}
}

// headElapsed returns how long the item identified by id has been
// playing. If the item is not the head, or the player cannot report a
// position, elapsed time is zero so the cooldown fails closed.
func (e *Engine) headElapsed(ctx context.Context, tx *deck.Tx, deckID int, id deck.ItemID) time.Duration {
	head, err := tx.Head(deckID)
	if err != nil || head.ID != id {
		return 0
	}
	elapsed, err := e.player.PlaybackTime(ctx, head)
	if err != nil {
		e.logger.WarnContext(ctx, "Unable to read playback time",
			slog.Int("deck", deckID),
			slog.String("err", err.Error()))
		return 0
	}
	return elapsed
}
