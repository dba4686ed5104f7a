package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Redis publishes events on a per-deck pub/sub channel
// ("deck:<id>"), JSON-encoded, for real-time transports to fan out
// to connected clients.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, logger: logger}
}

// Channel returns the pub/sub channel name for a deck.
func Channel(deckID int) string {
	return fmt.Sprintf("deck:%d", deckID)
}

func (n *Redis) Publish(ctx context.Context, deckID int, action string, payload any) {
	data, err := json.Marshal(Event{Deck: deckID, Action: action, Payload: payload})
	if err != nil {
		n.logger.WarnContext(ctx, "Unable to marshal broadcast event",
			slog.Int("deck", deckID),
			slog.String("action", action),
			slog.String("err", err.Error()))
		return
	}
	if err := n.client.Publish(ctx, Channel(deckID), data).Err(); err != nil {
		n.logger.WarnContext(ctx, "Unable to publish broadcast event",
			slog.Int("deck", deckID),
			slog.String("action", action),
			slog.String("err", err.Error()))
	}
}
