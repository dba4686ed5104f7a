package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"

	"github.com/mkobayashi/playdeck/deck"
)

// Discord posts queue events to per-deck Discord channels. It is a
// human-facing mirror of the machine broadcast: additions become an
// embed, everything else a plain line.
type Discord struct {
	client   *api.Client
	channels map[int]discord.ChannelID
	logger   *slog.Logger
}

func NewDiscord(token string, channels map[int]discord.ChannelID, logger *slog.Logger) *Discord {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discord{
		client:   api.NewClient("Bot " + token),
		channels: channels,
		logger:   logger,
	}
}

func (n *Discord) Publish(ctx context.Context, deckID int, action string, payload any) {
	channelID, ok := n.channels[deckID]
	if !ok {
		return
	}

	var err error
	switch item := payload.(type) {
	case deck.QueueItem:
		embed := discord.NewEmbed()
		embed.Title = "Track Queued"
		embed.Description = item.Music.Title
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:   "Artist",
			Value:  item.Music.Artist,
			Inline: true,
		})
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:   "Queued by",
			Value:  item.Account,
			Inline: true,
		})
		_, err = n.client.SendMessage(channelID, "", *embed)
	default:
		_, err = n.client.SendMessage(channelID, fmt.Sprintf("Deck %d: %s", deckID, action))
	}

	if err != nil {
		n.logger.WarnContext(ctx, "Unable to send Discord notification",
			slog.Int("deck", deckID),
			slog.String("action", action),
			slog.String("err", err.Error()))
	}
}
