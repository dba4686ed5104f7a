package player

import (
	"context"
	"time"

	"github.com/xoltia/mpv"

	"github.com/mkobayashi/playdeck/deck"
)

// MPV plays transitions through a running mpv instance. The playback
// position comes from mpv's playback-time property, with the tracker
// as fallback when mpv cannot report one (e.g. still loading).
type MPV struct {
	client  *mpv.Client
	tracker *Tracker
}

func NewMPV(client *mpv.Client) *MPV {
	return &MPV{
		client:  client,
		tracker: NewTracker(),
	}
}

func (p *MPV) PlayItem(ctx context.Context, item deck.QueueItem) error {
	if err := p.tracker.PlayItem(ctx, item); err != nil {
		return err
	}
	if err := p.client.LoadFile(ctx, item.Link, mpv.LoadFileModeReplace); err != nil {
		return err
	}
	return p.client.Play(ctx)
}

func (p *MPV) PlaybackTime(ctx context.Context, item deck.QueueItem) (time.Duration, error) {
	seconds, err := p.client.GetPropertyFloat(ctx, "playback-time")
	if err != nil {
		return p.tracker.PlaybackTime(ctx, item)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
