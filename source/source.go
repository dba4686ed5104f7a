// Package source resolves shareable links into playable media
// metadata. YouTube links are resolved with the built-in client;
// everything else falls through to yt-dlp.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/wader/goutubedl"

	"github.com/mkobayashi/playdeck/deck"
)

var ErrNotFound = errors.New("no playable media at link")

var ytClient = youtube.Client{}

func init() {
	youtube.DefaultClient = youtube.WebClient
}

type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, link string) (deck.MusicInfo, error) {
	if strings.TrimSpace(link) == "" {
		return deck.MusicInfo{}, ErrNotFound
	}
	u, err := url.Parse(link)
	if err != nil {
		return deck.MusicInfo{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return deck.MusicInfo{}, ErrNotFound
	}

	if isYouTubeLink(u) {
		info, err := r.resolveYouTubeBuiltin(ctx, u)
		if err == nil {
			return info, nil
		}
		r.logger.WarnContext(ctx, "Builtin YouTube resolution failed, falling back",
			slog.String("link", link),
			slog.String("err", err.Error()))
	}

	return r.resolveGeneric(ctx, u)
}

func (r *Resolver) resolveYouTubeBuiltin(ctx context.Context, videoURL *url.URL) (deck.MusicInfo, error) {
	var video *youtube.Video
	var err error
	if strings.HasPrefix(strings.ToLower(videoURL.Path), "/live/") {
		parts := strings.Split(videoURL.Path, "/")
		video, err = ytClient.GetVideoContext(ctx, parts[len(parts)-1])
	} else {
		video, err = ytClient.GetVideoContext(ctx, videoURL.String())
	}
	if err != nil {
		return deck.MusicInfo{}, err
	}

	return deck.MusicInfo{
		Title:    video.Title,
		Artist:   video.Author,
		Duration: deck.Duration(video.Duration),
	}, nil
}

func (r *Resolver) resolveGeneric(ctx context.Context, videoURL *url.URL) (deck.MusicInfo, error) {
	result, err := goutubedl.New(ctx, videoURL.String(), goutubedl.Options{
		Type: goutubedl.TypeSingle,
	})
	if err != nil {
		return deck.MusicInfo{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	info := result.Info
	return deck.MusicInfo{
		Title:    info.Title,
		Artist:   info.Uploader,
		Duration: deck.Duration(time.Duration(info.Duration) * time.Second),
	}, nil
}

var youtubeHosts = []string{
	"youtu.be",
	"youtube.com",
	"www.youtube.com",
	"m.youtube.com",
}

func isYouTubeLink(videoURL *url.URL) bool {
	return slices.Contains(youtubeHosts, videoURL.Host)
}
