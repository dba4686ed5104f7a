package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/wader/goutubedl"
	"github.com/xoltia/mpv"

	"github.com/mkobayashi/playdeck/deck"
	"github.com/mkobayashi/playdeck/httpapi"
	"github.com/mkobayashi/playdeck/notify"
	"github.com/mkobayashi/playdeck/player"
	"github.com/mkobayashi/playdeck/playlist"
	"github.com/mkobayashi/playdeck/source"
)

var configFile = flag.String("config", "config.toml", "config file")

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		switch v := err.(type) {
		case toml.ParseError:
			fmt.Println("An error occurred while parsing the config.")
			fmt.Println(v.ErrorWithUsage())
		case validationErrors:
			fmt.Println("One or more errors occurred while validating the config.")
			fmt.Println("Please fix the following errors and try again:")
			for _, e := range v {
				fmt.Printf(" %s\n", e)
			}
		default:
			fmt.Println("An error occurred while loading the config:", err)
		}
		exitCode = 1
		return
	}

	slog.SetLogLoggerLevel(slog.LevelDebug)

	if cfg.Binary.YTDLPath != "" {
		goutubedl.Path = cfg.Binary.YTDLPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := deck.Open(cfg.StorePath)
	if err != nil {
		slog.ErrorContext(ctx, "Error opening deck store", slog.String("err", err.Error()))
		if errors.Is(err, deck.ErrVersionMismatch) {
			slog.ErrorContext(ctx, "The current store was created with an incompatible version, move/delete it or set a different location in the configuration file")
		}
		exitCode = 1
		return
	}
	defer store.Close()

	go func() {
		if err := store.GC(); err != nil {
			slog.WarnContext(ctx, "Error calling GC on deck store", slog.String("err", err.Error()))
		}
	}()

	var p playlist.Player = player.NewTracker()
	if cfg.Binary.MPVPath != "" {
		mpvProcess := mpv.NewProcessWithOptions(mpv.ProcessOptions{
			Path:           cfg.Binary.MPVPath,
			Args:           []string{"--force-window"},
			ConnMaxRetries: 10,
			ConnRetryDelay: time.Second * 1,
		})
		defer mpvProcess.Close()

		mpvClient, err := mpvProcess.OpenClient()
		if err != nil {
			slog.ErrorContext(ctx, "Unable to open mpv client", slog.String("err", err.Error()))
			exitCode = 1
			return
		}

		go func() {
			mpvProcess.Wait()
			slog.ErrorContext(ctx, "MPV process exited")
			cancel()
		}()

		slog.InfoContext(ctx, "Connected to MPV")
		p = player.NewMPV(mpvClient)
	}

	var notifiers notify.Multi
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "Invalid redis URL", slog.String("err", err.Error()))
			exitCode = 1
			return
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "Unable to reach redis", slog.String("err", err.Error()))
			exitCode = 1
			return
		}
		notifiers = append(notifiers, notify.NewRedis(redisClient, slog.Default()))
	}
	if cfg.Discord.Token != "" {
		channels := make(map[int]discord.ChannelID)
		for _, d := range cfg.Decks {
			if d.DiscordChannel.IsValid() {
				channels[d.ID] = discord.ChannelID(d.DiscordChannel)
			}
		}
		if len(channels) > 0 {
			notifiers = append(notifiers, notify.NewDiscord(cfg.Discord.Token, channels, slog.Default()))
		}
	}

	engine := playlist.NewEngine(store, source.NewResolver(slog.Default()), p, notifiers)

	for _, d := range cfg.Decks {
		err := engine.SetConfig(d.ID, deck.Config{
			WriteProtect:  d.WriteProtect,
			MaxAddCount:   d.MaxAddCount,
			MaxQueueSize:  d.MaxQueueSize,
			MaxSkipCount:  d.MaxSkipCount,
			SkipLimitTime: d.SkipLimitTime,
		})
		if err != nil {
			slog.ErrorContext(ctx, "Unable to configure deck",
				slog.Int("deck", d.ID),
				slog.String("err", err.Error()))
			exitCode = 1
			return
		}
	}

	if cfg.Archive.Path != "" {
		a := newArchiver(store, cfg.Archive.Path, cfg.Archive.Interval)
		go a.run(ctx)
	}

	srv := httpapi.NewServer(engine)
	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv.Router(middleware.RequestID, middleware.Recoverer),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Error shutting down HTTP server", slog.String("err", err.Error()))
		}
	}()

	slog.InfoContext(ctx, "Listening", slog.String("addr", cfg.Listen))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.ErrorContext(ctx, "HTTP server error", slog.String("err", err.Error()))
		exitCode = 1
	}
}
