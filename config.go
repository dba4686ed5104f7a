package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/diamondburned/arikawa/v3/discord"
)

type deckTOML struct {
	ID             int               `toml:"id"`
	WriteProtect   bool              `toml:"write_protect"`
	MaxAddCount    int               `toml:"max_add_count"`
	MaxQueueSize   int               `toml:"max_queue_size"`
	MaxSkipCount   int               `toml:"max_skip_count"`
	SkipLimitTime  time.Duration     `toml:"skip_limit_time"`
	DiscordChannel discord.Snowflake `toml:"discord_channel"`
}

type redisConfig struct {
	URL string `toml:"url"`
}

type discordConfig struct {
	Token string `toml:"token"`
}

type binaryConfig struct {
	YTDLPath string `toml:"ytdlp"`
	MPVPath  string `toml:"mpv"`
}

type archiveConfig struct {
	Path     string        `toml:"path"`
	Interval time.Duration `toml:"interval"`
}

type config struct {
	Listen    string        `toml:"listen"`
	StorePath string        `toml:"store_path"`
	Redis     redisConfig   `toml:"redis"`
	Discord   discordConfig `toml:"discord"`
	Binary    binaryConfig  `toml:"binary"`
	Archive   archiveConfig `toml:"archive"`
	Decks     []deckTOML    `toml:"deck"`
}

func (c *config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.StorePath == "" {
		c.StorePath = "deckdata"
	}
	if c.Archive.Interval == 0 {
		c.Archive.Interval = time.Minute
	}
	if len(c.Decks) == 0 {
		c.Decks = []deckTOML{{
			ID:           1,
			MaxAddCount:  10,
			MaxQueueSize: 10,
			MaxSkipCount: 2,
		}}
	}
}

type validationErrors []string

func (v validationErrors) Error() string {
	return strings.Join(v, "\n")
}

func (c *config) validate() error {
	var errs validationErrors

	seen := make(map[int]bool)
	for _, d := range c.Decks {
		if d.ID <= 0 {
			errs = append(errs, fmt.Sprintf("deck %d: id must be a positive integer", d.ID))
			continue
		}
		if seen[d.ID] {
			errs = append(errs, fmt.Sprintf("deck %d: duplicate id", d.ID))
		}
		seen[d.ID] = true
		if d.MaxAddCount < 0 || d.MaxQueueSize < 0 || d.MaxSkipCount < 0 || d.SkipLimitTime < 0 {
			errs = append(errs, fmt.Sprintf("deck %d: limits must be non-negative", d.ID))
		}
		if d.DiscordChannel.IsValid() && c.Discord.Token == "" {
			errs = append(errs, fmt.Sprintf("deck %d: discord_channel set without a discord token", d.ID))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func loadConfig(path string) (cfg config, err error) {
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return
}
