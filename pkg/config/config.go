// Package config builds the process-wide, read-only configuration from the
// environment (optionally seeded by a .env file) and an optional YAML file
// that overrides the source lists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the engine reads. Build it with Load and pass it
// by value; nothing re-reads the environment after startup.
type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`
	NATSURL    string `env:"NATS_URL"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile    string `env:"LOG_FILE"`
	ConfigFile string `env:"CONTENT_ENGINE_CONFIG"`

	SerperAPIKey       string `env:"SERPER_API_KEY"`
	AnthropicAPIKey    string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel     string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	TwitterBearerToken string `env:"TWITTER_BEARER_TOKEN"`
	YouTubeAPIKey      string `env:"YOUTUBE_API_KEY"`
	SupabaseURL        string `env:"SUPABASE_URL"`
	SupabaseKey        string `env:"SUPABASE_KEY"`
	SupabaseBucket     string `env:"SUPABASE_VIDEO_BUCKET" envDefault:"videos"`
	YtDlpPath          string `env:"YTDLP_PATH" envDefault:"yt-dlp"`

	SourceTimeout   time.Duration `env:"SOURCE_TIMEOUT" envDefault:"20s"`
	DefaultPerPage  int           `env:"DEFAULT_PER_PAGE" envDefault:"40"`
	MaxPerPage      int           `env:"MAX_PER_PAGE" envDefault:"100"`
	DefaultShorts   int           `env:"DEFAULT_SHORTS" envDefault:"12"`
	MaxShorts       int           `env:"MAX_SHORTS" envDefault:"30"`
	DefaultVideos   int           `env:"DEFAULT_VIDEO_RESULTS" envDefault:"8"`
	MaxVideoResults int           `env:"MAX_VIDEO_RESULTS" envDefault:"20"`
	APIRate         float64       `env:"API_RATE" envDefault:"5"`
	APIBurst        int           `env:"API_BURST" envDefault:"20"`

	Sources Sources
}

// Sources lists what the aggregator pulls from. Only the YAML file sets it.
type Sources struct {
	SerperQueries       map[string][]string `yaml:"serper_queries"`
	Subreddits          []string            `yaml:"subreddits"`
	HackerNewsQuery     string              `yaml:"hackernews_query"`
	HackerNewsMinPoints int                 `yaml:"hackernews_min_points"`
	ArXivCategories     []string            `yaml:"arxiv_categories"`
	ProductHuntFeed     string              `yaml:"producthunt_feed"`
	ProductHuntKeywords []string            `yaml:"producthunt_keywords"`
	Feeds               []Feed              `yaml:"feeds"`
	TwitterAccounts     map[string][]string `yaml:"twitter_accounts"`
}

// Feed is one syndication feed. Keywords, when set, act as an allow-list.
type Feed struct {
	Name     string   `yaml:"name"`
	URL      string   `yaml:"url"`
	Keywords []string `yaml:"keywords"`
}

type fileConfig struct {
	Sources Sources `yaml:"sources"`
}

// Load reads .env (if present), the environment and the optional YAML file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Sources = DefaultSources()

	if cfg.ConfigFile != "" {
		raw, err := os.ReadFile(cfg.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", cfg.ConfigFile, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", cfg.ConfigFile, err)
		}
		cfg.Sources = mergeSources(cfg.Sources, fc.Sources)
	}
	return cfg, nil
}

// Keys reports which optional credentials are present, for health checks.
func (c Config) Keys() map[string]bool {
	return map[string]bool{
		"serper":    c.SerperAPIKey != "",
		"anthropic": c.AnthropicAPIKey != "",
		"twitter":   c.TwitterBearerToken != "",
		"youtube":   c.YouTubeAPIKey != "",
		"supabase":  c.SupabaseURL != "" && c.SupabaseKey != "",
	}
}

func mergeSources(base, override Sources) Sources {
	if len(override.SerperQueries) > 0 {
		base.SerperQueries = override.SerperQueries
	}
	if len(override.Subreddits) > 0 {
		base.Subreddits = override.Subreddits
	}
	if override.HackerNewsQuery != "" {
		base.HackerNewsQuery = override.HackerNewsQuery
	}
	if override.HackerNewsMinPoints > 0 {
		base.HackerNewsMinPoints = override.HackerNewsMinPoints
	}
	if len(override.ArXivCategories) > 0 {
		base.ArXivCategories = override.ArXivCategories
	}
	if override.ProductHuntFeed != "" {
		base.ProductHuntFeed = override.ProductHuntFeed
	}
	if len(override.ProductHuntKeywords) > 0 {
		base.ProductHuntKeywords = override.ProductHuntKeywords
	}
	if override.Feeds != nil {
		base.Feeds = override.Feeds
	}
	if len(override.TwitterAccounts) > 0 {
		base.TwitterAccounts = override.TwitterAccounts
	}
	return base
}
