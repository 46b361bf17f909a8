// Package content assembles the engine's services from configuration. Every
// binary builds its dependencies here so they agree on timeouts and limits.
package content

import (
	"log/slog"
	"time"

	"github.com/ajcontent/content-engine/engine/acquire"
	"github.com/ajcontent/content-engine/engine/serper"
	"github.com/ajcontent/content-engine/engine/shorts"
	"github.com/ajcontent/content-engine/engine/sources"
	"github.com/ajcontent/content-engine/engine/trending"
	"github.com/ajcontent/content-engine/engine/video"
	"github.com/ajcontent/content-engine/pkg/anthropic"
	"github.com/ajcontent/content-engine/pkg/config"
	"github.com/ajcontent/content-engine/pkg/metrics"
)

// Services holds one instance of each engine component.
type Services struct {
	Trending *trending.Aggregator
	Shorts   *shorts.Rewriter
	Videos   *video.Engine
	Acquire  *acquire.Pipeline
}

// New wires the services for cfg. Missing credentials degrade individual
// features rather than failing startup.
func New(cfg config.Config, log *slog.Logger, reg *metrics.Registry) Services {
	return Services{
		Trending: trending.New(cfg, sources.Options{Log: log, Metrics: reg}),
		Shorts:   NewRewriter(cfg, log, reg),
		Videos:   NewVideoEngine(cfg, log, reg),
		Acquire:  NewPipeline(cfg, log, reg),
	}
}

// NewRewriter uses the Messages API when a key is configured and the
// mechanical fallback otherwise.
func NewRewriter(cfg config.Config, log *slog.Logger, reg *metrics.Registry) *shorts.Rewriter {
	opts := shorts.DefaultOptions()
	opts.DefaultTopics = cfg.DefaultShorts
	opts.MaxTopics = cfg.MaxShorts

	var llm shorts.Completer
	if cfg.AnthropicAPIKey != "" {
		llm = anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicModel, opts.Timeout)
	}
	return shorts.New(llm, opts, log, reg)
}

// videoSearchTimeout leaves room for yt-dlp's own 30s limit.
const videoSearchTimeout = 35 * time.Second

// NewVideoEngine searches YouTube through the Data API when a key is set and
// through yt-dlp otherwise. Serper joins when it has a key.
func NewVideoEngine(cfg config.Config, log *slog.Logger, reg *metrics.Registry) *video.Engine {
	var yt video.Backend = video.NewYtDlp(cfg.YtDlpPath, nil)
	if cfg.YouTubeAPIKey != "" {
		yt = video.NewYouTubeAPI(cfg.YouTubeAPIKey)
	}
	o := video.Options{
		YouTube:        yt,
		Timeout:        max(cfg.SourceTimeout, videoSearchTimeout),
		DefaultResults: cfg.DefaultVideos,
		MaxResults:     cfg.MaxVideoResults,
		Log:            log,
		Metrics:        reg,
	}
	if client := serper.New(cfg.SerperAPIKey, cfg.SourceTimeout); client.Configured() {
		o.Serper = video.NewSerperVideos(client)
	}
	return video.New(o)
}

// NewPipeline stores downloads in Supabase when credentials are present.
func NewPipeline(cfg config.Config, log *slog.Logger, reg *metrics.Registry) *acquire.Pipeline {
	var up acquire.Uploader
	if store := acquire.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket); store.Configured() {
		up = store
	}
	return acquire.NewPipeline(acquire.NewDownloader(cfg.YtDlpPath, nil), up, log, reg)
}
