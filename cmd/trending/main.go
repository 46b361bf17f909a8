// Command trending aggregates the trending feed, rewrites it into shorts
// ideas and writes both as JSON to stdout or publishes them to NATS.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ajcontent/content-engine/engine/content"
	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/pkg/config"
	"github.com/ajcontent/content-engine/pkg/logging"
	"github.com/ajcontent/content-engine/pkg/metrics"
	"github.com/ajcontent/content-engine/pkg/natsutil"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	natsURL := flag.String("nats", cfg.NATSURL, "NATS URL (if empty, output JSON to stdout)")
	perPage := flag.Int("per-page", cfg.DefaultPerPage, "topics per published page")
	withShorts := flag.Bool("shorts", true, "also rewrite the page into shorts ideas")
	interval := flag.Duration("interval", 0, "polling interval (0 = one-shot)")
	flag.Parse()

	logger := logging.New(cfg.LogLevel, cfg.LogFile)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc := content.New(cfg, logger, metrics.New())

	var out sink = newStdoutSink(os.Stdout)
	if *natsURL != "" {
		nc, err := nats.Connect(*natsURL, nats.Name("content-trending"))
		if err != nil {
			logger.Error("nats connect", "err", err)
			os.Exit(1)
		}
		defer nc.Drain()
		out = natsSink{nc: nc}
		logger.Info("publishing to NATS", "subjects", []string{domain.SubjectTrendingPage, domain.SubjectShortsIdeas})
	}

	p := publisher{trending: svc.Trending, shorts: svc.Shorts, out: out, perPage: *perPage, log: logger}
	if !*withShorts {
		p.shorts = nil
	}

	// First run
	if err := p.run(ctx); err != nil {
		logger.Error("publish", "err", err)
		os.Exit(1)
	}
	if *interval <= 0 {
		return
	}

	// Poll loop
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-ticker.C:
			if err := p.run(ctx); err != nil {
				logger.Error("publish", "err", err)
			}
		}
	}
}

type trendingFetcher interface {
	FetchAll(ctx context.Context, page, perPage int) domain.TrendingPage
}

type shortsRewriter interface {
	Rewrite(ctx context.Context, topics []domain.Topic, maxTopics int) []domain.ShortsIdea
}

// sink receives each result under its subject.
type sink interface {
	Emit(ctx context.Context, subject string, v any) error
}

type natsSink struct{ nc *nats.Conn }

func (s natsSink) Emit(ctx context.Context, subject string, v any) error {
	return natsutil.Publish(ctx, s.nc, subject, v)
}

type stdoutSink struct{ enc *json.Encoder }

func newStdoutSink(w io.Writer) stdoutSink {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return stdoutSink{enc: enc}
}

func (s stdoutSink) Emit(_ context.Context, subject string, v any) error {
	return s.enc.Encode(map[string]any{"subject": subject, "data": v})
}

type publisher struct {
	trending trendingFetcher
	shorts   shortsRewriter
	out      sink
	perPage  int
	log      *slog.Logger
}

func (p publisher) run(ctx context.Context) error {
	page := p.trending.FetchAll(ctx, 0, p.perPage)
	if err := p.out.Emit(ctx, domain.SubjectTrendingPage, page); err != nil {
		return fmt.Errorf("emit page: %w", err)
	}
	p.log.Info("published trending page", "topics", len(page.Topics), "total", page.Total)

	if p.shorts == nil {
		return nil
	}
	ideas := p.shorts.Rewrite(ctx, page.Topics, 0)
	resp := domain.ShortsResponse{Shorts: ideas, Count: len(ideas)}
	if err := p.out.Emit(ctx, domain.SubjectShortsIdeas, resp); err != nil {
		return fmt.Errorf("emit shorts: %w", err)
	}
	p.log.Info("published shorts ideas", "count", len(ideas))
	return nil
}
