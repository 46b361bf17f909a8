// Command lambda-trending runs one aggregation pass per Lambda invocation and
// returns the requested page, optionally with shorts ideas.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/ajcontent/content-engine/engine/content"
	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/pkg/config"
	"github.com/ajcontent/content-engine/pkg/logging"
	"github.com/ajcontent/content-engine/pkg/metrics"
)

// Event is the invocation payload. All fields are optional.
type Event struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Shorts  bool `json:"shorts"`
}

// Response is returned to the invoker.
type Response struct {
	Trending domain.TrendingPage     `json:"trending"`
	Shorts   *domain.ShortsResponse `json:"shorts,omitempty"`
}

type trendingFetcher interface {
	FetchAll(ctx context.Context, page, perPage int) domain.TrendingPage
}

type shortsRewriter interface {
	Rewrite(ctx context.Context, topics []domain.Topic, maxTopics int) []domain.ShortsIdea
}

type handler struct {
	trending       trendingFetcher
	shorts         shortsRewriter
	defaultPerPage int
	log            *slog.Logger
}

func (h handler) Handle(ctx context.Context, ev Event) (Response, error) {
	perPage := ev.PerPage
	if perPage == 0 {
		perPage = h.defaultPerPage
	}
	resp := Response{Trending: h.trending.FetchAll(ctx, ev.Page, perPage)}
	if ev.Shorts {
		ideas := h.shorts.Rewrite(ctx, resp.Trending.Topics, 0)
		resp.Shorts = &domain.ShortsResponse{Shorts: ideas, Count: len(ideas)}
	}
	h.log.Info("lambda invocation", "page", ev.Page, "topics", len(resp.Trending.Topics), "shorts", ev.Shorts)
	return resp, nil
}

func newHandler() (handler, error) {
	cfg, err := config.Load()
	if err != nil {
		return handler{}, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.LogLevel, "")
	svc := content.New(cfg, logger, metrics.New())
	return handler{trending: svc.Trending, shorts: svc.Shorts, defaultPerPage: cfg.DefaultPerPage, log: logger}, nil
}

func main() {
	h, err := newHandler()
	if err != nil {
		slog.Error("init", "err", err)
		os.Exit(1)
	}
	lambda.Start(h.Handle)
}
