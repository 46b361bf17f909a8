// Package trending fans out to every configured source, merges the results
// into one deduplicated, categorized list and ranks it for the feed.
package trending

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/engine/serper"
	"github.com/ajcontent/content-engine/engine/sources"
	"github.com/ajcontent/content-engine/pkg/config"
	"github.com/ajcontent/content-engine/pkg/fn"
	"github.com/ajcontent/content-engine/pkg/logging"
	"github.com/ajcontent/content-engine/pkg/metrics"
)

// Task is one source instance and the category it forces, if any.
type Task struct {
	Adapter  sources.Adapter
	Category domain.Category
}

// Aggregator runs a fixed task list. It holds no per-request state and is
// safe for concurrent use.
type Aggregator struct {
	tasks      []Task
	timeout    time.Duration
	maxPerPage int
	log        *slog.Logger
	reg        *metrics.Registry
}

// serperBucketOrder fixes the task order of the search buckets.
var serperBucketOrder = []string{"breaking", "tools", "startups", "research"}

// New builds the task list from configuration.
func New(cfg config.Config, o sources.Options) *Aggregator {
	if o.HTTPClient == nil {
		o.HTTPClient = sources.NewHTTPClient(cfg.SourceTimeout)
	}
	return NewWithTasks(Tasks(cfg, o), cfg.SourceTimeout, cfg.MaxPerPage, o.Log, o.Metrics)
}

// NewWithTasks builds an aggregator over an explicit task list.
func NewWithTasks(tasks []Task, timeout time.Duration, maxPerPage int, log *slog.Logger, reg *metrics.Registry) *Aggregator {
	return &Aggregator{
		tasks:      tasks,
		timeout:    timeout,
		maxPerPage: max(maxPerPage, 1),
		log:        logging.OrDefault(log),
		reg:        reg,
	}
}

// Tasks lists the source instances for cfg in merge order: search buckets,
// subreddits, Hacker News, arXiv, Product Hunt, feeds, then social video.
func Tasks(cfg config.Config, o sources.Options) []Task {
	src := cfg.Sources
	var tasks []Task

	client := serper.New(cfg.SerperAPIKey, cfg.SourceTimeout)
	for _, bucket := range bucketOrder(src.SerperQueries) {
		forced := domain.Category(bucket)
		if !knownCategory(forced) {
			forced = ""
		}
		for _, q := range src.SerperQueries[bucket] {
			tasks = append(tasks, Task{Adapter: sources.NewSerperNews(client, q, o), Category: forced})
		}
	}
	for _, sub := range src.Subreddits {
		tasks = append(tasks, Task{Adapter: sources.NewReddit(sub, o)})
	}
	if src.HackerNewsQuery != "" {
		tasks = append(tasks, Task{Adapter: sources.NewHackerNews(src.HackerNewsQuery, src.HackerNewsMinPoints, o)})
	}
	if len(src.ArXivCategories) > 0 {
		tasks = append(tasks, Task{Adapter: sources.NewArXiv(src.ArXivCategories, o), Category: domain.CategoryResearch})
	}
	if src.ProductHuntFeed != "" {
		tasks = append(tasks, Task{
			Adapter:  sources.NewProductHunt(src.ProductHuntFeed, src.ProductHuntKeywords, o),
			Category: domain.CategoryTools,
		})
	}
	for _, f := range src.Feeds {
		tasks = append(tasks, Task{Adapter: sources.NewRSS(f, o)})
	}
	if len(src.TwitterAccounts) > 0 {
		tasks = append(tasks, Task{Adapter: sources.NewTwitterVideo(cfg.TwitterBearerToken, src.TwitterAccounts, o)})
	}
	return tasks
}

func bucketOrder(queries map[string][]string) []string {
	order := slices.Clone(serperBucketOrder)
	var extra []string
	for b := range queries {
		if !slices.Contains(order, b) {
			extra = append(extra, b)
		}
	}
	slices.Sort(extra)
	return append(order, extra...)
}

func knownCategory(c domain.Category) bool {
	switch c {
	case domain.CategoryBreaking, domain.CategoryTools, domain.CategoryResearch,
		domain.CategoryStartups, domain.CategoryCommunity:
		return true
	}
	return false
}

// FetchAll runs every source and returns the requested page. Source failures
// only shrink the result; FetchAll never fails.
func (a *Aggregator) FetchAll(ctx context.Context, page, perPage int) domain.TrendingPage {
	topics := a.Collect(ctx)
	return Paginate(topics, max(page, 0), min(max(perPage, 1), a.maxPerPage))
}

// Collect runs every source and returns the merged, ranked list.
func (a *Aggregator) Collect(ctx context.Context) []domain.Topic {
	start := time.Now()
	tasks := make([]fn.Task[[]domain.Topic], len(a.tasks))
	for i, t := range a.tasks {
		tasks[i] = a.traced(t.Adapter)
	}
	results := fn.Gather(ctx, a.timeout, tasks...)

	seen := Seen{}
	var merged []domain.Topic
	failed := 0
	for i, r := range results {
		batch, err := r.Unwrap()
		if err != nil {
			failed++
			a.log.Warn("source task dropped", "source", a.tasks[i].Adapter.Name(), "error", err)
			continue
		}
		for _, t := range batch {
			if !seen.Add(t) {
				continue
			}
			t.Category = Categorize(t, a.tasks[i].Category)
			t.WhyTrending = WhyTrending(t)
			merged = append(merged, t)
		}
	}
	Rank(merged)

	if a.reg != nil {
		a.reg.Gauge("content_trending_topics", "Topics in the last aggregation").Set(int64(len(merged)))
		a.reg.Histogram("content_trending_fetch_seconds", "Full aggregation latency", nil).Since(start)
	}
	a.log.Info("trending aggregated",
		"sources", len(a.tasks), "failed", failed, "topics", len(merged), "duration", time.Since(start))
	return merged
}

func (a *Aggregator) traced(ad sources.Adapter) fn.Task[[]domain.Topic] {
	return func(ctx context.Context) fn.Result[[]domain.Topic] {
		ctx, span := otel.Tracer("engine/trending").Start(ctx, "source.fetch")
		defer span.End()
		span.SetAttributes(attribute.String("source", ad.Name()))

		topics := ad.Fetch(ctx)
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("topics", len(topics)))
		return fn.Ok(topics)
	}
}
