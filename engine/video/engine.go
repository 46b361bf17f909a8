// Package video finds short product-demo clips for a topic, scores them as
// B-roll footage and returns the best few.
package video

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/pkg/fn"
	"github.com/ajcontent/content-engine/pkg/logging"
	"github.com/ajcontent/content-engine/pkg/metrics"
)

// strategy is one search issued per request.
type strategy struct {
	backend Backend
	suffix  string
	n       int
}

// Options configures an Engine. Serper may be nil.
type Options struct {
	YouTube        Backend
	Serper         Backend
	Timeout        time.Duration
	DefaultResults int
	MaxResults     int
	Log            *slog.Logger
	Metrics        *metrics.Registry
}

// Engine is stateless apart from its backends and safe for concurrent use.
type Engine struct {
	strategies []strategy
	opts       Options
	log        *slog.Logger
}

// New creates an Engine.
func New(o Options) *Engine {
	if o.DefaultResults == 0 {
		o.DefaultResults = 8
	}
	if o.MaxResults == 0 {
		o.MaxResults = 20
	}
	var ss []strategy
	if o.YouTube != nil {
		ss = append(ss,
			strategy{o.YouTube, " demo", 4},
			strategy{o.YouTube, " tutorial walkthrough", 3},
			strategy{o.YouTube, " official announcement", 3},
		)
	}
	if o.Serper != nil {
		ss = append(ss, strategy{o.Serper, " demo tutorial screen recording", 4})
	}
	return &Engine{strategies: ss, opts: o, log: logging.OrDefault(o.Log)}
}

// Search returns up to maxResults candidates for topic, best first. Backend
// failures are logged and contribute nothing.
func (e *Engine) Search(ctx context.Context, topic string, maxResults int) []domain.VideoCandidate {
	n := domain.Clamp(maxResults, e.opts.DefaultResults, 1, e.opts.MaxResults)
	core := CoreSubject(topic)

	tasks := make([]fn.Task[[]domain.VideoCandidate], len(e.strategies))
	for i, s := range e.strategies {
		tasks[i] = func(ctx context.Context) fn.Result[[]domain.VideoCandidate] {
			return e.run(ctx, s, core+s.suffix)
		}
	}
	var all []domain.VideoCandidate
	for i, r := range fn.Gather(ctx, e.opts.Timeout, tasks...) {
		v, err := r.Unwrap()
		if err != nil {
			e.log.Warn("video search failed", "backend", e.strategies[i].backend.Name(),
				"query", core+e.strategies[i].suffix, "error", err)
			e.countError(e.strategies[i].backend.Name())
			continue
		}
		all = append(all, v...)
	}

	ranked := Rank(Dedupe(all))
	e.log.Info("video search", "topic", topic, "core", core, "found", len(all), "unique", len(ranked))
	if len(ranked) == 0 {
		return []domain.VideoCandidate{}
	}
	return fn.Take(ranked, n)
}

func (e *Engine) run(ctx context.Context, s strategy, query string) fn.Result[[]domain.VideoCandidate] {
	ctx, span := otel.Tracer("engine/video").Start(ctx, "video.search")
	defer span.End()
	span.SetAttributes(attribute.String("backend", s.backend.Name()), attribute.String("query", query))

	v, err := s.backend.Search(ctx, query, s.n)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return fn.FromPair(v, err)
}

func (e *Engine) countError(backend string) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.Counter("content_video_search_errors_total", "Failed video searches by backend", "backend", backend).Inc()
	}
}

// Dedupe keeps the first candidate per video id, or per title key when the
// id is empty.
func Dedupe(videos []domain.VideoCandidate) []domain.VideoCandidate {
	return fn.UniqueBy(videos, func(v domain.VideoCandidate) string {
		if v.VideoID != "" {
			return "id:" + v.VideoID
		}
		return "title:" + titleKey(v.Title)
	})
}

// Rank drops blocklisted channels unless that would leave nothing, scores
// every candidate and sorts best first. Ties keep input order.
func Rank(videos []domain.VideoCandidate) []domain.VideoCandidate {
	kept := fn.Filter(videos, func(v domain.VideoCandidate) bool { return !IsBlocked(v.Channel) })
	if len(kept) == 0 {
		kept = slices.Clone(videos)
	}
	for i := range kept {
		kept[i].Score = Score(kept[i])
	}
	slices.SortStableFunc(kept, func(a, b domain.VideoCandidate) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return kept
}
