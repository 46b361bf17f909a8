package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/engine/trending"
	"github.com/ajcontent/content-engine/pkg/config"
	"github.com/ajcontent/content-engine/pkg/metrics"
	"github.com/ajcontent/content-engine/pkg/mid"
	"github.com/ajcontent/content-engine/pkg/resilience"
)

type trendingFetcher interface {
	FetchAll(ctx context.Context, page, perPage int) domain.TrendingPage
}

type shortsRewriter interface {
	Rewrite(ctx context.Context, topics []domain.Topic, maxTopics int) []domain.ShortsIdea
}

type videoSearcher interface {
	Search(ctx context.Context, topic string, maxResults int) []domain.VideoCandidate
}

type videoAcquirer interface {
	Acquire(ctx context.Context, url string) domain.DownloadResult
}

type server struct {
	cfg      config.Config
	trending trendingFetcher
	shorts   shortsRewriter
	videos   videoSearcher
	acquire  videoAcquirer
	log      *slog.Logger
	reg      *metrics.Registry
	now      func() time.Time
}

func newServer(cfg config.Config, tf trendingFetcher, sr shortsRewriter, vs videoSearcher, va videoAcquirer, log *slog.Logger, reg *metrics.Registry) *server {
	return &server{cfg: cfg, trending: tf, shorts: sr, videos: vs, acquire: va, log: log, reg: reg, now: time.Now}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/trending", s.handleTrending)
	mux.HandleFunc("GET /api/trending.rss", s.handleTrendingFeed)
	mux.HandleFunc("POST /api/shorts", s.handleShorts)
	mux.HandleFunc("POST /api/videos/search", s.handleVideoSearch)
	mux.HandleFunc("POST /api/videos/select", s.handleVideoSelect)
	mux.Handle("GET /metrics", s.reg.Handler())

	limiter := resilience.NewKeyedLimiter(resilience.LimiterOpts{Rate: s.cfg.APIRate, Burst: s.cfg.APIBurst}, 10*time.Minute)
	return mid.Chain(mid.Route(mux),
		mid.Recover(s.log),
		mid.RequestID,
		mid.Logger(s.log),
		mid.Metrics(s.reg),
		mid.CORS(s.cfg.CORSOrigin),
		mid.RateLimit(limiter),
		mid.OTel("content-api"),
	)
}

// --- Handlers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "keys": s.cfg.Keys()})
}

// pageParams reads page and per_page. Missing values take the defaults.
func (s *server) pageParams(r *http.Request) (page, perPage int, err error) {
	perPage = s.cfg.DefaultPerPage
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			return 0, 0, domain.NewValidationError("page", v, domain.ErrOutOfRange)
		}
	}
	if v := q.Get("per_page"); v != "" {
		if perPage, err = strconv.Atoi(v); err != nil {
			return 0, 0, domain.NewValidationError("per_page", v, domain.ErrOutOfRange)
		}
	}
	return page, perPage, nil
}

func (s *server) handleTrending(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := s.pageParams(r)
	if err != nil {
		mid.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.trending.FetchAll(r.Context(), page, perPage))
}

func (s *server) handleTrendingFeed(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := s.pageParams(r)
	if err != nil {
		mid.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	self := "http://" + r.Host + r.URL.RequestURI()
	atom, err := trending.Atom(s.trending.FetchAll(r.Context(), page, perPage), self, s.now())
	if err != nil {
		s.log.Error("render feed", "err", err)
		mid.JSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.Write([]byte(atom))
}

// decode reads a JSON body into req and validates it.
func decode[T any](r *http.Request, req *T) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return domain.Validate(req)
}

func (s *server) handleShorts(w http.ResponseWriter, r *http.Request) {
	var req domain.ShortsRequest
	if err := decode(r, &req); err != nil {
		mid.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	topics := req.Topics
	if len(topics) == 0 {
		topics = s.trending.FetchAll(r.Context(), 0, s.cfg.DefaultPerPage).Topics
	}
	ideas := s.shorts.Rewrite(r.Context(), topics, req.MaxTopics)
	writeJSON(w, domain.ShortsResponse{Shorts: ideas, Count: len(ideas)})
}

func (s *server) handleVideoSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.VideoSearchRequest
	if err := decode(r, &req); err != nil {
		mid.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	videos := s.videos.Search(r.Context(), req.Topic, req.MaxResults)
	writeJSON(w, domain.VideoSearchResponse{Topic: req.Topic, Videos: videos, Count: len(videos)})
}

func (s *server) handleVideoSelect(w http.ResponseWriter, r *http.Request) {
	var req domain.VideoSelectRequest
	if err := decode(r, &req); err != nil {
		mid.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.acquire.Acquire(r.Context(), req.URL))
}

// replyTrending answers domain.SubjectTrendingFetch requests.
func (s *server) replyTrending(ctx context.Context, req domain.TrendingRequest) (domain.TrendingPage, error) {
	perPage := req.PerPage
	if perPage == 0 {
		perPage = s.cfg.DefaultPerPage
	}
	return s.trending.FetchAll(ctx, req.Page, perPage), nil
}
