package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ajcontent/content-engine/engine/domain"
)

type stubTrending struct{ page, perPage int }

func (s *stubTrending) FetchAll(_ context.Context, page, perPage int) domain.TrendingPage {
	s.page, s.perPage = page, perPage
	return domain.TrendingPage{Topics: []domain.Topic{{Title: "A"}}, Total: 1, Page: page}
}

type stubShorts struct{}

func (stubShorts) Rewrite(_ context.Context, topics []domain.Topic, _ int) []domain.ShortsIdea {
	return []domain.ShortsIdea{{Title: topics[0].Title}}
}

func TestHandle(t *testing.T) {
	tr := &stubTrending{}
	h := handler{trending: tr, shorts: stubShorts{}, defaultPerPage: 40, log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	resp, err := h.Handle(context.Background(), Event{Page: 1})
	if err != nil {
		t.Fatal(err)
	}
	if tr.page != 1 || tr.perPage != 40 || resp.Shorts != nil || resp.Trending.Total != 1 {
		t.Errorf("unexpected %+v (page %d/%d)", resp, tr.page, tr.perPage)
	}

	resp, _ = h.Handle(context.Background(), Event{PerPage: 5, Shorts: true})
	if tr.perPage != 5 || resp.Shorts == nil || resp.Shorts.Count != 1 {
		t.Errorf("unexpected %+v", resp)
	}
}

func TestNewHandler_ConfigError(t *testing.T) {
	t.Setenv("DEFAULT_PER_PAGE", "forty")
	if _, err := newHandler(); err == nil {
		t.Fatal("expected config error")
	}
}
