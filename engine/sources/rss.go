package sources

import (
	"context"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/pkg/config"
)

// ProductHunt reads the launch feed and keeps only AI-related launches.
type ProductHunt struct {
	base
	feedURL  string
	keywords []string
}

// NewProductHunt creates the product-launch adapter.
func NewProductHunt(feedURL string, keywords []string, o Options) *ProductHunt {
	return &ProductHunt{base: newBase("producthunt", o), feedURL: feedURL, keywords: keywords}
}

func (p *ProductHunt) Fetch(ctx context.Context) []domain.Topic {
	return p.guard(ctx, p.fetch)
}

func (p *ProductHunt) fetch(ctx context.Context) ([]domain.Topic, error) {
	feed, err := p.getFeed(ctx, p.feedURL)
	if err != nil {
		return nil, err
	}
	keep := func(text string) bool { return containsAny(text, p.keywords) }
	return feedTopics(feed, domain.SourceProductHunt, "Product Hunt", p.now(), keep), nil
}

// RSS reads one syndication feed, optionally filtered by an allow-list.
type RSS struct {
	base
	feed config.Feed
}

// NewRSS creates an adapter for a configured feed.
func NewRSS(feed config.Feed, o Options) *RSS {
	return &RSS{base: newBase("rss:"+feed.Name, o), feed: feed}
}

func (r *RSS) Fetch(ctx context.Context) []domain.Topic {
	return r.guard(ctx, r.fetch)
}

func (r *RSS) fetch(ctx context.Context) ([]domain.Topic, error) {
	feed, err := r.getFeed(ctx, r.feed.URL)
	if err != nil {
		return nil, err
	}
	name := r.feed.Name
	if name == "" {
		name = feed.Title
	}
	var keep func(string) bool
	if len(r.feed.Keywords) > 0 {
		keep = func(text string) bool { return containsAny(text, r.feed.Keywords) }
	}
	return feedTopics(feed, domain.SourceRSS, name, r.now(), keep), nil
}
