package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ajcontent/content-engine/engine/domain"
)

const (
	algoliaSearchURL = "https://hn.algolia.com/api/v1/search"
	hnHitsPerPage    = 12
)

// HackerNews searches stories above a points threshold via the Algolia API.
type HackerNews struct {
	base
	endpoint  string
	query     string
	minPoints int
}

// NewHackerNews creates the link-aggregator adapter.
func NewHackerNews(query string, minPoints int, o Options) *HackerNews {
	return &HackerNews{
		base:      newBase("hackernews", o),
		endpoint:  algoliaSearchURL,
		query:     query,
		minPoints: minPoints,
	}
}

func (h *HackerNews) Fetch(ctx context.Context) []domain.Topic {
	return h.guard(ctx, h.fetch)
}

// algoliaResponse is the search envelope.
type algoliaResponse struct {
	Hits []algoliaHit `json:"hits"`
}

type algoliaHit struct {
	ObjectID  string `json:"objectID"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Points    int    `json:"points"`
	CreatedAt string `json:"created_at"`
}

func (h *HackerNews) fetch(ctx context.Context) ([]domain.Topic, error) {
	q := url.Values{}
	q.Set("query", h.query)
	q.Set("tags", "story")
	q.Set("numericFilters", fmt.Sprintf("points>%d", h.minPoints))
	q.Set("hitsPerPage", strconv.Itoa(hnHitsPerPage))

	var resp algoliaResponse
	if err := h.getJSON(ctx, h.endpoint+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	now := h.now()
	topics := make([]domain.Topic, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		// numericFilters already applies server-side; keep the floor locally too.
		if hit.Title == "" || hit.Points <= h.minPoints {
			continue
		}
		link := hit.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}
		timeAgo := "Recent"
		if t, err := time.Parse(time.RFC3339, hit.CreatedAt); err == nil {
			timeAgo = TimeAgo(t, now)
		}
		topics = append(topics, domain.Topic{
			Title:      hit.Title,
			URL:        link,
			Source:     domain.SourceHackerNews,
			SourceName: "Hacker News",
			TimeAgo:    timeAgo,
			Score:      domain.IntPtr(hit.Points),
		})
	}
	return topics, nil
}
