package trending

import (
	"fmt"
	"time"

	"github.com/gorilla/feeds"

	"github.com/ajcontent/content-engine/engine/domain"
)

// Atom renders a trending page as an Atom document. selfURL is the address
// the feed is served from.
func Atom(page domain.TrendingPage, selfURL string, now time.Time) (string, error) {
	feed := &feeds.Feed{
		Title:       "AI Trending Topics",
		Description: "Ranked AI news, launches, research and community threads",
		Link:        &feeds.Link{Href: selfURL, Rel: "self", Type: "application/atom+xml"},
		Id:          fmt.Sprintf("tag:content-engine,2026:trending:%d", page.Page),
		Created:     now,
		Updated:     now,
	}

	for _, t := range page.Topics {
		id := t.URL
		if id == "" {
			id = "tag:content-engine,2026:topic:" + DedupKey(t.Title)
		}
		author := t.SourceName
		if author == "" {
			author = string(t.Source)
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       t.Title,
			Link:        &feeds.Link{Href: t.URL, Rel: "alternate", Type: "text/html"},
			Id:          id,
			Author:      &feeds.Author{Name: author},
			Description: fmt.Sprintf("[%s] %s", t.Category, t.WhyTrending),
			Created:     now,
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return "", fmt.Errorf("render atom: %w", err)
	}
	return atom, nil
}
