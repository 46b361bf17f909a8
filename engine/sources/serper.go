package sources

import (
	"context"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/engine/serper"
)

const serperNewsPerQuery = 6

// SerperNews runs one news query against the search engine, restricted to
// the past day. Serper has no popularity signal, so Score stays nil.
type SerperNews struct {
	base
	client *serper.Client
	query  string
}

// NewSerperNews creates an adapter for one query.
func NewSerperNews(client *serper.Client, query string, o Options) *SerperNews {
	return &SerperNews{base: newBase("serper:"+query, o), client: client, query: query}
}

func (s *SerperNews) Fetch(ctx context.Context) []domain.Topic {
	return s.guard(ctx, s.fetch)
}

func (s *SerperNews) fetch(ctx context.Context) ([]domain.Topic, error) {
	if !s.client.Configured() {
		s.log.Debug("serper disabled, no api key", "query", s.query)
		return nil, nil
	}
	news, err := s.client.News(ctx, s.query, serperNewsPerQuery, "qdr:d")
	if err != nil {
		return nil, err
	}

	topics := make([]domain.Topic, 0, len(news))
	for _, n := range news {
		if n.Title == "" {
			continue
		}
		image := n.ImageURL
		if image == "" {
			image = n.ThumbnailURL
		}
		timeAgo := n.Date
		if timeAgo == "" {
			timeAgo = "Recent"
		}
		topics = append(topics, domain.Topic{
			Title:      n.Title,
			URL:        n.Link,
			Snippet:    n.Snippet,
			Image:      domain.StrPtr(image),
			Source:     domain.SourceSerper,
			SourceName: n.Source,
			TimeAgo:    timeAgo,
		})
	}
	return topics, nil
}
