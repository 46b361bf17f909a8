package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/ajcontent/content-engine/engine/domain"
)

const arxivAPIURL = "http://export.arxiv.org/api/query"

// ArXiv pulls the newest submissions in a set of categories from the arXiv
// Atom API.
type ArXiv struct {
	base
	endpoint   string
	categories []string
}

// NewArXiv creates the paper-repository adapter.
func NewArXiv(categories []string, o Options) *ArXiv {
	return &ArXiv{base: newBase("arxiv", o), endpoint: arxivAPIURL, categories: categories}
}

func (a *ArXiv) Fetch(ctx context.Context) []domain.Topic {
	return a.guard(ctx, a.fetch)
}

func (a *ArXiv) queryURL() string {
	terms := make([]string, len(a.categories))
	for i, c := range a.categories {
		terms[i] = "cat:" + c
	}
	q := url.Values{}
	q.Set("search_query", strings.Join(terms, " OR "))
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")
	q.Set("max_results", "10")
	return a.endpoint + "?" + q.Encode()
}

func (a *ArXiv) fetch(ctx context.Context) ([]domain.Topic, error) {
	if len(a.categories) == 0 {
		return nil, nil
	}
	feed, err := a.getFeed(ctx, a.queryURL())
	if err != nil {
		return nil, err
	}
	return feedTopics(feed, domain.SourceArXiv, "arXiv", a.now(), nil), nil
}
