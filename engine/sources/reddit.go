package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/pkg/fn"
)

const (
	redditBaseURL   = "https://www.reddit.com"
	redditPostLimit = 8
)

// Reddit fetches the hot listing of one subreddit from the public JSON API.
type Reddit struct {
	base
	baseURL   string
	subreddit string
	retry     fn.RetryOpts
}

// NewReddit creates an adapter for r/subreddit.
func NewReddit(subreddit string, o Options) *Reddit {
	return &Reddit{
		base:      newBase("reddit:"+subreddit, o),
		baseURL:   redditBaseURL,
		subreddit: subreddit,
		retry:     fn.DefaultRetry,
	}
}

func (r *Reddit) Fetch(ctx context.Context) []domain.Topic {
	return r.guard(ctx, r.fetch)
}

func (r *Reddit) fetch(ctx context.Context) ([]domain.Topic, error) {
	u := fmt.Sprintf("%s/r/%s/hot.json?limit=%d&raw_json=1", r.baseURL, url.PathEscape(r.subreddit), redditPostLimit)

	listing, err := fn.Retry(ctx, r.retry, func(ctx context.Context) fn.Result[*listingResponse] {
		var resp listingResponse
		if err := r.getJSON(ctx, u, nil, &resp); err != nil {
			var se *StatusError
			if errors.As(err, &se) && !se.Retryable() {
				return fn.Err[*listingResponse](fn.Permanent(err))
			}
			return fn.Err[*listingResponse](err)
		}
		return fn.Ok(&resp)
	}).Unwrap()
	if err != nil {
		return nil, fmt.Errorf("r/%s listing: %w", r.subreddit, err)
	}

	now := r.now()
	topics := make([]domain.Topic, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		if d.Stickied || d.Title == "" {
			continue
		}
		var image *string
		if strings.HasPrefix(d.Thumbnail, "http") {
			image = domain.StrPtr(d.Thumbnail)
		}
		var created time.Time
		if d.CreatedUTC > 0 {
			created = time.Unix(int64(d.CreatedUTC), 0)
		}
		topics = append(topics, domain.Topic{
			Title:      d.Title,
			URL:        "https://reddit.com" + d.Permalink,
			Snippet:    truncate(d.SelfText, 200),
			Image:      image,
			Source:     domain.SourceReddit,
			SourceName: "r/" + r.subreddit,
			TimeAgo:    TimeAgo(created, now),
			Score:      domain.IntPtr(d.Score),
		})
	}
	return topics, nil
}

// Reddit JSON API response types

type listingResponse struct {
	Data struct {
		Children []listingChild `json:"children"`
	} `json:"data"`
}

type listingChild struct {
	Kind string      `json:"kind"`
	Data listingData `json:"data"`
}

type listingData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	Thumbnail  string  `json:"thumbnail"`
	Score      int     `json:"score"`
	Stickied   bool    `json:"stickied"`
	CreatedUTC float64 `json:"created_utc"`
}
