package sources

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/pkg/fn"
	"github.com/ajcontent/content-engine/pkg/resilience"
)

const (
	twitterSearchURL  = "https://api.twitter.com/2/tweets/search/recent"
	twitterBatchSize  = 12
	twitterMaxResults = 20
	twitterLookback   = 72 * time.Hour
)

// tierOrder fixes which accounts go into the first batches.
var tierOrder = []string{"official", "creators", "news"}

// TwitterVideo finds recent native-video posts from tracked accounts.
type TwitterVideo struct {
	base
	endpoint string
	token    string
	handles  []string
	pace     *resilience.Limiter
}

// NewTwitterVideo creates the social-video adapter. accounts maps a tier name
// to handles; a blank token disables the adapter.
func NewTwitterVideo(token string, accounts map[string][]string, o Options) *TwitterVideo {
	return &TwitterVideo{
		base:     newBase("twitter_video", o),
		endpoint: twitterSearchURL,
		token:    token,
		handles:  orderedHandles(accounts),
		pace:     resilience.NewLimiter(resilience.LimiterOpts{Rate: 2, Burst: 2}),
	}
}

func (t *TwitterVideo) Fetch(ctx context.Context) []domain.Topic {
	return t.guard(ctx, t.fetch)
}

func orderedHandles(accounts map[string][]string) []string {
	tiers := slices.Clone(tierOrder)
	var extra []string
	for tier := range accounts {
		if !slices.Contains(tierOrder, tier) {
			extra = append(extra, tier)
		}
	}
	slices.Sort(extra)
	tiers = append(tiers, extra...)

	var handles []string
	for _, tier := range tiers {
		handles = append(handles, accounts[tier]...)
	}
	return fn.UniqueBy(handles, strings.ToLower)
}

type tweetSearchResponse struct {
	Data     []tweet `json:"data"`
	Includes struct {
		Users []tweetUser  `json:"users"`
		Media []tweetMedia `json:"media"`
	} `json:"includes"`
}

type tweet struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	AuthorID    string `json:"author_id"`
	CreatedAt   string `json:"created_at"`
	Attachments struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
	} `json:"public_metrics"`
}

type tweetUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type tweetMedia struct {
	MediaKey        string         `json:"media_key"`
	Type            string         `json:"type"`
	PreviewImageURL string         `json:"preview_image_url"`
	DurationMS      int            `json:"duration_ms"`
	Variants        []mediaVariant `json:"variants"`
}

type mediaVariant struct {
	BitRate     int    `json:"bit_rate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

func (t *TwitterVideo) fetch(ctx context.Context) ([]domain.Topic, error) {
	if t.token == "" {
		t.log.Debug("twitter video scan disabled, no bearer token")
		return nil, nil
	}
	if len(t.handles) == 0 {
		return nil, nil
	}

	startTime := t.now().UTC().Add(-twitterLookback).Format("2006-01-02T15:04:05Z")
	batches := fn.Chunk(t.handles, twitterBatchSize)
	calls := make([]func() fn.Result[[]domain.Topic], len(batches))
	for i, batch := range batches {
		calls[i] = func() fn.Result[[]domain.Topic] {
			if err := t.pace.Wait(ctx); err != nil {
				return fn.Err[[]domain.Topic](err)
			}
			return fn.FromPair(t.fetchBatch(ctx, batch, startTime))
		}
	}

	topics, errs := fn.Partition(fn.FanOut(calls...))
	if len(errs) == len(batches) {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		t.log.Warn("twitter batch failed", "error", err)
	}

	var all []domain.Topic
	for _, batch := range topics {
		all = append(all, batch...)
	}
	// Batch topics carry the tweet URL, which embeds the unique id.
	all = fn.UniqueBy(all, func(tp domain.Topic) string { return tp.URL })
	slices.SortStableFunc(all, func(a, b domain.Topic) int {
		return cmp.Compare(b.ScoreOrZero(), a.ScoreOrZero())
	})
	return fn.Take(all, twitterMaxResults), nil
}

func (t *TwitterVideo) fetchBatch(ctx context.Context, handles []string, startTime string) ([]domain.Topic, error) {
	from := make([]string, len(handles))
	for i, h := range handles {
		from[i] = "from:" + h
	}
	q := url.Values{}
	q.Set("query", "("+strings.Join(from, " OR ")+") has:videos -is:retweet")
	q.Set("max_results", strconv.Itoa(min(twitterMaxResults, 100)))
	q.Set("start_time", startTime)
	q.Set("sort_order", "relevancy")
	q.Set("tweet.fields", "created_at,public_metrics,author_id,attachments,entities")
	q.Set("expansions", "author_id,attachments.media_keys")
	q.Set("media.fields", "type,url,preview_image_url,duration_ms,variants")
	q.Set("user.fields", "username,name,profile_image_url,verified")

	header := http.Header{"Authorization": {"Bearer " + t.token}}
	var resp tweetSearchResponse
	if err := t.getJSON(ctx, t.endpoint+"?"+q.Encode(), header, &resp); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
			t.log.Warn("twitter rate limited, skipping batch", "accounts", len(handles))
			return nil, nil
		}
		return nil, fmt.Errorf("twitter search: %w", err)
	}

	users := make(map[string]tweetUser, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		users[u.ID] = u
	}
	media := make(map[string]tweetMedia, len(resp.Includes.Media))
	for _, m := range resp.Includes.Media {
		media[m.MediaKey] = m
	}

	now := t.now()
	var topics []domain.Topic
	for _, tw := range resp.Data {
		video, ok := firstVideo(tw.Attachments.MediaKeys, media)
		if !ok {
			continue
		}
		username := users[tw.AuthorID].Username
		var created time.Time
		if ts, err := time.Parse(time.RFC3339, tw.CreatedAt); err == nil {
			created = ts
		}
		topics = append(topics, domain.Topic{
			Title:      cleanTweetText(tw.Text),
			URL:        fmt.Sprintf("https://x.com/%s/status/%s", username, tw.ID),
			Snippet:    truncate(tw.Text, snippetMaxRune),
			Image:      domain.StrPtr(video.PreviewImageURL),
			Source:     domain.SourceTwitterVideo,
			SourceName: "@" + username,
			TimeAgo:    TimeAgo(created, now),
			Score:      domain.IntPtr(tw.PublicMetrics.LikeCount + tw.PublicMetrics.RetweetCount),
			VideoURL:   bestVariant(video.Variants),
		})
	}
	return topics, nil
}

func firstVideo(keys []string, media map[string]tweetMedia) (tweetMedia, bool) {
	for _, k := range keys {
		if m, ok := media[k]; ok && m.Type == "video" {
			return m, true
		}
	}
	return tweetMedia{}, false
}

// bestVariant picks the highest-bitrate mp4, else the first variant.
func bestVariant(variants []mediaVariant) string {
	var best *mediaVariant
	for i := range variants {
		v := &variants[i]
		if v.ContentType != "video/mp4" {
			continue
		}
		if best == nil || v.BitRate > best.BitRate {
			best = v
		}
	}
	switch {
	case best != nil:
		return best.URL
	case len(variants) > 0:
		return variants[0].URL
	default:
		return ""
	}
}

var (
	tweetURLRe     = regexp.MustCompile(`https?://\S+`)
	tweetMentionRe = regexp.MustCompile(`^(@\w+\s*)+`)
)

// cleanTweetText turns a post body into a headline of at most 120 runes.
func cleanTweetText(text string) string {
	s := strings.TrimSpace(tweetURLRe.ReplaceAllString(text, ""))
	s = strings.TrimSpace(tweetMentionRe.ReplaceAllString(s, ""))

	lines := strings.Split(s, "\n")
	title := strings.TrimSpace(lines[0])
	if utf8.RuneCountInString(title) < 30 && len(lines) > 1 {
		title += " " + strings.TrimSpace(lines[1])
	}
	if utf8.RuneCountInString(title) > 120 {
		title = truncate(title, 117) + "..."
	}
	if title == "" {
		return truncate(text, 120)
	}
	return title
}
