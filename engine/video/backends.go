package video

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/engine/serper"
)

// Backend searches one video index.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, n int) ([]domain.VideoCandidate, error)
}

func shortID() string { return uuid.NewString()[:8] }

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", name, err, truncate(strings.TrimSpace(stderr.String()), 300))
	}
	return out, nil
}

// YtDlp searches the video platform through the yt-dlp command-line tool.
type YtDlp struct {
	bin     string
	run     Runner
	timeout time.Duration
}

// NewYtDlp creates a search backend around the binary at bin. run may be nil.
func NewYtDlp(bin string, run Runner) *YtDlp {
	if bin == "" {
		bin = "yt-dlp"
	}
	if run == nil {
		run = ExecRunner
	}
	return &YtDlp{bin: bin, run: run, timeout: 30 * time.Second}
}

func (y *YtDlp) Name() string { return "youtube" }

// ytdlpEntry is one --dump-json line.
type ytdlpEntry struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Thumbnail   string  `json:"thumbnail"`
	Duration    float64 `json:"duration"`
	Channel     string  `json:"channel"`
	Uploader    string  `json:"uploader"`
	ViewCount   int64   `json:"view_count"`
	UploadDate  string  `json:"upload_date"`
	Description string  `json:"description"`
	Thumbnails  []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

func (y *YtDlp) Search(ctx context.Context, query string, n int) ([]domain.VideoCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	out, err := y.run(ctx, y.bin, "--dump-json", "--no-download", "--flat-playlist",
		"--no-warnings", "--quiet", fmt.Sprintf("ytsearch%d:%s", n, query))
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("yt-dlp not installed: %w", err)
		}
		return nil, err
	}

	var videos []domain.VideoCandidate
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e ytdlpEntry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		videos = append(videos, e.candidate())
	}
	return videos, sc.Err()
}

func (e ytdlpEntry) candidate() domain.VideoCandidate {
	link := e.URL
	if link == "" {
		link = "https://www.youtube.com/watch?v=" + e.ID
	}
	thumb := e.Thumbnail
	if thumb == "" && len(e.Thumbnails) > 0 {
		thumb = e.Thumbnails[len(e.Thumbnails)-1].URL
	}
	channel := e.Channel
	if channel == "" {
		channel = e.Uploader
	}
	if channel == "" {
		channel = "Unknown"
	}
	title := e.Title
	if title == "" {
		title = "Untitled"
	}
	dur := int(e.Duration)
	return domain.VideoCandidate{
		ID:          shortID(),
		VideoID:     e.ID,
		Title:       title,
		URL:         link,
		Thumbnail:   thumb,
		Channel:     channel,
		Duration:    dur,
		DurationStr: FormatDuration(dur),
		Views:       e.ViewCount,
		ViewsStr:    FormatViews(e.ViewCount),
		Platform:    domain.PlatformYouTube,
		Description: truncate(e.Description, 200),
		UploadDate:  e.UploadDate,
		Source:      "youtube",
	}
}

// ErrQuotaExhausted is returned when the Data API quota is exceeded.
var ErrQuotaExhausted = errors.New("youtube api quota exhausted")

const youTubeAPIBase = "https://www.googleapis.com/youtube/v3"

// YouTubeAPI searches through the YouTube Data API v3 and fills duration and
// views with a videos.list call. Calls share one rate limiter.
type YouTubeAPI struct {
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	httpClient  *http.Client
}

// NewYouTubeAPI creates a Data API backend.
func NewYouTubeAPI(apiKey string) *YouTubeAPI {
	return &YouTubeAPI{
		apiKey:      apiKey,
		baseURL:     youTubeAPIBase,
		rateLimiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// WithBaseURL points the backend at another host, for tests.
func (y *YouTubeAPI) WithBaseURL(u string) *YouTubeAPI {
	y.baseURL = u
	return y
}

func (y *YouTubeAPI) Name() string { return "youtube" }

type apiSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet apiSnippet `json:"snippet"`
	} `json:"items"`
}

type apiSnippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Thumbnails   map[string]struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

type apiVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func (y *YouTubeAPI) Search(ctx context.Context, query string, n int) ([]domain.VideoCandidate, error) {
	var sr apiSearchResponse
	err := y.get(ctx, "/search", url.Values{
		"part":              {"snippet"},
		"q":                 {query},
		"type":              {"video"},
		"relevanceLanguage": {"en"},
		"maxResults":        {strconv.Itoa(n)},
	}, &sr)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sr.Items))
	for _, it := range sr.Items {
		if it.ID.VideoID != "" {
			ids = append(ids, it.ID.VideoID)
		}
	}
	type stats struct {
		duration int
		views    int64
	}
	details := map[string]stats{}
	if len(ids) > 0 {
		var vr apiVideosResponse
		err := y.get(ctx, "/videos", url.Values{
			"part": {"contentDetails,statistics"},
			"id":   {strings.Join(ids, ",")},
		}, &vr)
		// Missing details only cost scoring signal.
		if err == nil {
			for _, it := range vr.Items {
				views, _ := strconv.ParseInt(it.Statistics.ViewCount, 10, 64)
				details[it.ID] = stats{parseISODuration(it.ContentDetails.Duration), views}
			}
		}
	}

	videos := make([]domain.VideoCandidate, 0, len(ids))
	for _, it := range sr.Items {
		id := it.ID.VideoID
		if id == "" {
			continue
		}
		d := details[id]
		videos = append(videos, domain.VideoCandidate{
			ID:          shortID(),
			VideoID:     id,
			Title:       it.Snippet.Title,
			URL:         "https://www.youtube.com/watch?v=" + id,
			Thumbnail:   bestThumbnail(it.Snippet),
			Channel:     it.Snippet.ChannelTitle,
			Duration:    d.duration,
			DurationStr: FormatDuration(d.duration),
			Views:       d.views,
			ViewsStr:    FormatViews(d.views),
			Platform:    domain.PlatformYouTube,
			Description: truncate(it.Snippet.Description, 200),
			UploadDate:  it.Snippet.PublishedAt,
			Source:      "youtube",
		})
	}
	return videos, nil
}

func bestThumbnail(s apiSnippet) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := s.Thumbnails[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

func (y *YouTubeAPI) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := y.rateLimiter.Wait(ctx); err != nil {
		return err
	}
	params.Set("key", y.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := y.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return ErrQuotaExhausted
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube %s: status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("youtube %s: decode: %w", path, err)
	}
	return nil
}

// SerperVideos searches the general web-video index.
type SerperVideos struct {
	client *serper.Client
}

// NewSerperVideos wraps a Serper client.
func NewSerperVideos(client *serper.Client) *SerperVideos {
	return &SerperVideos{client: client}
}

func (s *SerperVideos) Name() string { return "serper" }

func (s *SerperVideos) Search(ctx context.Context, query string, n int) ([]domain.VideoCandidate, error) {
	results, err := s.client.Videos(ctx, query, n)
	if err != nil {
		return nil, err
	}
	videos := make([]domain.VideoCandidate, 0, min(len(results), n))
	for _, v := range results {
		if len(videos) >= n {
			break
		}
		thumb := v.ImageURL
		if thumb == "" {
			thumb = v.ThumbnailURL
		}
		channel := v.Channel
		if channel == "" {
			channel = v.Source
		}
		if channel == "" {
			channel = "Unknown"
		}
		title := v.Title
		if title == "" {
			title = "Untitled"
		}
		durStr := v.Duration
		if durStr == "" {
			durStr = "?"
		}
		videos = append(videos, domain.VideoCandidate{
			ID:          shortID(),
			VideoID:     ExtractVideoID(v.Link),
			Title:       title,
			URL:         v.Link,
			Thumbnail:   thumb,
			Channel:     channel,
			Duration:    ParseDuration(v.Duration),
			DurationStr: durStr,
			Platform:    DetectPlatform(v.Link),
			Description: truncate(v.Snippet, 200),
			UploadDate:  v.Date,
			Source:      "serper",
		})
	}
	return videos, nil
}
