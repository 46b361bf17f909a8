package video

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/engine/serper"
	"github.com/ajcontent/content-engine/pkg/metrics"
)

func TestScore_ShortBeatsLong(t *testing.T) {
	base := domain.VideoCandidate{Title: "Claude Code demo", Channel: "Some Dev"}
	short, long := base, base
	short.Duration = 45
	long.Duration = 700
	if gap := Score(short) - Score(long); gap < 450 {
		t.Errorf("45s vs 700s gap = %v, want >= 450", gap)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		v    domain.VideoCandidate
		want float64
	}{
		{"official demo", domain.VideoCandidate{Title: "Claude demo", Channel: "Anthropic", Duration: 45, Views: 100_000}, 200 + 300 + 250 + 10},
		{"keywords count once", domain.VideoCandidate{Title: "demo tutorial walkthrough guide", Channel: "x", Duration: 120}, 200 + 200},
		{"creator", domain.VideoCandidate{Title: "GPT in 100 seconds", Channel: "Fireship", Duration: 100}, 150 + 200},
		{"unknown duration", domain.VideoCandidate{Title: "clip", Channel: "x"}, 0},
		{"mid length", domain.VideoCandidate{Title: "clip", Channel: "x", Duration: 250}, 100},
		{"ten minutes", domain.VideoCandidate{Title: "clip", Channel: "x", Duration: 600}, 0},
		{"blocked broadcaster", domain.VideoCandidate{Title: "Breaking news: AI", Channel: "CNN", Duration: 700}, -300 - 500 - 200},
		{"news pattern once", domain.VideoCandidate{Title: "clip", Channel: "Daily News TV"}, -150},
		{"blocked with pattern", domain.VideoCandidate{Title: "clip", Channel: "Fox News"}, -500 - 150},
		{"aggregator exempt", domain.VideoCandidate{Title: "clip", Channel: "Hacker News"}, 0},
		{"views capped", domain.VideoCandidate{Title: "clip", Channel: "x", Views: 10_000_000}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.v); got != tt.want {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoreSubject(t *testing.T) {
	tests := []struct{ in, want string }{
		{"OpenAI just released the new GPT-5 model for everyone!", "OpenAI released GPT model everyone"},
		{"Anthropic's Claude: a deep dive into tools, agents, memory and more", "Anthropic Claude deep dive into"},
		{"the a of", "the a of"},
		{"!!!", "!!!"},
	}
	for _, tt := range tests {
		if got := CoreSubject(tt.in); got != tt.want {
			t.Errorf("CoreSubject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want domain.Platform
	}{
		{"https://www.youtube.com/watch?v=abc", domain.PlatformYouTube},
		{"https://youtu.be/abc", domain.PlatformYouTube},
		{"https://x.com/openai/status/1", domain.PlatformTwitter},
		{"https://vimeo.com/123", domain.PlatformVimeo},
		{"https://www.tiktok.com/@a/video/1", domain.PlatformTikTok},
		{"https://www.dailymotion.com/video/x1", domain.PlatformDailymotion},
		{"https://example.org/clip.mp4", domain.PlatformWeb},
	}
	for _, tt := range tests {
		if got := DetectPlatform(tt.url); got != tt.want {
			t.Errorf("DetectPlatform(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://vimeo.com/123456?share=copy", "123456"},
		{"https://example.org/" + strings.Repeat("a", 30), strings.Repeat("a", 20)},
	}
	for _, tt := range tests {
		if got := ExtractVideoID(tt.in); got != tt.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"45", 45}, {"3:45", 225}, {"1:02:30", 3750}, {"?", 0}, {"", 0}, {"abc", 0}, {"1:2:3:4", 0},
	}
	for _, tt := range tests {
		if got := ParseDuration(tt.in); got != tt.want {
			t.Errorf("ParseDuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
	for in, want := range map[string]int{"PT1H2M30S": 3750, "PT45S": 45, "P1D": 86400, "": 0, "junk": 0} {
		if got := parseISODuration(in); got != want {
			t.Errorf("parseISODuration(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestFormat(t *testing.T) {
	views := []struct {
		n    int64
		want string
	}{
		{1_234_567, "1.2M views"}, {3_400, "3.4K views"}, {12, "12 views"}, {0, ""},
	}
	for _, tt := range views {
		if got := FormatViews(tt.n); got != tt.want {
			t.Errorf("FormatViews(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
	if got := FormatDuration(125); got != "2:05" {
		t.Errorf("FormatDuration(125) = %q", got)
	}
	if got := FormatDuration(0); got != "?" {
		t.Errorf("FormatDuration(0) = %q", got)
	}
}

func TestYtDlp_Search(t *testing.T) {
	var gotArgs []string
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != "yt-dlp" {
			t.Errorf("binary = %q", name)
		}
		gotArgs = args
		return []byte(`{"id":"dQw4w9WgXcQ","title":"Claude demo","duration":62.4,"uploader":"Anthropic","view_count":1500,"thumbnails":[{"url":"small"},{"url":"large"}],"description":"` + strings.Repeat("d", 250) + `"}
not json
{"id":"abcdefghijk","url":"https://www.youtube.com/watch?v=abcdefghijk"}
`), nil
	}
	videos, err := NewYtDlp("", run).Search(context.Background(), "claude demo", 4)
	if err != nil {
		t.Fatal(err)
	}
	if gotArgs[len(gotArgs)-1] != "ytsearch4:claude demo" || !slices.Contains(gotArgs, "--flat-playlist") {
		t.Errorf("args = %v", gotArgs)
	}
	if len(videos) != 2 {
		t.Fatalf("got %d videos", len(videos))
	}
	v := videos[0]
	if v.VideoID != "dQw4w9WgXcQ" || v.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" || v.Channel != "Anthropic" {
		t.Errorf("unexpected %+v", v)
	}
	if v.Duration != 62 || v.DurationStr != "1:02" || v.ViewsStr != "1.5K views" || v.Thumbnail != "large" {
		t.Errorf("unexpected %+v", v)
	}
	if len(v.ID) != 8 || len(v.Description) != 200 || v.Platform != domain.PlatformYouTube || v.Source != "youtube" {
		t.Errorf("unexpected %+v", v)
	}
	if videos[1].Title != "Untitled" || videos[1].Channel != "Unknown" || videos[1].DurationStr != "?" {
		t.Errorf("defaults not applied: %+v", videos[1])
	}
}

func TestYtDlp_RunnerError(t *testing.T) {
	run := func(context.Context, string, ...string) ([]byte, error) { return nil, errors.New("exit status 1") }
	if _, err := NewYtDlp("yt-dlp", run).Search(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error")
	}
}

func TestYouTubeAPI_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("missing key on %s", r.URL.Path)
		}
		switch r.URL.Path {
		case "/search":
			if r.URL.Query().Get("q") != "claude demo" || r.URL.Query().Get("maxResults") != "4" {
				t.Errorf("query = %v", r.URL.Query())
			}
			w.Write([]byte(`{"items":[{"id":{"videoId":"dQw4w9WgXcQ"},"snippet":{"title":"Claude demo","channelTitle":"Anthropic","publishedAt":"2026-03-01T00:00:00Z","thumbnails":{"default":{"url":"d"},"high":{"url":"h"}}}},{"id":{}}]}`))
		case "/videos":
			if r.URL.Query().Get("id") != "dQw4w9WgXcQ" {
				t.Errorf("ids = %q", r.URL.Query().Get("id"))
			}
			w.Write([]byte(`{"items":[{"id":"dQw4w9WgXcQ","contentDetails":{"duration":"PT1M5S"},"statistics":{"viewCount":"2500000"}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	videos, err := NewYouTubeAPI("k").WithBaseURL(srv.URL).Search(context.Background(), "claude demo", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(videos) != 1 {
		t.Fatalf("got %d videos", len(videos))
	}
	v := videos[0]
	if v.Duration != 65 || v.Views != 2_500_000 || v.ViewsStr != "2.5M views" || v.Thumbnail != "h" || v.Channel != "Anthropic" {
		t.Errorf("unexpected %+v", v)
	}
}

func TestYouTubeAPI_Quota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewYouTubeAPI("k").WithBaseURL(srv.URL).Search(context.Background(), "q", 3)
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("err = %v, want ErrQuotaExhausted", err)
	}
}

func TestSerperVideos_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"videos":[
			{"title":"Demo","link":"https://vimeo.com/998877","duration":"2:05","source":"Vimeo","thumbnailUrl":"t"},
			{"link":"https://www.youtube.com/watch?v=dQw4w9WgXcQ","channel":"Fireship","imageUrl":"i"}
		]}`))
	}))
	defer srv.Close()

	b := NewSerperVideos(serper.New("key", time.Second).WithBaseURL(srv.URL))
	videos, err := b.Search(context.Background(), "claude demo", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(videos) != 2 {
		t.Fatalf("got %d videos", len(videos))
	}
	first, second := videos[0], videos[1]
	if first.Platform != domain.PlatformVimeo || first.VideoID != "998877" || first.Duration != 125 || first.DurationStr != "2:05" {
		t.Errorf("unexpected %+v", first)
	}
	if first.Channel != "Vimeo" || first.Thumbnail != "t" || first.Source != "serper" {
		t.Errorf("unexpected %+v", first)
	}
	if second.Title != "Untitled" || second.DurationStr != "?" || second.Thumbnail != "i" || second.Platform != domain.PlatformYouTube {
		t.Errorf("unexpected %+v", second)
	}
}

type fakeBackend struct {
	name   string
	mu     sync.Mutex
	calls  []string
	videos map[string][]domain.VideoCandidate
	err    error
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Search(_ context.Context, query string, n int) ([]domain.VideoCandidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.videos[query], nil
}

func TestEngine_Search(t *testing.T) {
	yt := &fakeBackend{name: "youtube", videos: map[string][]domain.VideoCandidate{
		"Claude Code demo": {
			{VideoID: "aaaaaaaaaaa", Title: "Claude Code interview", Channel: "Bloomberg", Duration: 900},
			{VideoID: "bbbbbbbbbbb", Title: "Claude Code demo", Channel: "Anthropic", Duration: 50},
		},
		"Claude Code tutorial walkthrough": {
			{VideoID: "bbbbbbbbbbb", Title: "duplicate", Channel: "Anthropic"},
			{Title: "Claude Code: first look!", Channel: "Riley Brown", Duration: 200},
		},
	}}
	sp := &fakeBackend{name: "serper", err: errors.New("status 500")}
	reg := metrics.New()
	e := New(Options{YouTube: yt, Serper: sp, Timeout: time.Second, Metrics: reg})

	got := e.Search(context.Background(), "Claude Code", 0)
	if len(got) != 2 {
		t.Fatalf("got %d videos: %+v", len(got), got)
	}
	if got[0].VideoID != "bbbbbbbbbbb" || got[0].Title != "Claude Code demo" {
		t.Errorf("first = %+v", got[0])
	}
	if got[0].Score < got[1].Score {
		t.Errorf("not sorted: %v < %v", got[0].Score, got[1].Score)
	}
	if len(yt.calls) != 3 || len(sp.calls) != 1 || sp.calls[0] != "Claude Code demo tutorial screen recording" {
		t.Errorf("calls yt=%v serper=%v", yt.calls, sp.calls)
	}
	if n := reg.Counter("content_video_search_errors_total", "", "backend", "serper").Value(); n != 1 {
		t.Errorf("error counter = %d", n)
	}

	if got := e.Search(context.Background(), "Claude Code", 1); len(got) != 1 {
		t.Errorf("max_results not applied: %d", len(got))
	}
}

func TestEngine_NothingFound(t *testing.T) {
	e := New(Options{YouTube: &fakeBackend{name: "youtube"}})
	got := e.Search(context.Background(), "nothing", 5)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestRank_BlocklistFallback(t *testing.T) {
	only := []domain.VideoCandidate{{Title: "a", Channel: "CNN"}, {Title: "b", Channel: "Reuters", Duration: 30}}
	got := Rank(only)
	if len(got) != 2 || got[0].Title != "b" {
		t.Errorf("all-blocked set should be kept and ranked, got %+v", got)
	}
	mixed := append(only, domain.VideoCandidate{Title: "c", Channel: "Dev"})
	if got := Rank(mixed); len(got) != 1 || got[0].Title != "c" {
		t.Errorf("blocked channels should be dropped, got %+v", got)
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]domain.VideoCandidate{
		{VideoID: "x", Title: "One"},
		{VideoID: "x", Title: "Two"},
		{Title: "Same Title!"},
		{Title: "same title"},
	})
	if len(got) != 2 || got[0].Title != "One" || got[1].Title != "Same Title!" {
		t.Errorf("Dedupe = %+v", got)
	}
}
