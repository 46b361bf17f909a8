package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ajcontent/content-engine/engine/domain"
)

const tweetSearchBody = `{
  "data": [
    {"id":"100","text":"@OpenAI New voice mode demo https://t.co/abc","author_id":"u1","created_at":"2026-03-10T10:00:00Z",
     "attachments":{"media_keys":["m1"]},"public_metrics":{"like_count":900,"retweet_count":100}},
    {"id":"101","text":"text only","author_id":"u1","attachments":{"media_keys":["p1"]},"public_metrics":{"like_count":5000}},
    {"id":"102","text":"Runway Gen-4 is here","author_id":"u2","created_at":"2026-03-09T10:00:00Z",
     "attachments":{"media_keys":["m2"]},"public_metrics":{"like_count":3000,"retweet_count":10}}
  ],
  "includes": {
    "users": [{"id":"u1","username":"OpenAI","name":"OpenAI"},{"id":"u2","username":"runwayml","name":"Runway"}],
    "media": [
      {"media_key":"m1","type":"video","preview_image_url":"https://pbs/m1.jpg","variants":[
        {"content_type":"application/x-mpegURL","url":"https://video/m1.m3u8"},
        {"content_type":"video/mp4","bit_rate":256000,"url":"https://video/m1-low.mp4"},
        {"content_type":"video/mp4","bit_rate":2176000,"url":"https://video/m1-high.mp4"}
      ]},
      {"media_key":"p1","type":"photo"},
      {"media_key":"m2","type":"video","variants":[{"content_type":"application/x-mpegURL","url":"https://video/m2.m3u8"}]}
    ]
  }
}`

func TestTwitterVideo(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		q := r.URL.Query()
		queries = append(queries, q.Get("query"))
		if q.Get("start_time") != "2026-03-07T12:00:00Z" {
			t.Errorf("start_time = %q", q.Get("start_time"))
		}
		w.Write([]byte(tweetSearchBody))
	}))
	defer srv.Close()

	accounts := map[string][]string{"official": {"OpenAI"}, "creators": {"runwayml"}}
	tw := NewTwitterVideo("tok", accounts, testOptions(srv))
	tw.endpoint = srv.URL
	got := tw.Fetch(context.Background())

	if len(queries) != 1 || queries[0] != "(from:OpenAI OR from:runwayml) has:videos -is:retweet" {
		t.Fatalf("queries = %q", queries)
	}
	if len(got) != 2 {
		t.Fatalf("got %d topics, want 2 video posts", len(got))
	}
	// Sorted by likes + retweets.
	if got[0].URL != "https://x.com/runwayml/status/102" || got[0].ScoreOrZero() != 3010 {
		t.Errorf("first = %+v", got[0])
	}
	if got[0].VideoURL != "https://video/m2.m3u8" {
		t.Errorf("without mp4 the first variant is used, got %q", got[0].VideoURL)
	}
	second := got[1]
	if second.Title != "New voice mode demo" {
		t.Errorf("title = %q", second.Title)
	}
	if second.VideoURL != "https://video/m1-high.mp4" {
		t.Errorf("video_url = %q", second.VideoURL)
	}
	if second.Source != domain.SourceTwitterVideo || second.SourceName != "@OpenAI" || second.TimeAgo != "2h ago" {
		t.Errorf("unexpected topic %+v", second)
	}
}

func TestTwitterVideo_NoToken(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }))
	defer srv.Close()

	tw := NewTwitterVideo("", map[string][]string{"official": {"OpenAI"}}, testOptions(srv))
	tw.endpoint = srv.URL
	if got := tw.Fetch(context.Background()); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if hits.Load() != 0 {
		t.Error("no request should be made without a token")
	}
}

func TestTwitterVideo_RateLimitedBatchSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tw := NewTwitterVideo("tok", map[string][]string{"news": {"verge"}}, testOptions(srv))
	tw.endpoint = srv.URL
	if got := tw.Fetch(context.Background()); len(got) != 0 {
		t.Errorf("expected no topics, got %v", got)
	}
}

func TestOrderedHandles(t *testing.T) {
	accounts := map[string][]string{
		"zeta":     {"z1"},
		"news":     {"n1", "OpenAI"},
		"alpha":    {"a1"},
		"creators": {"c1"},
		"official": {"openai", "o2"},
	}
	want := []string{"openai", "o2", "c1", "n1", "a1", "z1"}
	if got := orderedHandles(accounts); !slices.Equal(got, want) {
		t.Errorf("orderedHandles = %v, want %v", got, want)
	}
}

func TestTwitterVideo_Batches(t *testing.T) {
	var handles []string
	for i := range 30 {
		handles = append(handles, "h"+strings.Repeat("x", i))
	}
	var queries atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries.Add(1)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	tw := NewTwitterVideo("tok", map[string][]string{"official": handles}, testOptions(srv))
	tw.endpoint = srv.URL
	tw.Fetch(context.Background())
	if queries.Load() != 3 {
		t.Errorf("30 handles should need 3 batches, got %d", queries.Load())
	}
}

func TestCleanTweetText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"strips urls and mentions", "@a @b Big news https://t.co/x", "Big news"},
		{"joins short first line", "Wow\nGemini 3 just dropped\nmore", "Wow Gemini 3 just dropped"},
		{"keeps long first line", "This first line is definitely longer than thirty\nsecond", "This first line is definitely longer than thirty"},
		{"truncates", strings.Repeat("a", 130), strings.Repeat("a", 117) + "..."},
		{"only a url", "https://t.co/x", "https://t.co/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanTweetText(tt.in); got != tt.want {
				t.Errorf("cleanTweetText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
