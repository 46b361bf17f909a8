// Package serper is a client for the Serper Google-search API, covering the
// news and video verticals.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultBaseURL is the public Serper endpoint.
const DefaultBaseURL = "https://google.serper.dev"

// ErrNoAPIKey is returned when the client has no credential.
var ErrNoAPIKey = errors.New("serper: no api key configured")

// Client calls Serper. The zero value is not usable; use New.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New creates a client. An empty apiKey yields a client whose calls return
// ErrNoAPIKey without touching the network.
func New(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// WithBaseURL points the client at another host (tests, proxies).
func (c *Client) WithBaseURL(u string) *Client {
	cp := *c
	cp.baseURL = u
	return &cp
}

// Configured reports whether the client has a credential.
func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

// NewsResult is one item from the news vertical.
type NewsResult struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	Snippet      string `json:"snippet"`
	Date         string `json:"date"`
	Source       string `json:"source"`
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// VideoResult is one item from the video vertical.
type VideoResult struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	Snippet      string `json:"snippet"`
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Duration     string `json:"duration"`
	Source       string `json:"source"`
	Channel      string `json:"channel"`
	Date         string `json:"date"`
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	TBS string `json:"tbs,omitempty"`
}

// News searches recent news. tbs is Serper's time filter, e.g. "qdr:d".
func (c *Client) News(ctx context.Context, query string, num int, tbs string) ([]NewsResult, error) {
	var out struct {
		News []NewsResult `json:"news"`
	}
	if err := c.post(ctx, "/news", searchRequest{Q: query, Num: num, TBS: tbs}, &out); err != nil {
		return nil, err
	}
	return out.News, nil
}

// Videos searches the video vertical.
func (c *Client) Videos(ctx context.Context, query string, num int) ([]VideoResult, error) {
	var out struct {
		Videos []VideoResult `json:"videos"`
	}
	if err := c.post(ctx, "/videos", searchRequest{Q: query, Num: num}, &out); err != nil {
		return nil, err
	}
	return out.Videos, nil
}

func (c *Client) post(ctx context.Context, path string, body searchRequest, out any) error {
	if !c.Configured() {
		return ErrNoAPIKey
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("serper %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("serper %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("serper %s: decode: %w", path, err)
	}
	return nil
}
