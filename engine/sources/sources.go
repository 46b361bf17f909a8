// Package sources contains one adapter per external content source. Every
// adapter maps its upstream schema onto domain.Topic and never fails: network
// errors, bad payloads and missing credentials are logged and counted, and the
// adapter yields no topics.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/pkg/logging"
	"github.com/ajcontent/content-engine/pkg/metrics"
)

// UserAgent is sent to sources that reject anonymous clients.
const UserAgent = "AJContentEngine/1.0"

// Adapter fetches one source instance.
type Adapter interface {
	// Name identifies the instance in logs and metrics, e.g. "reddit:LocalLLaMA".
	Name() string
	Fetch(ctx context.Context) []domain.Topic
}

// Options are shared by every adapter constructor. Zero values are filled in.
type Options struct {
	HTTPClient *http.Client
	Log        *slog.Logger
	Metrics    *metrics.Registry
	Now        func() time.Time
}

// NewHTTPClient returns a traced client with the given timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

type base struct {
	name   string
	client *http.Client
	log    *slog.Logger
	reg    *metrics.Registry
	now    func() time.Time
}

func newBase(name string, o Options) base {
	b := base{name: name, client: o.HTTPClient, log: logging.OrDefault(o.Log), reg: o.Metrics, now: o.Now}
	if b.client == nil {
		b.client = NewHTTPClient(15 * time.Second)
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

func (b base) Name() string { return b.name }

// guard runs fetch and converts any failure into an empty result.
func (b base) guard(ctx context.Context, fetch func(context.Context) ([]domain.Topic, error)) []domain.Topic {
	start := time.Now()
	topics, err := fetch(ctx)
	if b.reg != nil {
		b.reg.Histogram("content_source_fetch_seconds", "Source fetch latency", nil, "source", b.name).Since(start)
	}
	if err != nil {
		b.log.Warn("source fetch failed", "source", b.name, "error", err)
		if b.reg != nil {
			b.reg.Counter("content_source_errors_total", "Failed source fetches", "source", b.name).Inc()
		}
		return nil
	}
	if b.reg != nil {
		b.reg.Counter("content_source_topics_total", "Topics returned by sources", "source", b.name).Add(int64(len(topics)))
	}
	b.log.Debug("source fetched", "source", b.name, "topics", len(topics), "duration", time.Since(start))
	return topics
}

// StatusError is a non-200 upstream response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// get performs a GET and returns the body of a 200 response.
func (b base) get(ctx context.Context, url string, header http.Header) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}
	return resp.Body, nil
}

func (b base) getJSON(ctx context.Context, url string, header http.Header, v any) error {
	body, err := b.get(ctx, url, header)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
