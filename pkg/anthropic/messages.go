// Package anthropic wraps the Anthropic Go SDK behind a single call:
// one system prompt, one user turn, text out.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://api.anthropic.com/"
	DefaultModel   = "claude-sonnet-4-20250514"
)

var ErrNoAPIKey = errors.New("anthropic: no api key configured")

// Client calls the Messages endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// New creates a client. A blank model selects DefaultModel.
func New(apiKey, model string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// WithBaseURL points the client at another host.
func (c *Client) WithBaseURL(u string) *Client {
	cp := *c
	cp.baseURL = strings.TrimRight(u, "/") + "/"
	return &cp
}

func (c *Client) Model() string { return c.model }

// StatusError is a non-200 reply. Body holds the start of the error message.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("anthropic: status %d: %s", e.Code, e.Body)
}

// Complete sends one user message and returns the concatenated text blocks
// of the reply. Callers own retries, so the SDK's are off.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if c == nil || c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	api := sdk.NewClient(
		option.WithAPIKey(c.apiKey),
		option.WithBaseURL(c.baseURL),
		option.WithHTTPClient(c.client),
		option.WithMaxRetries(0),
	)
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(user))},
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := api.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{Code: apiErr.StatusCode, Body: firstBytes(apiErr.Error(), 300)}
		}
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, b := range msg.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}
	return text.String(), nil
}

func firstBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
