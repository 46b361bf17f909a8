// Package shorts reframes trending topics as short-form video ideas. It picks
// the most shorts-worthy topics, asks an LLM for hook titles, and falls back
// to a mechanical rewrite whenever the model is unavailable or unparseable.
package shorts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ajcontent/content-engine/engine/domain"
	"github.com/ajcontent/content-engine/pkg/logging"
	"github.com/ajcontent/content-engine/pkg/metrics"
)

// Completer is a single-turn text model.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Options configures a Rewriter.
type Options struct {
	DefaultTopics int
	MaxTopics     int
	MaxTokens     int
	Timeout       time.Duration
	SystemPrompt  string
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		DefaultTopics: 12,
		MaxTopics:     30,
		MaxTokens:     2000,
		Timeout:       30 * time.Second,
		SystemPrompt:  systemPrompt,
	}
}

const systemPrompt = `You are a viral YouTube Shorts title generator for an AI/tech news channel.

Rewrite each trending AI headline you are given into a punchy, scroll-stopping
Shorts title, ideally under 60 characters and never over 80.

Rules:
1. Every title must trigger curiosity, urgency or FOMO.
2. Lean on proven hook formulas:
   - "[Company] just [did something wild]"
   - "China's new [X] is beating [Y]"
   - "Free [valuable thing] !!"
   - "This [secret/tool] changes everything"
   - "[Number]+ [resources] for [audience]"
   - "You can [do X] for FREE"
   - "[Company]'s secret [X] is out"
   - "This [tool] is beating [competitor]"
   - "[Company] just killed [product]"
   - "How to [achieve result] with AI"
3. Casual tone, sentence case, no hashtags or emojis.
4. Use ".." or "!!" sparingly.
5. Each title must work as a standalone hook.

Label each item with a hook_type, one of: drama, free_resource, tool_discovery,
competition, secret_leak, how_to, career, mind_blown.
Add a one-sentence "angle" describing what the short should cover.

Respond ONLY with a JSON array, one object per headline, in input order:
[{"original": "...", "shorts_title": "...", "hook_type": "drama", "angle": "..."}]`

// Rewriter turns topics into ShortsIdea records. llm may be nil, in which case
// every call uses the fallback.
type Rewriter struct {
	llm  Completer
	opts Options
	log  *slog.Logger
	reg  *metrics.Registry
}

// New creates a Rewriter.
func New(llm Completer, opts Options, log *slog.Logger, reg *metrics.Registry) *Rewriter {
	return &Rewriter{llm: llm, opts: opts, log: logging.OrDefault(log), reg: reg}
}

// Rewrite selects up to maxTopics topics and reframes them. maxTopics of 0
// means the default; anything else is clamped to [1, MaxTopics].
func (r *Rewriter) Rewrite(ctx context.Context, topics []domain.Topic, maxTopics int) []domain.ShortsIdea {
	n := domain.Clamp(maxTopics, r.opts.DefaultTopics, 1, r.opts.MaxTopics)
	selected := SelectBest(topics, n)
	if len(selected) == 0 {
		return []domain.ShortsIdea{}
	}
	if r.llm == nil {
		r.log.Warn("no llm configured, using fallback rewriter")
		r.count("fallback")
		return Fallback(selected)
	}

	ideas, err := r.rewriteLLM(ctx, selected)
	if err != nil {
		r.log.Error("shorts rewrite failed, using fallback", "error", err, "topics", len(selected))
		r.count("fallback")
		return Fallback(selected)
	}
	r.count("llm")
	return ideas
}

func (r *Rewriter) count(mode string) {
	if r.reg != nil {
		r.reg.Counter("content_shorts_rewrites_total", "Shorts rewrites by mode", "mode", mode).Inc()
	}
}

func (r *Rewriter) rewriteLLM(ctx context.Context, selected []domain.Topic) ([]domain.ShortsIdea, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	lines := make([]string, len(selected))
	for i, t := range selected {
		lines[i] = "- " + t.Title
	}
	user := "Rewrite these trending AI headlines into viral YouTube Shorts titles:\n\n" + strings.Join(lines, "\n")

	text, err := r.llm.Complete(ctx, r.opts.SystemPrompt, user, r.opts.MaxTokens)
	if err != nil {
		return nil, err
	}
	items, err := ParseRewrites(text)
	if err != nil {
		return nil, err
	}
	return Merge(selected, items), nil
}

// Rewrite is one element of the model's JSON reply.
type Rewrite struct {
	Original    string `json:"original"`
	ShortsTitle string `json:"shorts_title"`
	HookType    string `json:"hook_type"`
	Angle       string `json:"angle"`
}

var ErrMalformedReply = errors.New("shorts: malformed model reply")

// ParseRewrites decodes the model reply, tolerating a surrounding code fence.
// An empty array counts as malformed.
func ParseRewrites(text string) ([]Rewrite, error) {
	text = StripFences(text)
	var items []Rewrite
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrMalformedReply)
	}
	return items, nil
}

// StripFences removes a leading ``` line (with optional language tag) and
// everything from the last ``` on.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = text[3:]
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// Merge pairs rewrites with the selection by position. Output follows the
// selection order; rewrites beyond it are dropped and missing ones are not
// invented.
func Merge(selected []domain.Topic, items []Rewrite) []domain.ShortsIdea {
	n := min(len(selected), len(items))
	out := make([]domain.ShortsIdea, 0, n)
	for i := range n {
		t, item := selected[i], items[i]
		title := item.ShortsTitle
		if title == "" {
			title = t.Title
		}
		why := item.Angle
		if why == "" {
			why = t.Snippet
		}
		out = append(out, idea(t, title, domain.ParseHookType(item.HookType), item.Angle, why, item.Angle))
	}
	return out
}

// Fallback rewrites without a model: titles over 60 runes are cut to 57 plus
// "...", every hook is drama and the angle is the snippet.
func Fallback(topics []domain.Topic) []domain.ShortsIdea {
	out := make([]domain.ShortsIdea, 0, len(topics))
	for _, t := range topics {
		title := t.Title
		if utf8.RuneCountInString(title) > 60 {
			title = string([]rune(title)[:57]) + "..."
		}
		out = append(out, idea(t, title, domain.HookDrama, t.Snippet, t.Snippet, t.Snippet))
	}
	return out
}

func idea(t domain.Topic, title string, hook domain.HookType, angle, why, snippet string) domain.ShortsIdea {
	timeAgo := t.TimeAgo
	if timeAgo == "" {
		timeAgo = "Recent"
	}
	return domain.ShortsIdea{
		Title:         title,
		OriginalTitle: t.Title,
		HookType:      hook,
		Angle:         angle,
		URL:           t.URL,
		Image:         t.Image,
		Source:        t.Source,
		SourceName:    t.SourceName,
		TimeAgo:       timeAgo,
		Score:         t.Score,
		Category:      domain.CategoryShorts,
		WhyTrending:   why,
		Snippet:       snippet,
	}
}
