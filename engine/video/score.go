package video

import (
	"strings"

	"github.com/ajcontent/content-engine/engine/domain"
)

// Blocklist holds broadcast-news outlets and long-form interview shows,
// matched exactly against the lowercase channel name.
var Blocklist = map[string]bool{
	"cnn": true, "cnbc": true, "cnbc television": true, "fox news": true, "fox business": true,
	"msnbc": true, "abc news": true, "cbs news": true, "nbc news": true, "pbs newshour": true,
	"bbc news": true, "bbc": true, "sky news": true, "al jazeera": true, "dw news": true,
	"france 24": true, "reuters": true, "associated press": true, "ap": true,
	"bloomberg television": true, "bloomberg": true, "bloomberg technology": true,
	"yahoo finance": true, "the wall street journal": true, "wsj": true,
	"the daily show": true, "last week tonight": true, "joe rogan": true, "lex fridman": true,
}

// IsBlocked reports whether channel is on the blocklist.
func IsBlocked(channel string) bool {
	return Blocklist[strings.ToLower(strings.TrimSpace(channel))]
}

var (
	DemoKeywords = []string{
		"demo", "tutorial", "walkthrough", "how to", "screen recording",
		"hands on", "hands-on", "first look", "getting started",
		"overview", "features", "introduction", "intro to",
		"using", "setup", "guide", "showcase", "preview",
	}
	NewsKeywords = []string{
		"breaking news", "breaking:", "live:", "exclusive:",
		"report", "reporting", "anchor", "coverage", "interview",
		"panel discussion", "press conference", "testimony",
		"hearing", "committee", "correspondent", "analysis",
	}
	OfficialChannels = []string{
		"google", "openai", "anthropic", "microsoft", "apple",
		"nvidia", "meta", "amazon", "hugging face", "stability ai",
		"midjourney", "runway", "google deepmind", "google ai",
	}
	CreatorChannels = []string{
		"matt wolfe", "fireship", "two minute papers", "ai explained",
		"all about ai", "matt vdm", "corbin brown", "riley brown",
		"web dev simplified", "theo", "coding in flow",
	}
	NewsChannelPatterns = []string{
		"news", "tv", "television", "broadcast", "daily", "times",
		"post", "journal", "herald", "tribune", "gazette",
	}
	// newsPatternExempt channels contain a news pattern but are aggregators
	// of product launches rather than broadcasters.
	newsPatternExempt = map[string]bool{"product hunt": true, "hacker news": true}
)

// scoreInput is the lowercase view of a candidate the rules read.
type scoreInput struct {
	text     string // title + " " + description
	channel  string
	duration int
	views    int64
	raw      domain.VideoCandidate
}

// scoreRule contributes Points(v) to a candidate's B-roll score.
type scoreRule struct {
	Name   string
	Points func(in scoreInput) float64
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func when(ok bool, pts float64) float64 {
	if ok {
		return pts
	}
	return 0
}

// scoreRules are summed by Score. Each keyword rule counts once, however many
// of its keywords match. Duration and channel identity dominate; views only
// break ties.
var scoreRules = []scoreRule{
	{"demo_keywords", func(in scoreInput) float64 { return when(containsAny(in.text, DemoKeywords), 200) }},
	{"official_channel", func(in scoreInput) float64 { return when(containsAny(in.channel, OfficialChannels), 300) }},
	{"creator_channel", func(in scoreInput) float64 { return when(containsAny(in.channel, CreatorChannels), 150) }},
	{"duration", func(in scoreInput) float64 { return durationPoints(in.duration) }},
	{"news_keywords", func(in scoreInput) float64 { return when(containsAny(in.text, NewsKeywords), -300) }},
	{"blocklisted", func(in scoreInput) float64 { return when(IsBlocked(in.raw.Channel), -500) }},
	{"news_channel_pattern", func(in scoreInput) float64 {
		return when(!newsPatternExempt[in.channel] && containsAny(in.channel, NewsChannelPatterns), -150)
	}},
	{"views", func(in scoreInput) float64 {
		if in.views <= 0 {
			return 0
		}
		return min(float64(in.views)/10000, 50)
	}},
}

// durationPoints favors clips short enough to cut into a short. Zero means
// the length is unknown and earns nothing.
func durationPoints(sec int) float64 {
	switch {
	case sec <= 0:
		return 0
	case sec <= 60:
		return 250
	case sec <= 180:
		return 200
	case sec <= 300:
		return 100
	case sec <= 600:
		return 0
	default:
		return -200
	}
}

// Score rates how usable v is as B-roll footage.
func Score(v domain.VideoCandidate) float64 {
	in := scoreInput{
		text:     strings.ToLower(v.Title + " " + v.Description),
		channel:  strings.ToLower(v.Channel),
		duration: v.Duration,
		views:    v.Views,
		raw:      v,
	}
	var total float64
	for _, r := range scoreRules {
		total += r.Points(in)
	}
	return total
}
