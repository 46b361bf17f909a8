package shorts

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ajcontent/content-engine/engine/domain"
)

// Rule adjusts a topic's shorts score when Match reports true for its
// lowercase title.
type Rule struct {
	Name  string
	Match func(title string) bool
	Delta int
}

func anyOf(words ...string) func(string) bool {
	return func(title string) bool {
		for _, w := range words {
			if strings.Contains(title, w) {
				return true
			}
		}
		return false
	}
}

// SelectionRules are applied in order, each at most once per topic.
var SelectionRules = []Rule{
	{"company", anyOf("google", "openai", "anthropic", "meta", "microsoft", "apple",
		"nvidia", "amazon", "deepseek", "mistral", "hugging face"), 500},
	{"launch", anyOf("launch", "release", "free", "open source", "tool", "app"), 400},
	{"competition", anyOf("beat", "kill", "vs", "war", "race", "leak", "secret"), 600},
	{"geopolitics", anyOf("china", "chinese", "deepseek", "qwen", "baidu"), 300},
	{"model", anyOf("gpt", "claude", "gemini", "llama", "sora", "veo", "midjourney"), 200},
	{"academic", anyOf("arxiv", "proceedings", "symposium", "et al"), -500},
	{"long_title", func(title string) bool { return utf8.RuneCountInString(title) > 120 }, -200},
}

// ShortsScore is the native score plus every matching rule's delta.
func ShortsScore(t domain.Topic) int {
	title := strings.ToLower(t.Title)
	score := t.ScoreOrZero()
	for _, r := range SelectionRules {
		if r.Match(title) {
			score += r.Delta
		}
	}
	return score
}

// SelectBest returns the n topics with the highest ShortsScore. Ties keep
// input order.
func SelectBest(topics []domain.Topic, n int) []domain.Topic {
	type scored struct {
		score int
		topic domain.Topic
	}
	ranked := make([]scored, len(topics))
	for i, t := range topics {
		ranked[i] = scored{ShortsScore(t), t}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int { return cmp.Compare(b.score, a.score) })

	k := min(max(n, 0), len(ranked))
	out := make([]domain.Topic, 0, k)
	for _, s := range ranked[:k] {
		out = append(out, s.topic)
	}
	return out
}
