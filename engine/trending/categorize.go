package trending

import (
	"strings"
	"unicode/utf8"

	"github.com/ajcontent/content-engine/engine/domain"
)

// Keyword tables are matched as substrings of the lowercase title and snippet,
// in the order tools, research, startups.
var (
	ToolsKeywords    = []string{"launch", "release", "tool", "app", "product", "api", "open source", "github"}
	ResearchKeywords = []string{"paper", "research", "arxiv", "benchmark", "model", "training", "weights"}
	StartupKeywords  = []string{"funding", "raise", "startup", "series", "valuation", "yc", "vc"}
)

// Categorize files t under forced when it is set, otherwise by keyword, then
// by source. Community sources fall back to community, everything else to
// breaking.
func Categorize(t domain.Topic, forced domain.Category) domain.Category {
	if forced != "" {
		return forced
	}
	text := strings.ToLower(t.Title + " " + t.Snippet)
	switch {
	case matchAny(text, ToolsKeywords):
		return domain.CategoryTools
	case matchAny(text, ResearchKeywords):
		return domain.CategoryResearch
	case matchAny(text, StartupKeywords):
		return domain.CategoryStartups
	case t.Source == domain.SourceReddit || t.Source == domain.SourceHackerNews:
		return domain.CategoryCommunity
	default:
		return domain.CategoryBreaking
	}
}

func matchAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// WhyTrending is the snippet, or a line naming where the topic surfaced.
func WhyTrending(t domain.Topic) string {
	switch {
	case t.WhyTrending != "":
		return t.WhyTrending
	case t.Snippet != "":
		return t.Snippet
	case t.SourceName != "":
		return "Trending on " + t.SourceName
	case t.Source != "":
		return "Trending on " + string(t.Source)
	default:
		return "Trending on the web"
	}
}

const dedupKeyRunes = 60

// DedupKey normalizes a title for duplicate detection: lowercase, trimmed,
// first 60 runes.
func DedupKey(title string) string {
	k := strings.TrimSpace(strings.ToLower(title))
	if utf8.RuneCountInString(k) <= dedupKeyRunes {
		return k
	}
	return string([]rune(k)[:dedupKeyRunes])
}

// Seen tracks dedup keys across one aggregation pass.
type Seen map[string]struct{}

// Add records t's key and reports whether it was new.
func (s Seen) Add(t domain.Topic) bool {
	k := DedupKey(t.Title)
	if _, dup := s[k]; dup {
		return false
	}
	s[k] = struct{}{}
	return true
}
