package sources

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// TimeAgo renders how long before now t was, as "3d ago", "5h ago" or
// "12m ago", never less than a minute. A zero t renders as "Recent".
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "Recent"
	}
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	case d > time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dm ago", max(int(d/time.Minute), 1))
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// containsAny reports whether lowercase text contains any keyword.
func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
