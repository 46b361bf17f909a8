package video

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ajcontent/content-engine/engine/domain"
)

var fillerWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`just the this that is are was were has have had been being a an
		of in on for to and but or so yet with from by at it its might could would should will
		can may do does did not all very really here there now new out about how what when where
		who why every some any no only own your our my`) {
		fillerWords[w] = true
	}
}

// CoreSubject reduces a headline to at most five content words for use as a
// search query. Punctuation and filler words are dropped, as are one-letter
// tokens. If nothing survives, the topic is returned unchanged.
func CoreSubject(topic string) string {
	words := strings.FieldsFunc(topic, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	var core []string
	for _, w := range words {
		if len([]rune(w)) <= 1 || fillerWords[strings.ToLower(w)] {
			continue
		}
		core = append(core, w)
		if len(core) == 5 {
			break
		}
	}
	if len(core) == 0 {
		return topic
	}
	return strings.Join(core, " ")
}

// DetectPlatform names the hosting site of a video URL.
func DetectPlatform(u string) domain.Platform {
	l := strings.ToLower(u)
	switch {
	case strings.Contains(l, "youtube.com"), strings.Contains(l, "youtu.be"):
		return domain.PlatformYouTube
	case strings.Contains(l, "twitter.com"), strings.Contains(l, "x.com"):
		return domain.PlatformTwitter
	case strings.Contains(l, "vimeo.com"):
		return domain.PlatformVimeo
	case strings.Contains(l, "tiktok.com"):
		return domain.PlatformTikTok
	case strings.Contains(l, "dailymotion.com"):
		return domain.PlatformDailymotion
	default:
		return domain.PlatformWeb
	}
}

var youTubeIDRe = regexp.MustCompile(`(?:v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// ExtractVideoID returns the 11-character YouTube id, or for other hosts the
// last path segment without its query, cut to 20 characters.
func ExtractVideoID(u string) string {
	if m := youTubeIDRe.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	last := u[strings.LastIndex(u, "/")+1:]
	if i := strings.IndexByte(last, '?'); i >= 0 {
		last = last[:i]
	}
	if len(last) > 20 {
		last = last[:20]
	}
	return last
}

// ParseDuration reads "45", "3:45" or "1:02:30" as seconds. Anything else,
// including "?", is 0.
func ParseDuration(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || s == "?" {
		return 0
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration reads the ISO 8601 durations the YouTube Data API returns,
// e.g. "PT1H2M30S".
func parseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	mult := []int{86400, 3600, 60, 1}
	total := 0
	for i, g := range m[1:] {
		if g == "" {
			continue
		}
		n, _ := strconv.Atoi(g)
		total += n * mult[i]
	}
	return total
}

// FormatDuration renders seconds as m:ss, or "?" when unknown.
func FormatDuration(sec int) string {
	if sec <= 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

// FormatViews renders a view count as "1.2M views", "3.4K views" or
// "12 views". Zero renders as "".
func FormatViews(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM views", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK views", float64(n)/1_000)
	case n > 0:
		return fmt.Sprintf("%d views", n)
	default:
		return ""
	}
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]`)

// titleKey is the fallback dedup key: lowercase alphanumerics, first 40.
func titleKey(title string) string {
	k := nonAlnumRe.ReplaceAllString(strings.ToLower(title), "")
	if len(k) > 40 {
		k = k[:40]
	}
	return k
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
