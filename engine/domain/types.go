// Package domain defines the records that flow through the content engine:
// trending topics, shorts ideas, video candidates and download results, plus
// the closed enums they carry and request validation.
package domain

// SourceTag identifies which adapter produced a Topic.
type SourceTag string

const (
	SourceSerper       SourceTag = "serper"
	SourceReddit       SourceTag = "reddit"
	SourceHackerNews   SourceTag = "hackernews"
	SourceArXiv        SourceTag = "arxiv"
	SourceProductHunt  SourceTag = "producthunt"
	SourceRSS          SourceTag = "rss"
	SourceTwitterVideo SourceTag = "twitter_video"
)

// Category is the content bucket a Topic is filed under.
type Category string

const (
	CategoryBreaking  Category = "breaking"
	CategoryTools     Category = "tools"
	CategoryResearch  Category = "research"
	CategoryStartups  Category = "startups"
	CategoryCommunity Category = "community"

	// CategoryShorts is stamped on ShortsIdea records, never on a Topic.
	CategoryShorts Category = "shorts"
)

// Topic is a unit of trending content.
type Topic struct {
	Title       string    `json:"title" validate:"required"`
	URL         string    `json:"url"`
	Snippet     string    `json:"snippet"`
	Image       *string   `json:"image"`
	Source      SourceTag `json:"source"`
	SourceName  string    `json:"source_name"`
	TimeAgo     string    `json:"time_ago"`
	Score       *int      `json:"score"`
	Category    Category  `json:"category"`
	WhyTrending string    `json:"why_trending"`
	// VideoURL is a direct media link, set by social-video sources.
	VideoURL string `json:"video_url,omitempty"`
}

// ScoreOrZero returns the native score, treating absent as 0.
func (t Topic) ScoreOrZero() int {
	if t.Score == nil {
		return 0
	}
	return *t.Score
}

// IntPtr and StrPtr build the nullable fields of Topic.
func IntPtr(n int) *int { return &n }

func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// HookType is the narrative frame of a shorts title.
type HookType string

const (
	HookDrama         HookType = "drama"
	HookFreeResource  HookType = "free_resource"
	HookToolDiscovery HookType = "tool_discovery"
	HookCompetition   HookType = "competition"
	HookSecretLeak    HookType = "secret_leak"
	HookHowTo         HookType = "how_to"
	HookCareer        HookType = "career"
	HookMindBlown     HookType = "mind_blown"
)

var hookTypes = map[HookType]bool{
	HookDrama: true, HookFreeResource: true, HookToolDiscovery: true,
	HookCompetition: true, HookSecretLeak: true, HookHowTo: true,
	HookCareer: true, HookMindBlown: true,
}

// ParseHookType maps s onto the closed enum. Unknown values become drama.
func ParseHookType(s string) HookType {
	if h := HookType(s); hookTypes[h] {
		return h
	}
	return HookDrama
}

// ShortsIdea is a Topic reframed for short-form video.
type ShortsIdea struct {
	Title         string    `json:"title"`
	OriginalTitle string    `json:"original_title"`
	HookType      HookType  `json:"hook_type"`
	Angle         string    `json:"angle"`
	URL           string    `json:"url"`
	Image         *string   `json:"image"`
	Source        SourceTag `json:"source"`
	SourceName    string    `json:"source_name"`
	TimeAgo       string    `json:"time_ago"`
	Score         *int      `json:"score"`
	Category      Category  `json:"category"`
	WhyTrending   string    `json:"why_trending"`
	Snippet       string    `json:"snippet"`
}

// Platform is the hosting site of a video.
type Platform string

const (
	PlatformYouTube     Platform = "YouTube"
	PlatformTwitter     Platform = "Twitter/X"
	PlatformVimeo       Platform = "Vimeo"
	PlatformTikTok      Platform = "TikTok"
	PlatformDailymotion Platform = "Dailymotion"
	PlatformWeb         Platform = "Web"
)

// VideoCandidate is a discovered video considered as B-roll footage.
type VideoCandidate struct {
	ID          string   `json:"id"`
	VideoID     string   `json:"video_id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Thumbnail   string   `json:"thumbnail"`
	Channel     string   `json:"channel"`
	Duration    int      `json:"duration"`
	DurationStr string   `json:"duration_str"`
	Views       int64    `json:"views"`
	ViewsStr    string   `json:"views_str"`
	Platform    Platform `json:"platform"`
	Description string   `json:"description"`
	UploadDate  string   `json:"upload_date"`
	Source      string   `json:"source"`
	Score       float64  `json:"score"`
}

// DownloadStatus is the outcome of an acquisition.
type DownloadStatus string

const (
	StatusSuccess    DownloadStatus = "success"
	StatusDownloaded DownloadStatus = "downloaded"
	StatusError      DownloadStatus = "error"
)

// DownloadResult reports what happened to a requested video.
type DownloadResult struct {
	Status      DownloadStatus `json:"status"`
	URL         string         `json:"url"`
	LocalFile   string         `json:"local_file"`
	SizeMB      float64        `json:"size_mb"`
	SupabaseURL string         `json:"supabase_url"`
	Error       string         `json:"error"`
}

// TrendingPage is one page of the aggregated feed.
type TrendingPage struct {
	Topics  []Topic `json:"topics"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	HasMore bool    `json:"has_more"`
}

// ShortsResponse wraps rewritten ideas.
type ShortsResponse struct {
	Shorts []ShortsIdea `json:"shorts"`
	Count  int          `json:"count"`
}

// VideoSearchResponse wraps ranked candidates for a topic.
type VideoSearchResponse struct {
	Topic  string           `json:"topic"`
	Videos []VideoCandidate `json:"videos"`
	Count  int              `json:"count"`
}
