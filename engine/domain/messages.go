package domain

// NATS subjects shared by the publisher and the API server.
const (
	SubjectTrendingPage  = "content.trending.page"
	SubjectShortsIdeas   = "content.shorts.ideas"
	SubjectTrendingFetch = "content.trending.fetch"
)

// TrendingRequest asks for one page of the feed.
type TrendingRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}
