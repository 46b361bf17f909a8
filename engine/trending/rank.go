package trending

import (
	"cmp"
	"slices"

	"github.com/ajcontent/content-engine/engine/domain"
)

// Rank sorts topics by native score, highest first, in place. Topics without
// a score count as 0 and ties keep merge order.
func Rank(topics []domain.Topic) {
	slices.SortStableFunc(topics, func(a, b domain.Topic) int {
		return cmp.Compare(b.ScoreOrZero(), a.ScoreOrZero())
	})
}

// Paginate slices one page out of the ranked list. A negative page is
// treated as the first page and perPage is at least 1. Pages past the end
// are empty, however large.
func Paginate(topics []domain.Topic, page, perPage int) domain.TrendingPage {
	page = max(page, 0)
	perPage = max(perPage, 1)
	total := len(topics)
	start := total
	if page <= total/perPage {
		start = min(page*perPage, total)
	}
	end := start + min(perPage, total-start)

	out := make([]domain.Topic, end-start)
	copy(out, topics[start:end])
	return domain.TrendingPage{
		Topics:  out,
		Total:   total,
		Page:    page,
		HasMore: end < total,
	}
}
