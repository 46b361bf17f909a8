package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/ajcontent/content-engine/engine/domain"
)

const (
	feedItemLimit  = 10
	snippetMaxRune = 200
)

func (b base) getFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	body, err := b.get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	return feed, nil
}

// plainText strips markup from a feed description and collapses whitespace.
func plainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return strings.Join(strings.Fields(html), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// firstImage returns the item image, an image enclosure, or the first <img>
// in the item's HTML.
func firstImage(item *gofeed.Item) *string {
	if item.Image != nil && item.Image.URL != "" {
		return domain.StrPtr(item.Image.URL)
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return domain.StrPtr(enc.URL)
		}
	}
	for _, html := range []string{item.Content, item.Description} {
		if !strings.Contains(html, "<img") {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}
		if src, ok := doc.Find("img").First().Attr("src"); ok && strings.HasPrefix(src, "http") {
			return domain.StrPtr(src)
		}
	}
	return nil
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return time.Time{}
	}
}

// feedTopics maps up to feedItemLimit items. keep, when non-nil, filters on
// the item's lowercase title and snippet.
func feedTopics(feed *gofeed.Feed, tag domain.SourceTag, sourceName string, now time.Time, keep func(text string) bool) []domain.Topic {
	topics := make([]domain.Topic, 0, min(len(feed.Items), feedItemLimit))
	for _, item := range feed.Items {
		if len(topics) >= feedItemLimit {
			break
		}
		title := strings.Join(strings.Fields(item.Title), " ")
		if title == "" {
			continue
		}
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}
		snippet := truncate(plainText(desc), snippetMaxRune)
		if keep != nil && !keep(strings.ToLower(title+" "+snippet)) {
			continue
		}
		topics = append(topics, domain.Topic{
			Title:      title,
			URL:        item.Link,
			Snippet:    snippet,
			Image:      firstImage(item),
			Source:     tag,
			SourceName: sourceName,
			TimeAgo:    TimeAgo(itemTime(item), now),
		})
	}
	return topics
}
