package feed

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gorilla/feeds"
	"github.com/nDmitry/spacetravelling/internal/entity"
)

const (
	maxDescriptionLength = 160
	ellipsis             = "…"
	punctuation          = ",.;:!? "
)

// SiteInfo describes the blog the feed is published for
type SiteInfo struct {
	Title string
	// URL is the public base URL of the site, without a trailing slash
	URL string
}

// Generator generates feeds of a single site
type Generator struct {
	Site SiteInfo
}

// Generate creates a feed of the site from a page of post summaries
func (g *Generator) Generate(posts []entity.PostSummary, params *entity.FeedParams) ([]byte, error) {
	return Generate(posts, g.Site, params)
}

// Generate creates a feed from a page of post summaries and returns it as a byte array
func Generate(posts []entity.PostSummary, site SiteInfo, params *entity.FeedParams) ([]byte, error) {
	feed := &feeds.Feed{
		Title:       site.Title,
		Link:        &feeds.Link{Href: site.URL + "/"},
		Description: site.Title,
	}

	for _, p := range posts {
		link := PostURL(site.URL, p.UID)
		item := &feeds.Item{
			Id:          link,
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Description: truncateAtWordBoundary(p.Subtitle, maxDescriptionLength),
		}

		if p.Author != "" {
			item.Author = &feeds.Author{Name: p.Author}
		}

		if p.FirstPublicationDate != nil {
			item.Created = p.FirstPublicationDate.UTC()

			if feed.Created.IsZero() || item.Created.After(feed.Created) {
				feed.Created = item.Created
			}
		}

		feed.Items = append(feed.Items, item)
	}

	var content string
	var err error

	switch params.Format {
	case entity.FormatRSS:
		content, err = feed.ToRss()
	case entity.FormatAtom:
		content, err = feed.ToAtom()
	default:
		return nil, fmt.Errorf("unsupported feed format: %s", params.Format)
	}

	if err != nil {
		return nil, fmt.Errorf("could not marshal posts to %s feed: %w", params.Format, err)
	}

	return []byte(content), nil
}

// PostURL returns the absolute link of a post page
func PostURL(siteURL, uid string) string {
	return siteURL + "/post/" + uid
}

// truncateAtWordBoundary cuts text to at most limit runes plus an ellipsis
// without splitting a word
func truncateAtWordBoundary(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")

	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	lastWordEnd := 0
	currentCount := 0

	for i, r := range text {
		if unicode.IsSpace(r) {
			lastWordEnd = i
		}

		currentCount++

		if currentCount > limit {
			var truncated string

			if lastWordEnd > 0 {
				truncated = text[:lastWordEnd]
			} else {
				// A single word longer than the limit
				truncated = text[:i]
			}

			return strings.TrimRight(truncated, punctuation) + ellipsis
		}
	}

	return text
}
