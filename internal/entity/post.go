package entity

import (
	"time"

	"github.com/nDmitry/spacetravelling/internal/richtext"
)

// PostSummary is a post as shown in the list on the home page.
type PostSummary struct {
	UID string
	// Nil when the document was never published.
	FirstPublicationDate *time.Time
	Title                string
	Subtitle             string
	Author               string
}

// Page is one page of post summaries returned by the content API.
type Page struct {
	Results []PostSummary
	// Continuation token: the URL of the next page, empty when there is none.
	NextPage string
}

// HasNext reports whether there is a page after this one
func (p *Page) HasNext() bool {
	return p != nil && p.NextPage != ""
}

// PostDetail is a single post with its full content.
type PostDetail struct {
	UID                  string
	FirstPublicationDate *time.Time
	Title                string
	Subtitle             string
	BannerURL            string
	Author               string
	Content              []ContentBlock
}

// ContentBlock is a section of a post: a heading followed by rich text.
type ContentBlock struct {
	Heading string
	Body    richtext.Document
}
