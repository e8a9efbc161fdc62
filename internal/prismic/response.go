package prismic

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nDmitry/spacetravelling/internal/entity"
	"github.com/nDmitry/spacetravelling/internal/richtext"
)

// ErrMalformedPayload is returned when a response does not match the expected shape
var ErrMalformedPayload = errors.New("malformed content API payload")

var dateLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	time.DateOnly,
}

type apiResponse struct {
	Refs []refResponse `json:"refs" validate:"required,min=1,dive"`
}

type refResponse struct {
	ID          string `json:"id"`
	Ref         string `json:"ref" validate:"required"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// searchResponse is the page payload: {next_page, results}
type searchResponse[T any] struct {
	Page     int               `json:"page"`
	NextPage *string           `json:"next_page"`
	Results  []documentResp[T] `json:"results" validate:"required,dive"`
}

type documentResp[T any] struct {
	ID                   string  `json:"id"`
	UID                  string  `json:"uid" validate:"required"`
	Type                 string  `json:"type"`
	FirstPublicationDate *string `json:"first_publication_date"`
	Data                 *T      `json:"data" validate:"required"`
}

type summaryData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
}

type postData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
	Banner   struct {
		URL string `json:"url"`
	} `json:"banner"`
	Content []contentResponse `json:"content"`
}

type contentResponse struct {
	Heading string            `json:"heading"`
	Body    richtext.Document `json:"body"`
}

var validate = validator.New()

func validatePayload(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	return nil
}

func (r *apiResponse) masterRef() (string, error) {
	for _, ref := range r.Refs {
		if ref.IsMasterRef {
			return ref.Ref, nil
		}
	}

	return "", fmt.Errorf("%w: no master ref", ErrMalformedPayload)
}

func (r *searchResponse[T]) nextPage() string {
	if r.NextPage == nil {
		return ""
	}

	return *r.NextPage
}

func toPage(r *searchResponse[summaryData]) (*entity.Page, error) {
	page := &entity.Page{
		Results:  make([]entity.PostSummary, 0, len(r.Results)),
		NextPage: r.nextPage(),
	}

	for _, doc := range r.Results {
		published, err := parseDate(doc.FirstPublicationDate)

		if err != nil {
			return nil, fmt.Errorf("%w: document %s: %w", ErrMalformedPayload, doc.UID, err)
		}

		page.Results = append(page.Results, entity.PostSummary{
			UID:                  doc.UID,
			FirstPublicationDate: published,
			Title:                doc.Data.Title,
			Subtitle:             doc.Data.Subtitle,
			Author:               doc.Data.Author,
		})
	}

	return page, nil
}

func toPostDetail(doc *documentResp[postData]) (*entity.PostDetail, error) {
	published, err := parseDate(doc.FirstPublicationDate)

	if err != nil {
		return nil, fmt.Errorf("%w: document %s: %w", ErrMalformedPayload, doc.UID, err)
	}

	post := &entity.PostDetail{
		UID:                  doc.UID,
		FirstPublicationDate: published,
		Title:                doc.Data.Title,
		Subtitle:             doc.Data.Subtitle,
		BannerURL:            doc.Data.Banner.URL,
		Author:               doc.Data.Author,
		Content:              make([]entity.ContentBlock, 0, len(doc.Data.Content)),
	}

	for _, c := range doc.Data.Content {
		post.Content = append(post.Content, entity.ContentBlock{
			Heading: c.Heading,
			Body:    c.Body,
		})
	}

	return post, nil
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *value); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("could not parse date %q", *value)
}
