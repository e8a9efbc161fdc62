package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nDmitry/spacetravelling/internal/entity"
)

const (
	documentType = "posts"
	// Only the fields the post list shows
	summaryFields = "posts.title,posts.subtitle,posts.author"
	orderings     = "[document.first_publication_date desc]"
	maxErrorBody  = 2048
)

// ErrNotFound is returned when no document matches the requested UID
var ErrNotFound = errors.New("document not found")

// StatusError is returned when the content API responds with a non-2xx status
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content API %s responded with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client is a thin client of the Prismic REST API v2
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client for the repository at the given endpoint,
// e.g. https://spacetravelling.cdn.prismic.io
func NewClient(endpoint, accessToken string, opts ...Option) *Client {
	client := &Client{
		endpoint:    endpoint,
		accessToken: accessToken,
		httpClient:  NewHTTPClient(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Posts returns the first page of posts, newest first
func (c *Client) Posts(ctx context.Context, pageSize int) (*entity.Page, error) {
	ref, err := c.masterRef(ctx)

	if err != nil {
		return nil, err
	}

	query := c.searchQuery(ref, fmt.Sprintf(`[[at(document.type,"%s")]]`, documentType))
	query.Set("fetch", summaryFields)
	query.Set("pageSize", strconv.Itoa(pageSize))
	query.Set("orderings", orderings)

	return c.FetchPage(ctx, c.url("/api/v2/documents/search", query))
}

// FetchPage requests the exact URL of a continuation token and parses it as a page
func (c *Client) FetchPage(ctx context.Context, nextPage string) (*entity.Page, error) {
	var resp searchResponse[summaryData]

	if err := c.getJSON(ctx, nextPage, &resp); err != nil {
		return nil, err
	}

	page, err := toPage(&resp)

	if err != nil {
		return nil, err
	}

	return page, nil
}

// PostByUID returns the post with the given slug
func (c *Client) PostByUID(ctx context.Context, uid string) (*entity.PostDetail, error) {
	ref, err := c.masterRef(ctx)

	if err != nil {
		return nil, err
	}

	query := c.searchQuery(ref, fmt.Sprintf(`[[at(my.%s.uid,%s)]]`, documentType, strconv.Quote(uid)))
	query.Set("pageSize", "1")

	var resp searchResponse[postData]

	if err := c.getJSON(ctx, c.url("/api/v2/documents/search", query), &resp); err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("could not find post %s: %w", uid, ErrNotFound)
	}

	return toPostDetail(&resp.Results[0])
}

func (c *Client) masterRef(ctx context.Context) (string, error) {
	query := url.Values{}

	if c.accessToken != "" {
		query.Set("access_token", c.accessToken)
	}

	var resp apiResponse

	if err := c.getJSON(ctx, c.url("/api/v2", query), &resp); err != nil {
		return "", fmt.Errorf("could not get master ref: %w", err)
	}

	return resp.masterRef()
}

func (c *Client) searchQuery(ref, predicate string) url.Values {
	query := url.Values{}
	query.Set("ref", ref)
	query.Set("q", predicate)

	if c.accessToken != "" {
		query.Set("access_token", c.accessToken)
	}

	return query
}

func (c *Client) url(path string, query url.Values) string {
	u := c.endpoint + path

	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return u
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)

	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)

	if err != nil {
		return fmt.Errorf("could not request content API: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))

		return &StatusError{
			URL:        redactURL(req),
			StatusCode: res.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	return validatePayload(out)
}
