package entity

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	FormatAtom = "atom"
	FormatRSS  = "rss"
)

const CacheTTLDefault = 60 // minutes

// MaxPages limits how many content API pages a single home page view loads.
const MaxPages = 20

// ListParams represents validated request parameters of the post list
type ListParams struct {
	// Pages is the number of pages the view accumulated via "load more"
	Pages int

	// CacheTTL is the cache time-to-live in minutes
	// A value of 0 means no caching
	CacheTTL int
}

// FeedParams represents validated request parameters for feed generation
type FeedParams struct {
	// Format is the feed format, either "atom" or "rss"
	Format string

	// CacheTTL is the cache time-to-live in minutes
	CacheTTL int
}

// NewListParamsFromRequest parses and validates the home page query parameters
func NewListParamsFromRequest(r *http.Request) (*ListParams, error) {
	qp := r.URL.Query()
	pages := 1

	if pagesStr := qp.Get("pages"); pagesStr != "" {
		var err error
		pages, err = strconv.Atoi(pagesStr)

		if err != nil {
			return nil, fmt.Errorf("pages must be a valid integer")
		}

		if pages < 1 || pages > MaxPages {
			return nil, fmt.Errorf("pages must be between 1 and %d", MaxPages)
		}
	}

	cacheTTL, err := parseCacheTTL(r)

	if err != nil {
		return nil, err
	}

	return &ListParams{
		Pages:    pages,
		CacheTTL: cacheTTL,
	}, nil
}

// NewFeedParamsFromRequest parses and validates the feed query parameters
func NewFeedParamsFromRequest(r *http.Request) (*FeedParams, error) {
	format := r.URL.Query().Get("format")

	if format == "" {
		format = FormatRSS
	} else if format != FormatRSS && format != FormatAtom {
		return nil, fmt.Errorf("format must be %s or %s", FormatRSS, FormatAtom)
	}

	cacheTTL, err := parseCacheTTL(r)

	if err != nil {
		return nil, err
	}

	return &FeedParams{
		Format:   format,
		CacheTTL: cacheTTL,
	}, nil
}

// CacheTTLFromRequest returns the cache TTL in minutes, for routes without other parameters
func CacheTTLFromRequest(r *http.Request) (int, error) {
	return parseCacheTTL(r)
}

func parseCacheTTL(r *http.Request) (int, error) {
	cacheTTL := CacheTTLDefault

	if ttlStr := r.URL.Query().Get("cache_ttl"); ttlStr != "" {
		var err error
		cacheTTL, err = strconv.Atoi(ttlStr)

		if err != nil {
			return 0, fmt.Errorf("cache_ttl must be a valid integer")
		}

		if cacheTTL < 0 {
			return 0, fmt.Errorf("cache_ttl must be non-negative")
		}
	}

	return cacheTTL, nil
}
