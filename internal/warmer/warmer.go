// Package warmer primes the page cache by crawling a running blog.
package warmer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/nDmitry/spacetravelling/internal/app"
)

const (
	DefaultMaxDepth    = 3
	DefaultParallelism = 4
	DefaultTimeout     = 30 * time.Second
	DefaultUserAgent   = "spacetravelling-warmer/1.0"
)

// ErrNothingWarmed is returned when not a single page could be fetched
var ErrNothingWarmed = errors.New("no page was warmed")

// Options tune the crawl, zero values are replaced with the defaults
type Options struct {
	// MaxDepth limits how many links away from the base URL the crawl goes
	MaxDepth    int
	Parallelism int
	Delay       time.Duration
	Timeout     time.Duration
	UserAgent   string
}

// Stats summarizes a crawl
type Stats struct {
	Visited int
	Failed  int
	// Hits and Misses count the X-CACHE-STATUS of the visited pages
	Hits   int
	Misses int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}

	if o.Parallelism <= 0 {
		o.Parallelism = DefaultParallelism
	}

	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}

	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}

	return o
}

// Warm visits the base URL and follows the same host links and feed links it finds
// until opts.MaxDepth, so that every rendered page ends up in the cache.
func Warm(ctx context.Context, baseURL string, opts Options) (Stats, error) {
	logger := app.Logger()
	opts = opts.withDefaults()

	base, err := url.Parse(baseURL)

	if err != nil || base.Host == "" {
		return Stats{}, fmt.Errorf("invalid base URL %q", baseURL)
	}

	if base.Path == "" {
		base.Path = "/"
	}

	c := colly.NewCollector(
		colly.AllowedDomains(base.Hostname()),
		colly.MaxDepth(opts.MaxDepth),
		colly.UserAgent(opts.UserAgent),
		colly.Async(true),
		colly.StdlibContext(ctx),
	)

	c.SetRequestTimeout(opts.Timeout)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: opts.Parallelism,
		Delay:       opts.Delay,
	}); err != nil {
		return Stats{}, fmt.Errorf("could not set crawl limits: %w", err)
	}

	var mu sync.Mutex
	var stats Stats

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnHTML("a[href], link[rel=alternate][href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))

		if link == "" {
			return
		}

		// Already visited, forbidden domain and max depth errors are expected here
		_ = e.Request.Visit(link)
	})

	c.OnResponse(func(r *colly.Response) {
		cacheStatus := r.Headers.Get("X-CACHE-STATUS")

		mu.Lock()
		defer mu.Unlock()

		stats.Visited++

		switch cacheStatus {
		case "HIT":
			stats.Hits++
		case "MISS":
			stats.Misses++
		}

		logger.Debug("Warmed page",
			"url", r.Request.URL.String(),
			"status", r.StatusCode,
			"cache", cacheStatus,
			"depth", r.Request.Depth)
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		stats.Failed++
		mu.Unlock()

		logger.Warn("Could not warm page",
			"url", r.Request.URL.String(),
			"status", r.StatusCode,
			"error", err)
	})

	if err := c.Visit(base.String()); err != nil {
		return Stats{}, fmt.Errorf("could not visit %s: %w", base, err)
	}

	c.Wait()

	mu.Lock()
	defer mu.Unlock()

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("warming %s interrupted: %w", base, err)
	}

	if stats.Visited == 0 {
		return stats, fmt.Errorf("could not warm %s: %w", base, ErrNothingWarmed)
	}

	return stats, nil
}
