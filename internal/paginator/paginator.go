// Package paginator accumulates pages of post summaries behind a "load more" action.
//
// A Paginator is owned by a single view. Items are only ever appended, in the
// order the pages were fetched, and the continuation token is replaced together
// with the append, so a failed load leaves the state exactly as it was.
package paginator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nDmitry/spacetravelling/internal/entity"
)

var (
	// ErrExhausted is returned by LoadMore when there is no next page
	ErrExhausted = errors.New("no more pages")

	// ErrLoadInProgress is returned by LoadMore while another load is running
	ErrLoadInProgress = errors.New("load already in progress")
)

// PageFetcher fetches the page behind a continuation token
type PageFetcher interface {
	FetchPage(ctx context.Context, nextPage string) (*entity.Page, error)
}

type Paginator struct {
	fetcher PageFetcher

	mu       sync.Mutex
	items    []entity.PostSummary
	nextPage string
	loading  bool
}

// New initializes a paginator from the initial page. A nil page yields an
// empty, exhausted paginator.
func New(fetcher PageFetcher, initial *entity.Page) *Paginator {
	p := &Paginator{fetcher: fetcher}

	if initial != nil {
		p.items = append([]entity.PostSummary(nil), initial.Results...)
		p.nextPage = initial.NextPage
	}

	return p
}

// LoadMore fetches the next page and appends its results.
func (p *Paginator) LoadMore(ctx context.Context) error {
	p.mu.Lock()

	if p.loading {
		p.mu.Unlock()
		return ErrLoadInProgress
	}

	if p.nextPage == "" {
		p.mu.Unlock()
		return ErrExhausted
	}

	token := p.nextPage
	p.loading = true
	p.mu.Unlock()

	page, err := p.fetcher.FetchPage(ctx, token)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.loading = false

	if err != nil {
		return fmt.Errorf("could not load page %s: %w", token, err)
	}

	if page == nil {
		return fmt.Errorf("could not load page %s: empty response", token)
	}

	p.nextPage = page.NextPage
	p.items = append(p.items, page.Results...)

	return nil
}

// LoadPages calls LoadMore until the paginator holds n pages or runs out of them.
// It returns the number of pages held and the first load error, if any.
func (p *Paginator) LoadPages(ctx context.Context, n int) (int, error) {
	loaded := 1

	for loaded < n && p.HasMore() {
		if err := p.LoadMore(ctx); err != nil {
			return loaded, err
		}

		loaded++
	}

	return loaded, nil
}

// Items returns a copy of the accumulated items in insertion order
func (p *Paginator) Items() []entity.PostSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]entity.PostSummary(nil), p.items...)
}

// NextPage returns the continuation token, empty when exhausted
func (p *Paginator) NextPage() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.nextPage
}

// HasMore reports whether a "load more" trigger should be offered
func (p *Paginator) HasMore() bool {
	return p.NextPage() != ""
}

func (p *Paginator) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.items)
}
