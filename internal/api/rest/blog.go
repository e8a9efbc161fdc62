package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nDmitry/spacetravelling/internal/app"
	"github.com/nDmitry/spacetravelling/internal/cache"
	"github.com/nDmitry/spacetravelling/internal/entity"
	"github.com/nDmitry/spacetravelling/internal/paginator"
	"github.com/nDmitry/spacetravelling/internal/prismic"
	"github.com/nDmitry/spacetravelling/internal/render"
)

const contentTypeHTML = "text/html; charset=utf-8"

// Content is the source of posts
type Content interface {
	Posts(ctx context.Context, pageSize int) (*entity.Page, error)
	FetchPage(ctx context.Context, nextPage string) (*entity.Page, error)
	PostByUID(ctx context.Context, uid string) (*entity.PostDetail, error)
}

// Renderer renders the blog pages
type Renderer interface {
	Home(view render.HomeView) ([]byte, error)
	Post(post *entity.PostDetail) ([]byte, error)
	NotFound(slug string) ([]byte, error)
}

// Generator generates a feed from a page of posts
type Generator interface {
	Generate(posts []entity.PostSummary, params *entity.FeedParams) ([]byte, error)
}

// BlogHandler handles the blog pages and its feed
type BlogHandler struct {
	cache     cache.Cache
	content   Content
	renderer  Renderer
	generator Generator
	pageSize  int
	logger    *slog.Logger
}

// NewBlogHandler creates a new BlogHandler and sets up routes
func NewBlogHandler(
	mux *http.ServeMux,
	c cache.Cache,
	content Content,
	renderer Renderer,
	generator Generator,
	pageSize int,
) *BlogHandler {
	handler := &BlogHandler{
		cache:     c,
		content:   content,
		renderer:  renderer,
		generator: generator,
		pageSize:  pageSize,
		logger:    app.Logger(),
	}

	mux.HandleFunc("GET /{$}", handler.GetHome)
	mux.HandleFunc("GET /post/{slug}", handler.GetPost)
	mux.HandleFunc("GET /feed", handler.GetFeed)

	return handler
}

// GetHome renders the post list with as many pages as the "load more" trigger accumulated
func (h *BlogHandler) GetHome(w http.ResponseWriter, r *http.Request) {
	params, err := entity.NewListParamsFromRequest(r)

	if err != nil {
		h.handleError(w, err, http.StatusBadRequest)
		return
	}

	cacheKey := fmt.Sprintf("home:%d", params.Pages)

	if h.serveCached(w, r, cacheKey, contentTypeHTML, params.CacheTTL) {
		return
	}

	first, err := h.content.Posts(r.Context(), h.pageSize)

	if err != nil {
		h.handleError(w, err, http.StatusBadGateway)
		return
	}

	// Each request owns its paginator
	p := paginator.New(h.content, first)
	loaded, err := p.LoadPages(r.Context(), params.Pages)
	complete := err == nil

	if !complete {
		// The loaded posts are still shown and the trigger stays available for a retry
		h.logger.Warn("Could not load more posts",
			"pages", params.Pages,
			"loaded", loaded,
			"error", err)
	}

	view := render.HomeView{Posts: p.Items()}

	if p.HasMore() {
		view.LoadMoreURL = loadMoreURL(r, loaded+1)
	}

	content, err := h.renderer.Home(view)

	if err != nil {
		h.handleError(w, err, http.StatusInternalServerError)
		return
	}

	if complete {
		h.store(cacheKey, content, params.CacheTTL)
	}

	w.Header().Set("X-CACHE-STATUS", "MISS")
	h.serveContent(w, content, contentTypeHTML, params.CacheTTL, http.StatusOK)
}

// GetPost renders a single post by its slug
func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	cacheTTL, err := entity.CacheTTLFromRequest(r)

	if err != nil {
		h.handleError(w, err, http.StatusBadRequest)
		return
	}

	slug := r.PathValue("slug")
	cacheKey := "post:" + slug

	if h.serveCached(w, r, cacheKey, contentTypeHTML, cacheTTL) {
		return
	}

	post, err := h.content.PostByUID(r.Context(), slug)

	if errors.Is(err, prismic.ErrNotFound) {
		h.serveNotFound(w, slug)
		return
	}

	if err != nil {
		h.handleError(w, err, http.StatusBadGateway)
		return
	}

	content, err := h.renderer.Post(post)

	if err != nil {
		h.handleError(w, err, http.StatusInternalServerError)
		return
	}

	h.store(cacheKey, content, cacheTTL)

	w.Header().Set("X-CACHE-STATUS", "MISS")
	h.serveContent(w, content, contentTypeHTML, cacheTTL, http.StatusOK)
}

// GetFeed handles requests for the feed of the newest posts
func (h *BlogHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	params, err := entity.NewFeedParamsFromRequest(r)

	if err != nil {
		h.handleError(w, err, http.StatusBadRequest)
		return
	}

	cacheKey := "feed:" + params.Format
	contentType := feedContentType(params.Format)

	if h.serveCached(w, r, cacheKey, contentType, params.CacheTTL) {
		return
	}

	page, err := h.content.Posts(r.Context(), h.pageSize)

	if err != nil {
		h.handleError(w, err, http.StatusBadGateway)
		return
	}

	content, err := h.generator.Generate(page.Results, params)

	if err != nil {
		h.handleError(w, err, http.StatusInternalServerError)
		return
	}

	h.store(cacheKey, content, params.CacheTTL)

	w.Header().Set("X-CACHE-STATUS", "MISS")
	h.serveContent(w, content, contentType, params.CacheTTL, http.StatusOK)
}

// serveCached serves the cached content when caching is enabled and reports whether it did
func (h *BlogHandler) serveCached(
	w http.ResponseWriter,
	r *http.Request,
	cacheKey string,
	contentType string,
	cacheTTL int,
) bool {
	if cacheTTL == 0 {
		return false
	}

	cachedContent, err := h.cache.Get(r.Context(), cacheKey)

	if err == nil {
		w.Header().Set("X-CACHE-STATUS", "HIT")
		h.serveContent(w, cachedContent, contentType, cacheTTL, http.StatusOK)
		return true
	}

	if !errors.Is(err, cache.ErrCacheMiss) {
		h.logger.Error("Cache error", "key", cacheKey, "error", err)
	}

	return false
}

func (h *BlogHandler) store(cacheKey string, content []byte, cacheTTL int) {
	if cacheTTL == 0 {
		return
	}

	// Use background context for caching to avoid cancellation
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.cache.Set(ctx, cacheKey, content, time.Duration(cacheTTL)*time.Minute); err != nil {
		h.logger.Error("Failed to cache content", "key", cacheKey, "error", err)
	}
}

func (h *BlogHandler) serveNotFound(w http.ResponseWriter, slug string) {
	content, err := h.renderer.NotFound(slug)

	if err != nil {
		h.handleError(w, err, http.StatusInternalServerError)
		return
	}

	h.serveContent(w, content, contentTypeHTML, 0, http.StatusNotFound)
}

// serveContent sends the content to the client with appropriate headers
func (h *BlogHandler) serveContent(
	w http.ResponseWriter,
	content []byte,
	contentType string,
	cacheTTL int,
	statusCode int,
) {
	w.Header().Set("Content-Type", contentType)

	if cacheTTL > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", cacheTTL*60))
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}

	w.WriteHeader(statusCode)

	if _, err := w.Write(content); err != nil {
		h.logger.Error("Failed to write a response", "error", err, "bytes", len(content))
	}
}

// handleError responds with an error message
func (h *BlogHandler) handleError(w http.ResponseWriter, err error, statusCode int) {
	h.logger.Error("Request error", "error", err, "status", statusCode)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]string{"error": err.Error()}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode an error response",
			"error", err,
			"response", response)
	}
}

// loadMoreURL links the home page with one more page, keeping the other query parameters
func loadMoreURL(r *http.Request, pages int) string {
	query := url.Values{}

	if ttl := r.URL.Query().Get("cache_ttl"); ttl != "" {
		query.Set("cache_ttl", ttl)
	}

	query.Set("pages", strconv.Itoa(pages))

	return "/?" + query.Encode()
}

func feedContentType(format string) string {
	switch format {
	case entity.FormatRSS:
		return "application/rss+xml; charset=utf-8"
	case entity.FormatAtom:
		return "application/atom+xml; charset=utf-8"
	default:
		return "application/xml; charset=utf-8"
	}
}
