package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/nDmitry/spacetravelling/internal/entity"
	"github.com/nDmitry/spacetravelling/internal/richtext"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Renderer renders the blog pages into HTML
type Renderer struct {
	templates *template.Template
	siteTitle string
}

// HomeView is the data of the post list page
type HomeView struct {
	Posts []entity.PostSummary
	// Link of the "load more" trigger, empty when there is nothing to load
	LoadMoreURL string
}

type homeData struct {
	HomeView
	SiteTitle string
}

type postData struct {
	*entity.PostDetail
	ReadingTime int
	Sections    []section
}

type section struct {
	Heading string
	Body    template.HTML
}

type notFoundData struct {
	Slug      string
	SiteTitle string
}

// New parses the embedded templates
func New(siteTitle string) (*Renderer, error) {
	templates, err := template.New("").
		Funcs(template.FuncMap{"formatDate": FormatDate}).
		ParseFS(templatesFS, "templates/*.html")

	if err != nil {
		return nil, fmt.Errorf("could not parse templates: %w", err)
	}

	return &Renderer{templates: templates, siteTitle: siteTitle}, nil
}

// Static returns the static assets, rooted so that images are at images/*
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")

	if err != nil {
		// The directory is embedded at build time
		panic(err)
	}

	return sub
}

// Home renders the post list
func (r *Renderer) Home(view HomeView) ([]byte, error) {
	return r.execute("home.html", homeData{HomeView: view, SiteTitle: r.siteTitle})
}

// Post renders a single post with its sections in source order
func (r *Renderer) Post(post *entity.PostDetail) ([]byte, error) {
	data := postData{
		PostDetail: post,
		Sections:   renderSections(post),
	}

	readingTime, err := sectionsReadingTime(post.UID, data.Sections)

	if err != nil {
		return nil, err
	}

	data.ReadingTime = readingTime

	return r.execute("post.html", data)
}

// renderSections converts the post content blocks into HTML, in source order
func renderSections(post *entity.PostDetail) []section {
	sections := make([]section, 0, len(post.Content))

	for _, block := range post.Content {
		sections = append(sections, section{
			Heading: block.Heading,
			Body:    richtext.AsHTML(block.Body),
		})
	}

	return sections
}

// NotFound renders the page shown for an unknown slug
func (r *Renderer) NotFound(slug string) ([]byte, error) {
	return r.execute("notfound.html", notFoundData{Slug: slug, SiteTitle: r.siteTitle})
}

func (r *Renderer) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer

	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("could not render %s: %w", name, err)
	}

	return buf.Bytes(), nil
}
