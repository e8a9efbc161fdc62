package richtext

import (
	"bytes"
	"html/template"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Block types of a structured text field
const (
	TypeHeading1     = "heading1"
	TypeHeading2     = "heading2"
	TypeHeading3     = "heading3"
	TypeHeading4     = "heading4"
	TypeHeading5     = "heading5"
	TypeHeading6     = "heading6"
	TypeParagraph    = "paragraph"
	TypePreformatted = "preformatted"
	TypeListItem     = "list-item"
	TypeOListItem    = "o-list-item"
	TypeImage        = "image"
	TypeEmbed        = "embed"
)

// Span types
const (
	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
	SpanLabel     = "label"
)

// Document is a structured text value: an ordered list of blocks.
type Document []Block

// Block is a single element of a structured text document.
type Block struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Spans []Span `json:"spans"`

	// Image blocks
	URL string `json:"url,omitempty"`
	Alt string `json:"alt,omitempty"`

	// Embed blocks
	Oembed *Oembed `json:"oembed,omitempty"`
}

// Oembed is the payload of an embed block.
type Oembed struct {
	EmbedURL string `json:"embed_url"`
	Title    string `json:"title,omitempty"`
}

// Span marks up a range of a block text. Start and End are rune offsets.
type Span struct {
	Start int      `json:"start"`
	End   int      `json:"end"`
	Type  string   `json:"type"`
	Data  SpanData `json:"data,omitempty"`
}

// SpanData holds hyperlink and label attributes.
type SpanData struct {
	URL    string `json:"url,omitempty"`
	Target string `json:"target,omitempty"`
	Label  string `json:"label,omitempty"`
}

var headingAtoms = map[string]atom.Atom{
	TypeHeading1: atom.H1,
	TypeHeading2: atom.H2,
	TypeHeading3: atom.H3,
	TypeHeading4: atom.H4,
	TypeHeading5: atom.H5,
	TypeHeading6: atom.H6,
}

// AsHTML renders the document into escaped HTML.
func AsHTML(doc Document) template.HTML {
	var buf bytes.Buffer

	for _, n := range Nodes(doc) {
		// Rendering into a bytes.Buffer never fails
		_ = html.Render(&buf, n)
	}

	// nolint: gosec
	return template.HTML(buf.String())
}

// AsText returns the text of every block joined by newlines.
func AsText(doc Document) string {
	texts := make([]string, 0, len(doc))

	for _, b := range doc {
		if b.Text != "" {
			texts = append(texts, b.Text)
		}
	}

	return strings.Join(texts, "\n")
}

// Nodes converts the document into a list of sibling HTML nodes.
// Consecutive list items are grouped into a single ul or ol element.
func Nodes(doc Document) []*html.Node {
	var nodes []*html.Node
	var list *html.Node

	for _, b := range doc {
		switch b.Type {
		case TypeListItem, TypeOListItem:
			a := atom.Ul

			if b.Type == TypeOListItem {
				a = atom.Ol
			}

			if list == nil || list.DataAtom != a {
				list = element(a)
				nodes = append(nodes, list)
			}

			li := element(atom.Li)
			appendInline(li, b.Text, b.Spans)
			list.AppendChild(li)

			continue
		}

		list = nil

		if n := blockNode(b); n != nil {
			nodes = append(nodes, n)
		}
	}

	return nodes
}

func blockNode(b Block) *html.Node {
	if a, ok := headingAtoms[b.Type]; ok {
		n := element(a)
		appendInline(n, b.Text, b.Spans)
		return n
	}

	switch b.Type {
	case TypeParagraph:
		n := element(atom.P)
		appendInline(n, b.Text, b.Spans)
		return n
	case TypePreformatted:
		n := element(atom.Pre)
		n.AppendChild(text(b.Text))
		return n
	case TypeImage:
		if b.URL == "" || !safeURL(b.URL) {
			return nil
		}

		p := element(atom.P)
		p.Attr = append(p.Attr, html.Attribute{Key: "class", Val: "block-img"})
		p.AppendChild(element(atom.Img,
			html.Attribute{Key: "src", Val: b.URL},
			html.Attribute{Key: "alt", Val: b.Alt},
		))

		return p
	case TypeEmbed:
		if b.Oembed == nil || !safeURL(b.Oembed.EmbedURL) {
			return nil
		}

		div := element(atom.Div, html.Attribute{Key: "data-oembed", Val: b.Oembed.EmbedURL})
		a := element(atom.A, html.Attribute{Key: "href", Val: b.Oembed.EmbedURL})

		title := b.Oembed.Title

		if title == "" {
			title = b.Oembed.EmbedURL
		}

		a.AppendChild(text(title))
		div.AppendChild(a)

		return div
	}

	// Unknown block types are rendered as paragraphs so the text is not lost
	if b.Text == "" {
		return nil
	}

	n := element(atom.P)
	appendInline(n, b.Text, b.Spans)

	return n
}

// appendInline appends the block text to the parent, wrapping span ranges
// into nested elements.
func appendInline(parent *html.Node, s string, spans []Span) {
	runes := []rune(s)
	sorted := make([]Span, 0, len(spans))

	for _, sp := range spans {
		if sp.Start < 0 || sp.End > len(runes) || sp.Start >= sp.End {
			continue
		}

		sorted = append(sorted, sp)
	}

	sortSpans(sorted)

	// Spans are bounded by the text, nothing overflows at the top level
	_ = buildInline(parent, runes, 0, len(runes), sorted)
}

// buildInline renders runes[start:end] into parent. Spans running past end are
// split: the inner part is rendered here and the remainder is returned so the
// caller renders it as a sibling.
func buildInline(parent *html.Node, runes []rune, start, end int, spans []Span) []Span {
	var overflow []Span

	pos := start
	queue := spans

	for len(queue) > 0 {
		sp := queue[0]
		queue = queue[1:]

		if sp.Start < pos {
			sp.Start = pos
		}

		if sp.End > end {
			rest := sp
			rest.Start = end
			overflow = append(overflow, rest)
			sp.End = end
		}

		if sp.Start >= sp.End {
			continue
		}

		appendText(parent, runes[pos:sp.Start])

		j := 0

		for j < len(queue) && queue[j].Start < sp.End {
			j++
		}

		el := spanNode(sp)
		parent.AppendChild(el)

		rest := buildInline(el, runes, sp.Start, sp.End, queue[:j])
		queue = append(rest, queue[j:]...)
		sortSpans(queue)

		pos = sp.End
	}

	appendText(parent, runes[pos:end])

	return overflow
}

// sortSpans puts outer spans first: earlier start, then the longer one
func sortSpans(spans []Span) {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
}

func spanNode(sp Span) *html.Node {
	switch sp.Type {
	case SpanStrong:
		return element(atom.Strong)
	case SpanEm:
		return element(atom.Em)
	case SpanHyperlink:
		if !safeURL(sp.Data.URL) {
			return element(atom.Span)
		}

		a := element(atom.A, html.Attribute{Key: "href", Val: sp.Data.URL})

		if sp.Data.Target != "" {
			a.Attr = append(a.Attr,
				html.Attribute{Key: "target", Val: sp.Data.Target},
				html.Attribute{Key: "rel", Val: "noopener"},
			)
		}

		return a
	case SpanLabel:
		return element(atom.Span, html.Attribute{Key: "class", Val: sp.Data.Label})
	default:
		return element(atom.Span)
	}
}

// appendText adds a text run, turning line breaks into br elements.
func appendText(parent *html.Node, runes []rune) {
	if len(runes) == 0 {
		return
	}

	for i, line := range strings.Split(string(runes), "\n") {
		if i > 0 {
			parent.AppendChild(element(atom.Br))
		}

		if line != "" {
			parent.AppendChild(text(line))
		}
	}
}

func safeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))

	if err != nil || raw == "" {
		return false
	}

	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	default:
		return false
	}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
