package richtext

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsHTML(t *testing.T) {
	tests := []struct {
		name     string
		doc      Document
		expected string
	}{
		{
			name:     "Empty document",
			doc:      nil,
			expected: "",
		},
		{
			name: "Headings and paragraph",
			doc: Document{
				{Type: TypeHeading2, Text: "Proin et varius"},
				{Type: TypeParagraph, Text: "Lorem ipsum"},
			},
			expected: "<h2>Proin et varius</h2><p>Lorem ipsum</p>",
		},
		{
			name: "Text is escaped",
			doc: Document{
				{Type: TypeParagraph, Text: `<script>alert("x")</script> & more`},
			},
			expected: "<p>&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; more</p>",
		},
		{
			name: "Strong and em spans",
			doc: Document{
				{Type: TypeParagraph, Text: "one two three", Spans: []Span{
					{Start: 0, End: 3, Type: SpanStrong},
					{Start: 8, End: 13, Type: SpanEm},
				}},
			},
			expected: "<p><strong>one</strong> two <em>three</em></p>",
		},
		{
			name: "Nested spans",
			doc: Document{
				{Type: TypeParagraph, Text: "bold and italic", Spans: []Span{
					{Start: 9, End: 15, Type: SpanEm},
					{Start: 0, End: 15, Type: SpanStrong},
				}},
			},
			expected: "<p><strong>bold and <em>italic</em></strong></p>",
		},
		{
			name: "Overlapping span is split at the end of its parent",
			doc: Document{
				{Type: TypeParagraph, Text: "abcdefghij", Spans: []Span{
					{Start: 0, End: 5, Type: SpanStrong},
					{Start: 3, End: 8, Type: SpanEm},
				}},
			},
			expected: "<p><strong>abc<em>de</em></strong><em>fgh</em>ij</p>",
		},
		{
			name: "Split remainder nests the spans inside it",
			doc: Document{
				{Type: TypeParagraph, Text: "abcdefghij", Spans: []Span{
					{Start: 0, End: 4, Type: SpanStrong},
					{Start: 2, End: 9, Type: SpanEm},
					{Start: 6, End: 7, Type: SpanLabel, Data: SpanData{Label: "codigo"}},
				}},
			},
			expected: `<p><strong>ab<em>cd</em></strong><em>ef<span class="codigo">g</span>hi</em>j</p>`,
		},
		{
			name: "Unsafe image is dropped",
			doc: Document{
				{Type: TypeImage, URL: "javascript:alert(1)", Alt: "x"},
				{Type: TypeParagraph, Text: "after"},
			},
			expected: "<p>after</p>",
		},
		{
			name: "Span offsets are runes",
			doc: Document{
				{Type: TypeParagraph, Text: "Olá mundo", Spans: []Span{
					{Start: 0, End: 3, Type: SpanStrong},
				}},
			},
			expected: "<p><strong>Olá</strong> mundo</p>",
		},
		{
			name: "Hyperlink with target",
			doc: Document{
				{Type: TypeParagraph, Text: "see docs", Spans: []Span{
					{Start: 4, End: 8, Type: SpanHyperlink, Data: SpanData{URL: "https://example.com/?a=1&b=2", Target: "_blank"}},
				}},
			},
			expected: `<p>see <a href="https://example.com/?a=1&amp;b=2" target="_blank" rel="noopener">docs</a></p>`,
		},
		{
			name: "Unsafe hyperlink is dropped",
			doc: Document{
				{Type: TypeParagraph, Text: "click", Spans: []Span{
					{Start: 0, End: 5, Type: SpanHyperlink, Data: SpanData{URL: "javascript:alert(1)"}},
				}},
			},
			expected: "<p><span>click</span></p>",
		},
		{
			name: "Invalid spans are ignored",
			doc: Document{
				{Type: TypeParagraph, Text: "abc", Spans: []Span{
					{Start: 2, End: 10, Type: SpanStrong},
					{Start: 2, End: 2, Type: SpanEm},
				}},
			},
			expected: "<p>abc</p>",
		},
		{
			name: "Line breaks",
			doc: Document{
				{Type: TypeParagraph, Text: "first\nsecond"},
			},
			expected: "<p>first<br/>second</p>",
		},
		{
			name: "Consecutive list items are grouped",
			doc: Document{
				{Type: TypeListItem, Text: "a"},
				{Type: TypeListItem, Text: "b"},
				{Type: TypeOListItem, Text: "one"},
				{Type: TypeParagraph, Text: "p"},
				{Type: TypeListItem, Text: "c"},
			},
			expected: "<ul><li>a</li><li>b</li></ul><ol><li>one</li></ol><p>p</p><ul><li>c</li></ul>",
		},
		{
			name: "Image and embed",
			doc: Document{
				{Type: TypeImage, URL: "https://images.prismic.io/x.png", Alt: "rocket"},
				{Type: TypeEmbed, Oembed: &Oembed{EmbedURL: "https://youtu.be/abc", Title: "Launch"}},
			},
			expected: `<p class="block-img"><img src="https://images.prismic.io/x.png" alt="rocket"/></p>` +
				`<div data-oembed="https://youtu.be/abc"><a href="https://youtu.be/abc">Launch</a></div>`,
		},
		{
			name: "Preformatted keeps text as is",
			doc: Document{
				{Type: TypePreformatted, Text: "go run ."},
			},
			expected: "<pre>go run .</pre>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(AsHTML(tt.doc)))
		})
	}
}

func TestAsText(t *testing.T) {
	doc := Document{
		{Type: TypeHeading1, Text: "Title"},
		{Type: TypeImage, URL: "https://images.prismic.io/x.png"},
		{Type: TypeParagraph, Text: "Body text"},
	}

	assert.Equal(t, "Title\nBody text", AsText(doc))
}

func TestDocumentUnmarshal(t *testing.T) {
	payload := `[
		{"type": "paragraph", "text": "Hello world", "spans": [
			{"start": 6, "end": 11, "type": "hyperlink", "data": {"link_type": "Web", "url": "https://spacetravelling.com"}}
		]}
	]`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))
	require.Len(t, doc, 1)

	assert.Equal(t, `<p>Hello <a href="https://spacetravelling.com">world</a></p>`, string(AsHTML(doc)))
}
