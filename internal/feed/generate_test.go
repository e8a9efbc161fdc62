package feed

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"github.com/nDmitry/spacetravelling/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFeed(t *testing.T, content []byte) *gofeed.Feed {
	t.Helper()

	parsed, err := gofeed.NewParser().ParseString(string(content))
	require.NoError(t, err)

	return parsed
}

var site = SiteInfo{Title: "Space Travelling", URL: "https://blog.example.com"}

func testPosts() []entity.PostSummary {
	first := time.Date(2021, 3, 15, 19, 25, 28, 0, time.UTC)
	second := time.Date(2021, 3, 25, 19, 27, 35, 0, time.UTC)

	return []entity.PostSummary{
		{UID: "como-utilizar-hooks", FirstPublicationDate: &first, Title: "Como utilizar Hooks", Subtitle: "Pensando em sincronização em vez de ciclos de vida", Author: "Joseph Oliveira"},
		{UID: "criando-um-app-cra-do-zero", FirstPublicationDate: &second, Title: "Criando um app CRA do zero", Subtitle: "Tudo sobre como criar a sua primeira aplicação", Author: "Danilo Vieira"},
		{UID: "rascunho", Title: "Rascunho"},
	}
}

func TestGenerate_RSS(t *testing.T) {
	content, err := Generate(testPosts(), site, &entity.FeedParams{Format: entity.FormatRSS})
	require.NoError(t, err)

	parsed := parseFeed(t, content)

	assert.Equal(t, "rss", parsed.FeedType)
	assert.Equal(t, "Space Travelling", parsed.Title)
	assert.Equal(t, "https://blog.example.com/", parsed.Link)
	require.Len(t, parsed.Items, 3)

	item := parsed.Items[0]
	assert.Equal(t, "Como utilizar Hooks", item.Title)
	assert.Equal(t, "https://blog.example.com/post/como-utilizar-hooks", item.Link)
	assert.Equal(t, "Pensando em sincronização em vez de ciclos de vida", item.Description)
	require.NotNil(t, item.PublishedParsed)
	assert.True(t, item.PublishedParsed.Equal(time.Date(2021, 3, 15, 19, 25, 28, 0, time.UTC)))

	assert.Equal(t, "https://blog.example.com/post/criando-um-app-cra-do-zero", parsed.Items[1].Link)
	assert.Equal(t, "Rascunho", parsed.Items[2].Title)
	assert.Nil(t, parsed.Items[2].PublishedParsed)
}

func TestGenerate_Atom(t *testing.T) {
	content, err := Generate(testPosts(), site, &entity.FeedParams{Format: entity.FormatAtom})
	require.NoError(t, err)

	parsed := parseFeed(t, content)

	assert.Equal(t, "atom", parsed.FeedType)
	assert.Equal(t, "Space Travelling", parsed.Title)
	require.Len(t, parsed.Items, 3)

	entry := parsed.Items[0]
	assert.Equal(t, "Como utilizar Hooks", entry.Title)
	assert.Equal(t, "https://blog.example.com/post/como-utilizar-hooks", entry.GUID)
	assert.Equal(t, "https://blog.example.com/post/como-utilizar-hooks", entry.Link)
	require.Len(t, entry.Authors, 1)
	assert.Equal(t, "Joseph Oliveira", entry.Authors[0].Name)
}

func TestGenerate_EmptyPage(t *testing.T) {
	content, err := Generate(nil, site, &entity.FeedParams{Format: entity.FormatRSS})
	require.NoError(t, err)

	assert.Empty(t, parseFeed(t, content).Items)
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	_, err := Generate(testPosts(), site, &entity.FeedParams{Format: "json"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported feed format: json")
}

func TestTruncateAtWordBoundary(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		limit    int
		expected string
	}{
		{
			name:     "Short text is kept",
			text:     "Tudo sobre foguetes",
			limit:    40,
			expected: "Tudo sobre foguetes",
		},
		{
			name:     "Whitespace is collapsed",
			text:     "  Tudo \n sobre\tfoguetes ",
			limit:    40,
			expected: "Tudo sobre foguetes",
		},
		{
			name:     "Cut at the last space",
			text:     "Tudo sobre foguetes espaciais",
			limit:    22,
			expected: "Tudo sobre foguetes…",
		},
		{
			name:     "Trailing punctuation is dropped",
			text:     "Tudo sobre, foguetes",
			limit:    14,
			expected: "Tudo sobre…",
		},
		{
			name:     "Single long word is cut at the limit",
			text:     "Supercalifragilistico",
			limit:    5,
			expected: "Super…",
		},
		{
			name:     "Exactly at the limit",
			text:     "Órbita",
			limit:    6,
			expected: "Órbita",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateAtWordBoundary(tt.text, tt.limit))
		})
	}
}

func TestGenerate_LongSubtitleIsTruncated(t *testing.T) {
	posts := []entity.PostSummary{{UID: "a", Title: "A", Subtitle: strings.Repeat("palavra ", 40)}}

	content, err := Generate(posts, site, &entity.FeedParams{Format: entity.FormatRSS})
	require.NoError(t, err)

	parsed := parseFeed(t, content)
	require.Len(t, parsed.Items, 1)

	description := parsed.Items[0].Description
	assert.True(t, strings.HasSuffix(description, ellipsis))
	assert.LessOrEqual(t, utf8.RuneCountInString(description), maxDescriptionLength+1)
}
