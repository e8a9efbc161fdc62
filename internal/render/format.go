package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/nDmitry/spacetravelling/internal/entity"
)

// WordsPerMinute is the reading speed used to estimate reading time
const WordsPerMinute = 200

// textSelector matches the elements holding readable text in rendered rich text
const textSelector = "h1, h2, h3, h4, h5, h6, p, pre, li"

var monthsPtBR = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// FormatDate formats a publication date as "15 mar 2021", in UTC.
// A nil date, i.e. an unpublished document, is formatted as an empty string.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	utc := t.UTC()

	return fmt.Sprintf("%d %s %d", utc.Day(), monthsPtBR[utc.Month()-1], utc.Year())
}

// ReadingTime estimates the minutes needed to read the post: headings and
// bodies at WordsPerMinute, rounded up, at least one minute.
func ReadingTime(post *entity.PostDetail) (int, error) {
	return sectionsReadingTime(post.UID, renderSections(post))
}

func sectionsReadingTime(uid string, sections []section) (int, error) {
	words := 0

	for _, s := range sections {
		words += len(strings.Fields(s.Heading))

		n, err := countWords(string(s.Body))

		if err != nil {
			return 0, fmt.Errorf("could not count words of %s: %w", uid, err)
		}

		words += n
	}

	minutes := (words + WordsPerMinute - 1) / WordsPerMinute

	if minutes < 1 {
		minutes = 1
	}

	return minutes, nil
}

func countWords(html string) (int, error) {
	if html == "" {
		return 0, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))

	if err != nil {
		return 0, err
	}

	words := 0

	doc.Find("br").ReplaceWithHtml(" ")

	// Adjacent blocks have no whitespace between them, so they are counted one by one
	doc.Find(textSelector).Each(func(_ int, s *goquery.Selection) {
		words += len(strings.Fields(s.Text()))
	})

	return words, nil
}
