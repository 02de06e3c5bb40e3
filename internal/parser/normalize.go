package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Markers left behind by "view source" captures, where every line of the
// original markup sits escaped inside a syntax-highlighting table row.
const (
	lineNumberMarker  = `class="line-number"`
	lineContentMarker = `class="line-content"`
)

// Normalize reconstitutes real markup from an escaped "view source" capture.
// Archived fixtures were saved from a browser's view-source tab, which wraps
// each escaped source line in a table cell. When both marker tokens are
// present, the text of every line cell is extracted, the lines are rejoined
// and entities are decoded; any other input passes through unchanged, so the
// page parser treats live and archived HTML uniformly.
func Normalize(htmlText string) string {
	if !strings.Contains(htmlText, lineNumberMarker) || !strings.Contains(htmlText, lineContentMarker) {
		return htmlText
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return htmlText
	}

	var lines []string
	doc.Find("td.line-content").Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, s.Text())
	})
	if len(lines) == 0 {
		return htmlText
	}

	return html.UnescapeString(strings.Join(lines, "\n"))
}
