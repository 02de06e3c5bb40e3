package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// viewSourceCapture wraps markup the way a saved view-source tab does:
// every line escaped inside a numbered table row.
func viewSourceCapture(markup string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="source">`)
	for n, line := range strings.Split(markup, "\n") {
		fmt.Fprintf(&b, `<tr><td class="line-number">%d</td><td class="line-content">%s</td></tr>`,
			n+1, html.EscapeString(line))
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

func TestNormalizePassesCleanHTMLThrough(t *testing.T) {
	assert.Equal(t, fullCardPage, Normalize(fullCardPage))
}

func TestNormalizeReconstitutesEscapedCapture(t *testing.T) {
	markup := "<div class=\"product-item\">\n  <div class=\"cta-box\"><h3>LG OLED</h3></div>\n</div>"

	normalized := Normalize(viewSourceCapture(markup))
	assert.Equal(t, markup, normalized)
}

func TestNormalizeRequiresBothMarkers(t *testing.T) {
	partial := `<td class="line-content">&lt;div&gt;</td>`
	assert.Equal(t, partial, Normalize(partial))
}

func TestParsePageEscapedCaptureMatchesClean(t *testing.T) {
	p := newTestParser()

	clean, err := p.ParsePage(fullCardPage, "Televizorji", "")
	require.NoError(t, err)

	escaped, err := p.ParsePage(viewSourceCapture(fullCardPage), "Televizorji", "")
	require.NoError(t, err)

	assert.Equal(t, clean.Products, escaped.Products)
}
