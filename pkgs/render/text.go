package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	lineBreaks = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</h[1-6]>|</li>|</tr>|</div>`)
	listItems  = regexp.MustCompile(`(?i)<li[^>]*>`)
	headBlock  = regexp.MustCompile(`(?is)<head.*?</head>`)
)

// PlainText derives a plain-text alternative from an HTML body: block ends
// become line breaks, list items get a "- " prefix, all remaining markup is
// stripped and entities are decoded.
func PlainText(htmlBody string) string {
	s := headBlock.ReplaceAllString(htmlBody, "")
	s = listItems.ReplaceAllString(s, "- ")
	s = lineBreaks.ReplaceAllString(s, "\n")
	s = html.UnescapeString(strictPolicy.Sanitize(s))

	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
