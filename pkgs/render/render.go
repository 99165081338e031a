// Package render turns persona data into message subjects and bodies.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Rasalas/msg-reader/pkgs/persona"
)

//go:embed templates/*.html
var templateFS embed.FS

var htmlTemplates = template.Must(
	template.New("mail").Funcs(template.FuncMap{
		"currency": Currency,
		"longDate": LongDate,
	}).ParseFS(templateFS, "templates/*.html"),
)

// Kind names an HTML letter template.
type Kind string

const (
	KindInvoice   Kind = "invoice"
	KindUpdate    Kind = "update"
	KindBugReport Kind = "bug_report"
	KindMinutes   Kind = "minutes"
	KindGallery   Kind = "gallery"
)

// Image is a picture embedded in a gallery letter. Src is either a "cid:"
// reference or a data URI.
type Image struct {
	Caption string
	Src     template.URL
}

// Letter is the data rendered into the letter templates.
type Letter struct {
	From persona.Persona
	To   persona.Persona

	// Closing is the valediction above the signature, e.g. "Best regards".
	Closing string

	// LogoSrc is the image source of the sender's logo. Empty omits the logo.
	LogoSrc template.URL

	NextMeeting time.Time
	Images      []Image
}

// CID returns a "cid:" URL for use as an image source.
func CID(contentID string) template.URL {
	return template.URL("cid:" + contentID)
}

// HTML renders the letter template of the given kind.
func HTML(kind Kind, data any) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, string(kind)+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	return buf.String(), nil
}

// Currency formats an amount in pence as pounds, e.g. £1,234.56.
func Currency(pence int64) string {
	sign := ""
	if pence < 0 {
		sign = "-"
		pence = -pence
	}
	return sign + "£" + humanize.FormatFloat("#,###.##", float64(pence)/100)
}

// LongDate formats t as "January 02, 2006".
func LongDate(t time.Time) string {
	return t.Format("January 02, 2006")
}

// WrapHTML turns a plain-text body into a minimal HTML document, keeping
// line breaks.
func WrapHTML(body string) string {
	escaped := template.HTMLEscapeString(body)
	return "<!DOCTYPE html>\n<html>\n<body style=\"font-family: Arial, sans-serif; padding: 20px;\">\n<p>" +
		strings.ReplaceAll(escaped, "\n", "<br>") +
		"</p>\n</body>\n</html>"
}
