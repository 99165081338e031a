package assets

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"
)

// SimplePDF renders a single A4 page with title at (100,750) and a
// "Generated: YYYY-MM-DD" line at (100,730), coordinates in points from the
// bottom-left corner.
func SimplePDF(title string, generated time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(generated)
	pdf.SetModificationDate(generated)
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)

	_, pageHeight := pdf.GetPageSize()
	pdf.Text(100, pageHeight-750, title)
	pdf.Text(100, pageHeight-730, "Generated: "+generated.Format("2006-01-02"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
