package generate

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/Rasalas/msg-reader/pkgs/email"
	"github.com/Rasalas/msg-reader/pkgs/persona"
	"github.com/Rasalas/msg-reader/pkgs/render"
)

// LogoContentID is the Content-ID of the sender's logo in the samples.
const LogoContentID = "company-logo"

type sample struct {
	from, to int
	subject  string
	kind     render.Kind
	closing  string
	// pdfTitle names the attached PDF. Empty means no attachment.
	pdfTitle string
}

var samples = []sample{
	{from: 0, to: 1, subject: "Invoice for Analytical Engine Consulting Services", kind: render.KindInvoice, pdfTitle: "Invoice Details"},
	{from: 2, to: 3, subject: "Progress Update: Universal Computing Machine", kind: render.KindUpdate, closing: "Best regards", pdfTitle: "Project Specifications"},
	{from: 3, to: 2, subject: "Found a bug in the compiler - nanoseconds matter!", kind: render.KindBugReport, closing: "Regards"},
	{from: 1, to: 0, subject: "Minutes from yesterday's Engine Design Review", kind: render.KindMinutes, closing: "Yours sincerely"},
}

// Samples returns the four fixed mock emails, named mock_email_1 to
// mock_email_4. The n-th message is dated n-1 days before now.
func (g *Generator) Samples() ([]Fixture, error) {
	people := persona.Detailed()
	now := g.now()

	fixtures := make([]Fixture, 0, len(samples))
	for i, s := range samples {
		from, to := people[s.from], people[s.to]

		msg := &email.Message{
			From:      address(from),
			To:        []email.Address{address(to)},
			Subject:   s.subject,
			Date:      now.AddDate(0, 0, -i),
			MessageID: g.ids.MessageID(from.Email),
		}

		logoData, err := g.assets.Logo(from.Logo)
		if err := g.optional("logo", err); err != nil {
			return nil, err
		}
		var logoSrc template.URL
		if logoData != nil {
			logoSrc = render.CID(LogoContentID)
			msg.Inline = append(msg.Inline, email.Part{
				ContentType: "image/svg+xml",
				ContentID:   LogoContentID,
				Data:        logoData,
			})
		}

		var data any
		if s.kind == render.KindInvoice {
			inv := render.NewInvoice(g.rng, from, to, now)
			inv.LogoSrc = logoSrc
			data = inv
		} else {
			data = render.Letter{
				From:        from,
				To:          to,
				Closing:     s.closing,
				LogoSrc:     logoSrc,
				NextMeeting: now.AddDate(0, 0, 7),
			}
		}
		html, err := render.HTML(s.kind, data)
		if err != nil {
			return nil, err
		}
		msg.HTMLBody = html
		msg.TextBody = render.PlainText(html)

		if s.pdfTitle != "" {
			pdf, err := g.assets.PDF(s.pdfTitle, now)
			if err := g.optional("pdf", err); err != nil {
				return nil, err
			}
			if pdf != nil {
				msg.Attachments = append(msg.Attachments, email.Part{
					Filename:    pdfFilename(s.pdfTitle),
					ContentType: "application/pdf",
					Data:        pdf,
				})
			}
		}

		f, err := g.finish(ScenarioSamples, fmt.Sprintf("mock_email_%d", i+1), msg)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// pdfFilename turns "Invoice Details" into "invoice_details.pdf".
func pdfFilename(title string) string {
	return strings.ToLower(strings.ReplaceAll(title, " ", "_")) + ".pdf"
}

func address(p persona.Persona) email.Address {
	return email.Address{Name: p.Name, Email: p.Email}
}
