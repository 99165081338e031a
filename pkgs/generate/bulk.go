package generate

import (
	"fmt"
	"time"

	"github.com/Rasalas/msg-reader/pkgs/assets"
	"github.com/Rasalas/msg-reader/pkgs/email"
	"github.com/Rasalas/msg-reader/pkgs/persona"
	"github.com/Rasalas/msg-reader/pkgs/render"
)

// BulkName returns the file stem of the index-th bulk message (1-based).
func BulkName(index int) string {
	return fmt.Sprintf("bulk_email_%04d", index)
}

// Bulk generates count random messages named bulk_email_0001 onwards.
func (g *Generator) Bulk(count int, attachments bool) ([]Fixture, error) {
	if count < 0 {
		return nil, fmt.Errorf("bulk count must not be negative, got %d", count)
	}
	fixtures := make([]Fixture, 0, count)
	for i := 1; i <= count; i++ {
		f, err := g.BulkEmail(i, attachments)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// BulkEmail generates the index-th bulk message: a random sender writing to
// a different random recipient, dated within the past year, with either an
// HTML or a plain body. With attachments enabled, about 30% of messages get
// a PDF and half of those also a PNG.
func (g *Generator) BulkEmail(index int, attachments bool) (Fixture, error) {
	people := persona.Bulk()
	sender := persona.Pick(g.rng, people)
	recipient := persona.PickOther(g.rng, people, sender)

	now := g.now()
	msg := &email.Message{
		From:    address(sender),
		To:      []email.Address{address(recipient)},
		Subject: render.Subject(g.rng, now),
	}
	age := time.Duration(g.rng.Intn(24))*time.Hour + time.Duration(g.rng.Intn(60))*time.Minute
	msg.Date = now.AddDate(0, 0, -g.rng.Intn(366)).Add(-age)
	msg.MessageID = g.ids.MessageID(sender.Email)

	body := render.Body(g.rng, sender, recipient)
	if g.rng.Float64() > 0.5 {
		msg.HTMLBody = render.WrapHTML(body)
	} else {
		msg.TextBody = body
	}

	if attachments && g.rng.Float64() > 0.7 {
		pdf, err := g.assets.PDF(fmt.Sprintf("Document_%d", index), now)
		if err := g.optional("pdf", err); err != nil {
			return Fixture{}, err
		}
		if pdf != nil {
			msg.Attachments = append(msg.Attachments, email.Part{
				Filename:    fmt.Sprintf("document_%d.pdf", index),
				ContentType: "application/pdf",
				Data:        pdf,
			})
		}

		if g.rng.Float64() > 0.5 {
			colors := assets.Colors()
			color := colors[g.rng.Intn(len(colors))]
			img, err := g.assets.PNG(100, 100, color)
			if err := g.optional("png", err); err != nil {
				return Fixture{}, err
			}
			if img != nil {
				msg.Attachments = append(msg.Attachments, email.Part{
					Filename:    fmt.Sprintf("image_%d.png", index),
					ContentType: "image/png",
					Data:        img,
				})
			}
		}
	}

	return g.finish(ScenarioBulk, BulkName(index), msg)
}
