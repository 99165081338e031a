package generate

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/Rasalas/msg-reader/pkgs/assets"
	"github.com/Rasalas/msg-reader/pkgs/email"
	"github.com/Rasalas/msg-reader/pkgs/persona"
	"github.com/Rasalas/msg-reader/pkgs/render"
)

// DefaultForwardDepth is the length of the forwarded-message chain when
// none is configured.
const DefaultForwardDepth = 3

// Special returns messages exercising structural edge cases:
//
//	special_inline_cid     HTML gallery with PNGs addressed by Content-ID
//	special_forward_chain  forwards nested depth levels deep
//	special_data_uri       PNGs embedded in the HTML as base64 data URIs
//	special_forward_pdf    a forwarded message that carries a PDF
//	special_reply          a reply threaded onto special_inline_cid
func (g *Generator) Special(depth int) ([]Fixture, error) {
	if depth < 1 {
		depth = DefaultForwardDepth
	}
	people := persona.Detailed()
	ada, charles, alan, grace := people[0], people[1], people[2], people[3]

	gallery, err := g.inlineGallery(ada, charles)
	if err != nil {
		return nil, err
	}
	steps := []func() (*email.Message, error){
		func() (*email.Message, error) { return gallery, nil },
		func() (*email.Message, error) { return g.forwardChain(depth), nil },
		func() (*email.Message, error) { return g.dataURIGallery(grace, alan) },
		func() (*email.Message, error) { return g.forwardedPDF(alan, grace, ada) },
		func() (*email.Message, error) { return g.reply(gallery, charles), nil },
	}
	names := []string{
		"special_inline_cid",
		"special_forward_chain",
		"special_data_uri",
		"special_forward_pdf",
		"special_reply",
	}

	fixtures := make([]Fixture, 0, len(steps))
	for i, step := range steps {
		msg, err := step()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		f, err := g.finish(ScenarioSpecial, names[i], msg)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// swatches renders one PNG per palette colour. Unavailable images are
// skipped.
func (g *Generator) swatches() ([]string, [][]byte, error) {
	var names []string
	var images [][]byte
	for _, c := range assets.Colors() {
		img, err := g.assets.PNG(100, 100, c)
		if err := g.optional("png", err); err != nil {
			return nil, nil, err
		}
		if img == nil {
			continue
		}
		names = append(names, c)
		images = append(images, img)
	}
	return names, images, nil
}

func (g *Generator) inlineGallery(from, to persona.Persona) (*email.Message, error) {
	msg := g.newMessage(from, to, "Colour swatches for the engine casing", 0)

	colors, images, err := g.swatches()
	if err != nil {
		return nil, err
	}
	letter := render.Letter{From: from, To: to, Closing: "Cheers"}
	for i, c := range colors {
		cid := g.ids.ContentID(from.Email)
		msg.Inline = append(msg.Inline, email.Part{
			Filename:    c + ".png",
			ContentType: "image/png",
			ContentID:   cid,
			Data:        images[i],
		})
		letter.Images = append(letter.Images, render.Image{Caption: caption(c), Src: render.CID(cid)})
	}

	html, err := render.HTML(render.KindGallery, letter)
	if err != nil {
		return nil, err
	}
	msg.HTMLBody = html
	msg.TextBody = render.PlainText(html)
	return msg, nil
}

func (g *Generator) dataURIGallery(from, to persona.Persona) (*email.Message, error) {
	msg := g.newMessage(from, to, "Swatches again, embedded this time", 2)

	colors, images, err := g.swatches()
	if err != nil {
		return nil, err
	}
	letter := render.Letter{From: from, To: to, Closing: "Cheers"}
	for i, c := range colors {
		letter.Images = append(letter.Images, render.Image{
			Caption: caption(c),
			Src:     template.URL(assets.DataURI("image/png", images[i])),
		})
	}

	html, err := render.HTML(render.KindGallery, letter)
	if err != nil {
		return nil, err
	}
	msg.HTMLBody = html
	return msg, nil
}

// forwardChain builds depth messages, each forwarding the previous one.
// The outermost message is returned.
func (g *Generator) forwardChain(depth int) *email.Message {
	people := persona.Detailed()
	from, to := people[0], people[1]

	msg := g.newMessage(from, to, "Original: gear ratio tables", depth)
	msg.TextBody = fmt.Sprintf("Hi %s,\n\nThe revised gear ratio tables are below.\n\n1:2, 1:3, 2:5\n\n%s",
		to.FirstName(), from.FirstName())

	for level := 1; level < depth; level++ {
		from, to = to, people[(level+1)%len(people)]
		outer := g.newMessage(from, to, "Fwd: "+msg.Subject, depth-level)
		outer.TextBody = fmt.Sprintf("%s, see the message below.\n\n%s", to.FirstName(), forwardBanner(msg))
		outer.Forwards = []*email.Message{msg}
		msg = outer
	}
	return msg
}

func (g *Generator) forwardedPDF(original, forwarder, to persona.Persona) (*email.Message, error) {
	inner := g.newMessage(original, forwarder, "Project Specifications", 4)
	inner.TextBody = fmt.Sprintf("%s,\n\nSpecifications attached.\n\n%s", forwarder.FirstName(), original.FirstName())

	pdf, err := g.assets.PDF("Project Specifications", g.now())
	if err := g.optional("pdf", err); err != nil {
		return nil, err
	}
	if pdf != nil {
		inner.Attachments = []email.Part{{
			Filename:    pdfFilename("Project Specifications"),
			ContentType: "application/pdf",
			Data:        pdf,
		}}
	}

	outer := g.newMessage(forwarder, to, "Fwd: "+inner.Subject, 1)
	outer.TextBody = fmt.Sprintf("%s, forwarding Alan's specifications.\n\n%s", to.FirstName(), forwardBanner(inner))
	outer.Forwards = []*email.Message{inner}
	return outer, nil
}

// reply answers orig from the given persona, threading it through
// In-Reply-To and References and quoting its text body.
func (g *Generator) reply(orig *email.Message, from persona.Persona) *email.Message {
	to := persona.Persona{Name: orig.From.Name, Email: orig.From.Email}
	msg := g.newMessage(from, to, "Re: "+orig.Subject, 0)
	msg.Date = orig.Date.Add(2 * time.Hour)
	msg.InReplyTo = orig.MessageID
	msg.References = append(append([]string(nil), orig.References...), orig.MessageID)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nBlue it is. I'll order the brass accordingly.\n\n%s\n\n", to.FirstName(), from.FirstName())
	fmt.Fprintf(&b, "On %s, %s wrote:\n", orig.Date.Format("Mon, 2 Jan 2006 at 15:04"), orig.From.Name)
	for _, line := range strings.Split(orig.TextBody, "\n") {
		if line == "" {
			b.WriteString(">\n")
			continue
		}
		b.WriteString("> " + line + "\n")
	}
	msg.TextBody = b.String()
	return msg
}

func (g *Generator) newMessage(from, to persona.Persona, subject string, daysAgo int) *email.Message {
	return &email.Message{
		From:      address(from),
		To:        []email.Address{address(to)},
		Subject:   subject,
		Date:      g.now().AddDate(0, 0, -daysAgo),
		MessageID: g.ids.MessageID(from.Email),
	}
}

func forwardBanner(m *email.Message) string {
	return fmt.Sprintf("---------- Forwarded message ----------\nFrom: %s <%s>\nDate: %s\nSubject: %s\n",
		m.From.Name, m.From.Email, m.Date.Format(time.RFC1123Z), m.Subject)
}

func caption(color string) string {
	if color == "" {
		return color
	}
	return strings.ToUpper(color[:1]) + color[1:]
}
