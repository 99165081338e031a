package email

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gomessage "github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
)

// ErrUnresolvedCID is returned when the HTML body references a Content-ID
// that none of the inline parts carries.
var ErrUnresolvedCID = errors.New("unresolved cid reference")

// createFunc creates a child entity: either the top-level entity of a
// message or a part of an enclosing multipart container.
type createFunc func(h gomessage.Header) (*gomessage.Writer, error)

// Build serializes msg into an RFC 5322 message. Multipart boundaries are
// drawn from ids; with a nil ids go-message picks them.
func Build(msg *Message, ids *IDSource) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := Write(&buf, msg, ids); err != nil {
		return nil, err
	}
	return &buf, nil
}

// Write serializes msg into w.
//
// The nesting order is fixed: multipart/mixed (attachments, forwards) holds
// multipart/alternative (text, html), whose html branch is wrapped in
// multipart/related when inline parts exist. Containers that would hold a
// single child are omitted.
func Write(w io.Writer, msg *Message, ids *IDSource) error {
	c := composer{ids: ids}
	if missing := msg.UnresolvedCIDs(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnresolvedCID, strings.Join(missing, ", "))
	}

	top := topLevel(w, msg.header())

	if len(msg.Attachments) == 0 && len(msg.Forwards) == 0 {
		return c.writeBody(top, msg)
	}

	var h gomessage.Header
	c.setMultipart(&h, "multipart/mixed", nil)
	mixed, err := top(h)
	if err != nil {
		return err
	}
	if msg.TextBody != "" || msg.HTMLBody != "" {
		if err := c.writeBody(mixed.CreatePart, msg); err != nil {
			return err
		}
	}
	for _, att := range msg.Attachments {
		if err := writePart(mixed.CreatePart, att, "attachment"); err != nil {
			return fmt.Errorf("attachment %s: %w", att.Filename, err)
		}
	}
	for i, fwd := range msg.Forwards {
		if err := c.writeForward(mixed.CreatePart, fwd, i+1); err != nil {
			return fmt.Errorf("forwarded message %d: %w", i+1, err)
		}
	}
	return mixed.Close()
}

func (m *Message) header() mail.Header {
	var h mail.Header
	h.Set("MIME-Version", "1.0")

	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	h.SetDate(date)
	h.SetSubject(m.Subject)
	h.SetAddressList("From", []*mail.Address{m.From.mail()})

	if len(m.To) > 0 {
		h.SetAddressList("To", addressList(m.To))
	}
	if len(m.Cc) > 0 {
		h.SetAddressList("Cc", addressList(m.Cc))
	}
	if m.MessageID != "" {
		h.Set("Message-ID", m.MessageID)
	}

	// Handle reply and references
	if m.InReplyTo != "" {
		h.SetMsgIDList("In-Reply-To", []string{trimAngle(m.InReplyTo)})
	}
	if len(m.References) > 0 {
		refs := make([]string, len(m.References))
		for i, r := range m.References {
			refs[i] = trimAngle(r)
		}
		h.SetMsgIDList("References", refs)
	}
	return h
}

// topLevel returns a createFunc that merges the part header into the
// message header and writes the result as the root entity.
func topLevel(w io.Writer, root mail.Header) createFunc {
	return func(h gomessage.Header) (*gomessage.Writer, error) {
		fields := h.Fields()
		for fields.Next() {
			root.Set(fields.Key(), fields.Value())
		}
		return gomessage.CreateWriter(w, root.Header)
	}
}

// composer carries the boundary source through one message tree.
type composer struct {
	ids *IDSource
}

func (c composer) setMultipart(h *gomessage.Header, mediaType string, params map[string]string) {
	if c.ids != nil {
		if params == nil {
			params = make(map[string]string)
		}
		params["boundary"] = c.ids.Boundary()
	}
	h.SetContentType(mediaType, params)
}

func (c composer) writeBody(create createFunc, m *Message) error {
	switch {
	case m.TextBody != "" && m.HTMLBody != "":
		var h gomessage.Header
		c.setMultipart(&h, "multipart/alternative", nil)
		alt, err := create(h)
		if err != nil {
			return err
		}
		if err := writeText(alt.CreatePart, "text/plain", m.TextBody); err != nil {
			return err
		}
		if err := c.writeHTML(alt.CreatePart, m); err != nil {
			return err
		}
		return alt.Close()
	case m.HTMLBody != "":
		return c.writeHTML(create, m)
	default:
		return writeText(create, "text/plain", m.TextBody)
	}
}

func (c composer) writeHTML(create createFunc, m *Message) error {
	if len(m.Inline) == 0 {
		return writeText(create, "text/html", m.HTMLBody)
	}

	var h gomessage.Header
	c.setMultipart(&h, "multipart/related", map[string]string{"type": "text/html"})
	related, err := create(h)
	if err != nil {
		return err
	}
	if err := writeText(related.CreatePart, "text/html", m.HTMLBody); err != nil {
		return err
	}
	for _, p := range m.Inline {
		if err := writePart(related.CreatePart, p, "inline"); err != nil {
			return fmt.Errorf("inline part %s: %w", p.ContentID, err)
		}
	}
	return related.Close()
}

func writeText(create createFunc, contentType, body string) error {
	var h gomessage.Header
	h.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	w, err := create(h)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return err
	}
	return w.Close()
}

func writePart(create createFunc, p Part, disposition string) error {
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var h gomessage.Header
	var params map[string]string
	if p.Filename != "" {
		params = map[string]string{"name": p.Filename}
	}
	h.SetContentType(contentType, params)
	if p.Filename != "" {
		h.SetContentDisposition(disposition, map[string]string{"filename": p.Filename})
	} else {
		h.SetContentDisposition(disposition, nil)
	}
	if p.ContentID != "" {
		h.Set("Content-ID", "<"+p.ContentID+">")
	}
	h.Set("Content-Transfer-Encoding", "base64")

	w, err := create(h)
	if err != nil {
		return err
	}
	if _, err := w.Write(p.Data); err != nil {
		return err
	}
	return w.Close()
}

// writeForward embeds fwd as a message/rfc822 part. fwd may itself carry
// forwards, which yields a nested chain.
func (c composer) writeForward(create createFunc, fwd *Message, n int) error {
	inner, err := Build(fwd, c.ids)
	if err != nil {
		return err
	}

	var h gomessage.Header
	h.SetContentType("message/rfc822", nil)
	h.SetContentDisposition("attachment", map[string]string{
		"filename": fmt.Sprintf("forwarded_%d.eml", n),
	})
	w, err := create(h)
	if err != nil {
		return err
	}
	if _, err := w.Write(inner.Bytes()); err != nil {
		return err
	}
	return w.Close()
}

func addressList(addrs []Address) []*mail.Address {
	list := make([]*mail.Address, len(addrs))
	for i, a := range addrs {
		list[i] = a.mail()
	}
	return list
}

// trimAngle strips the angle brackets from a Message-ID.
func trimAngle(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "<")
	return strings.TrimSuffix(id, ">")
}
