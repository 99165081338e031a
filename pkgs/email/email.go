package email

import (
	"regexp"
	"time"

	"github.com/emersion/go-message/mail"
)

// Message is an in-memory message tree. It is assembled once per fixture,
// serialized with Write and then discarded.
type Message struct {
	// Envelope
	From    Address
	To      []Address
	Cc      []Address
	Subject string
	Date    time.Time

	// Metadata. MessageID, InReplyTo and References carry angle brackets.
	MessageID  string
	InReplyTo  string
	References []string

	// Content
	TextBody string
	HTMLBody string

	// Inline parts are placed next to the HTML body in a multipart/related
	// container and are addressed from the HTML by "cid:" URLs.
	Inline []Part

	// Attachments and Forwards are appended to the outer multipart/mixed
	// container, attachments first.
	Attachments []Part
	Forwards    []*Message
}

// Address represents an email address
type Address struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

func (a Address) mail() *mail.Address {
	return &mail.Address{Name: a.Name, Address: a.Email}
}

// Part is a binary MIME part: an inline image or an attachment.
type Part struct {
	Filename    string
	ContentType string
	// ContentID is the bare id, without angle brackets.
	ContentID string
	Data      []byte
}

var cidRef = regexp.MustCompile(`(?i)cid:([^"'\s)>]+)`)

// CIDReferences returns the Content-IDs referenced from html via "cid:"
// URLs, in order of first appearance and without duplicates.
func CIDReferences(html string) []string {
	var refs []string
	seen := make(map[string]struct{})
	for _, m := range cidRef.FindAllStringSubmatch(html, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		refs = append(refs, m[1])
	}
	return refs
}

// ContentIDs returns the Content-IDs of the message's inline parts.
func (m *Message) ContentIDs() []string {
	ids := make([]string, 0, len(m.Inline))
	for _, p := range m.Inline {
		if p.ContentID != "" {
			ids = append(ids, p.ContentID)
		}
	}
	return ids
}

// UnresolvedCIDs returns the "cid:" references of the HTML body that no
// inline part satisfies.
func (m *Message) UnresolvedCIDs() []string {
	have := make(map[string]struct{}, len(m.Inline))
	for _, id := range m.ContentIDs() {
		have[id] = struct{}{}
	}
	var missing []string
	for _, ref := range CIDReferences(m.HTMLBody) {
		if _, ok := have[ref]; !ok {
			missing = append(missing, ref)
		}
	}
	return missing
}
