// Package verify parses generated messages and checks the properties every
// fixture set must hold: valid MIME, resolvable cid: references, unique
// Message-IDs, consistent invoice totals and sequential file names.
package verify

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	gomessage "github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"

	"github.com/Rasalas/msg-reader/pkgs/email"
)

// Report is the result of inspecting one message.
type Report struct {
	Name      string
	Subject   string
	MessageID string

	Parts       int
	Attachments int
	Inline      int
	Forwards    int
	Size        int

	// Problems lists every property violation found, nested forwards
	// included. An empty list means the message passed.
	Problems []string
}

// OK reports whether the message passed every check.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) problemf(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// walker accumulates what one message (not its forwards) contains.
type walker struct {
	report     *Report
	html       []string
	contentIDs map[string]struct{}
}

// Inspect parses raw as an RFC 5322 message and checks it.
func Inspect(name string, raw []byte) Report {
	r := Report{Name: name, Size: len(raw)}
	inspect(&r, raw, "")
	return r
}

// inspect checks one message. prefix labels problems found in forwarded
// messages.
func inspect(r *Report, raw []byte, prefix string) {
	entity, err := gomessage.Read(bytes.NewReader(raw))
	if err != nil && !gomessage.IsUnknownCharset(err) {
		r.problemf("%sinvalid MIME: %v", prefix, err)
		return
	}

	h := mail.Header{Header: entity.Header}
	if prefix == "" {
		r.Subject, _ = h.Subject()
		r.MessageID = strings.TrimSpace(h.Get("Message-Id"))
	}
	for _, key := range []string{"From", "Date", "Message-Id"} {
		if h.Get(key) == "" {
			r.problemf("%smissing %s header", prefix, key)
		}
	}
	if _, err := h.Date(); err != nil && h.Get("Date") != "" {
		r.problemf("%sbad Date header: %v", prefix, err)
	}
	if _, err := h.AddressList("From"); err != nil {
		r.problemf("%sbad From header: %v", prefix, err)
	}

	w := &walker{report: r, contentIDs: make(map[string]struct{})}
	w.entity(entity, prefix)

	for _, html := range w.html {
		for _, ref := range email.CIDReferences(html) {
			if _, ok := w.contentIDs[ref]; !ok {
				r.problemf("%scid:%s has no matching part", prefix, ref)
			}
		}
		if err := checkInvoice(html); err != nil {
			r.problemf("%s%v", prefix, err)
		}
	}
}

// entity walks a single-part or multipart entity, recursing into nested
// multiparts and forwarded messages.
func (w *walker) entity(e *gomessage.Entity, prefix string) {
	if mr := e.MultipartReader(); mr != nil {
		w.multipart(mr, prefix)
		return
	}
	w.part(e, prefix)
}

func (w *walker) multipart(mr gomessage.MultipartReader, prefix string) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return
		}
		if err != nil && !gomessage.IsUnknownCharset(err) {
			w.report.problemf("%sinvalid multipart: %v", prefix, err)
			return
		}
		w.entity(part, prefix)
	}
}

func (w *walker) part(e *gomessage.Entity, prefix string) {
	w.report.Parts++

	ct, _, err := e.Header.ContentType()
	if err != nil {
		w.report.problemf("%sbad Content-Type: %v", prefix, err)
	}
	body, err := io.ReadAll(e.Body)
	if err != nil {
		w.report.problemf("%sunreadable %s part: %v", prefix, ct, err)
		return
	}

	if id := e.Header.Get("Content-Id"); id != "" {
		id = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(id), "<"), ">")
		w.contentIDs[id] = struct{}{}
	}

	disp, _, _ := e.Header.ContentDisposition()
	switch {
	case ct == "message/rfc822":
		w.report.Forwards++
		inspect(w.report, body, fmt.Sprintf("%sforward %d: ", prefix, w.report.Forwards))
	case ct == "text/html" && disp != "attachment":
		w.html = append(w.html, string(body))
	case ct == "text/plain" && disp != "attachment":
	case disp == "inline":
		w.report.Inline++
	default:
		w.report.Attachments++
	}
}
