package render

import (
	"fmt"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/Rasalas/msg-reader/pkgs/persona"
)

var subjects = parseAll("subject", []string{
	"Re: Code Review Request",
	"Meeting Notes from {{.Date}}",
	"Bug Report: Issue #{{.Num}}",
	"Feature Request: {{.Feature}}",
	"Weekly Status Update",
	"Question about implementation",
	"Urgent: Production issue",
	"Documentation update needed",
	"Test results for build #{{.Num}}",
	"Patch for security vulnerability",
	"Design proposal for new module",
	"Performance optimization results",
	"API changes discussion",
	"Deployment scheduled for {{.Date}}",
	"Release notes v{{.Version}}",
})

var features = []string{"dark mode", "export function", "user dashboard", "API v2", "authentication"}

var bodies = parseAll("body", []string{
	"Hi {{.Recipient}},\n\nI wanted to follow up on our previous discussion.\n\nBest,\n{{.Sender}}",
	"Dear {{.Recipient}},\n\nPlease find the attached document.\n\nRegards,\n{{.Sender}}",
	"{{.Recipient}},\n\nCan you review this when you get a chance?\n\nThanks,\n{{.Sender}}",
	"Hello {{.Recipient}},\n\nJust a quick update on the project status.\n\n- Task 1: Complete\n- Task 2: In Progress\n- Task 3: Pending\n\nBest regards,\n{{.Sender}}",
	"Hi {{.Recipient}},\n\nI found an issue that needs attention.\n\nDetails:\n- Component: Main module\n- Severity: Medium\n- Steps to reproduce: See attachment\n\nLet me know if you need more info.\n\n{{.Sender}}",
})

func parseAll(prefix string, texts []string) []*template.Template {
	out := make([]*template.Template, len(texts))
	for i, text := range texts {
		out[i] = template.Must(template.New(fmt.Sprintf("%s%d", prefix, i)).Parse(text))
	}
	return out
}

func execute(t *template.Template, data any) string {
	var b strings.Builder
	// The templates are fixed and their data fields always exist.
	if err := t.Execute(&b, data); err != nil {
		panic(err)
	}
	return b.String()
}

// Subject returns a random bulk subject line. Dates lie up to 30 days
// before now.
func Subject(rng *rand.Rand, now time.Time) string {
	tmpl := subjects[rng.Intn(len(subjects))]
	return execute(tmpl, struct {
		Date    string
		Num     int
		Feature string
		Version string
	}{
		Date:    now.AddDate(0, 0, -rng.Intn(31)).Format("2006-01-02"),
		Num:     100 + rng.Intn(9900),
		Feature: features[rng.Intn(len(features))],
		Version: fmt.Sprintf("%d.%d.%d", 1+rng.Intn(5), rng.Intn(10), rng.Intn(10)),
	})
}

// Body returns a random plain-text bulk body greeting recipient and signed
// by sender, both by first name.
func Body(rng *rand.Rand, sender, recipient persona.Persona) string {
	tmpl := bodies[rng.Intn(len(bodies))]
	return execute(tmpl, struct {
		Sender    string
		Recipient string
	}{
		Sender:    sender.FirstName(),
		Recipient: recipient.FirstName(),
	})
}

// SubjectCount and BodyCount report the size of the template pools.
func SubjectCount() int { return len(subjects) }
func BodyCount() int    { return len(bodies) }
