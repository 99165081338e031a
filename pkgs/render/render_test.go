package render

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rasalas/msg-reader/pkgs/persona"
)

var (
	ada     = persona.Detailed()[0]
	charles = persona.Detailed()[1]
	now     = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		pence int64
		want  string
	}{
		{0, "£0.00"},
		{15000, "£150.00"},
		{210000, "£2,100.00"},
		{123456789, "£1,234,567.89"},
		{-7550, "-£75.50"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Currency(tc.pence), "Currency(%d)", tc.pence)
	}
}

func TestInvoiceTotal(t *testing.T) {
	inv := NewInvoice(rand.New(rand.NewSource(1)), ada, charles, now)
	assert.Equal(t, int64(210000), inv.Total())
	assert.Regexp(t, `^INV-\d{4}$`, inv.Number)
}

var amountCell = regexp.MustCompile(`class="amount"[^>]*>([^<]+)<`)
var totalCell = regexp.MustCompile(`class="total"[^>]*><strong>([^<]+)<`)

func TestInvoiceHTML(t *testing.T) {
	inv := NewInvoice(rand.New(rand.NewSource(1)), ada, charles, now)
	inv.LogoSrc = CID("company-logo")

	out, err := HTML(KindInvoice, inv)
	require.NoError(t, err)

	assert.Contains(t, out, `<img src="cid:company-logo"`)
	assert.Contains(t, out, "Invoice #"+inv.Number)
	assert.Contains(t, out, "Date: October 14, 2026")
	assert.Contains(t, out, charles.Position)
	assert.Contains(t, out, "Net 30")

	amounts := amountCell.FindAllStringSubmatch(out, -1)
	require.Len(t, amounts, 3)
	assert.Equal(t, "£750.00", amounts[0][1])
	assert.Equal(t, "£600.00", amounts[1][1])
	assert.Equal(t, "£750.00", amounts[2][1])

	total := totalCell.FindStringSubmatch(out)
	require.NotNil(t, total)
	assert.Equal(t, "£2,100.00", total[1])
}

func TestInvoiceHTMLWithoutLogo(t *testing.T) {
	inv := NewInvoice(rand.New(rand.NewSource(1)), ada, charles, now)
	out, err := HTML(KindInvoice, inv)
	require.NoError(t, err)
	assert.NotContains(t, out, "<img")
}

func TestLetters(t *testing.T) {
	for _, kind := range []Kind{KindUpdate, KindBugReport, KindMinutes} {
		t.Run(string(kind), func(t *testing.T) {
			out, err := HTML(kind, Letter{
				From:        ada,
				To:          charles,
				Closing:     "Best regards",
				LogoSrc:     CID("company-logo"),
				NextMeeting: now.AddDate(0, 0, 7),
			})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
			assert.Contains(t, out, "Dear Charles Babbage,")
			assert.Contains(t, out, "Best regards,<br>")
			assert.Contains(t, out, ada.Position)
			assert.Contains(t, out, ada.Company)
			assert.Contains(t, out, `src="cid:company-logo"`)
			assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</html>"))
		})
	}
}

func TestMinutesNextMeeting(t *testing.T) {
	out, err := HTML(KindMinutes, Letter{From: charles, To: ada, Closing: "Yours sincerely", NextMeeting: now.AddDate(0, 0, 7)})
	require.NoError(t, err)
	assert.Contains(t, out, "Next meeting scheduled for: October 21, 2026")
	assert.NotContains(t, out, "<img")
}

func TestGalleryDataURI(t *testing.T) {
	out, err := HTML(KindGallery, Letter{
		From:    ada,
		To:      charles,
		Closing: "Cheers",
		Images:  []Image{{Caption: "Red", Src: "data:image/png;base64,AAAA"}},
	})
	require.NoError(t, err)
	assert.Contains(t, out, `src="data:image/png;base64,AAAA"`)
	assert.Contains(t, out, "Hi Charles,")
}

func TestSubjectPlaceholdersFilled(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		s := Subject(rng, now)
		assert.NotContains(t, s, "{{")
		assert.NotContains(t, s, "<no value>")
		assert.NotEmpty(t, s)
	}
}

func TestBodyUsesFirstNames(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		b := Body(rng, ada, charles)
		assert.Contains(t, b, "Charles")
		assert.Contains(t, b, "Ada")
		assert.NotContains(t, b, "Lovelace")
	}
}

func TestPlainTextRoundTripsWrappedBodies(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 50; i++ {
		body := Body(rng, ada, charles)
		assert.Equal(t, body, PlainText(WrapHTML(body)))
	}
}

func TestPlainTextFromLetter(t *testing.T) {
	out, err := HTML(KindUpdate, Letter{From: ada, To: charles, Closing: "Best regards"})
	require.NoError(t, err)

	text := PlainText(out)
	assert.True(t, strings.HasPrefix(text, "Dear Charles Babbage,"), text)
	assert.Contains(t, text, "- Solved the halting problem (just kidding!)")
	assert.Contains(t, text, "I'm pleased to report")
	assert.NotContains(t, text, "<")
	assert.NotContains(t, text, "charset")
}
