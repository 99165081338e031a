package render

import (
	"fmt"
	"html/template"
	"math/rand"
	"time"

	"github.com/Rasalas/msg-reader/pkgs/persona"
)

// LineItem is one invoice row. Rate is in pence.
type LineItem struct {
	Description string
	Quantity    int
	Rate        int64
}

// Amount is Quantity × Rate, in pence.
func (li LineItem) Amount() int64 {
	return int64(li.Quantity) * li.Rate
}

// Invoice is the data rendered by the invoice template.
type Invoice struct {
	Number  string
	Date    time.Time
	From    persona.Persona
	To      persona.Persona
	Items   []LineItem
	LogoSrc template.URL
}

// Total is the sum of the line item amounts, in pence.
func (inv Invoice) Total() int64 {
	var total int64
	for _, li := range inv.Items {
		total += li.Amount()
	}
	return total
}

// DefaultLineItems returns the consulting line items billed by the mock
// invoice.
func DefaultLineItems() []LineItem {
	return []LineItem{
		{Description: "Analytical Engine Consultation", Quantity: 5, Rate: 15000},
		{Description: "Algorithm Development", Quantity: 3, Rate: 20000},
		{Description: "Punch Card Programming", Quantity: 10, Rate: 7500},
	}
}

// NewInvoice builds an invoice with a random INV-nnnn number.
func NewInvoice(rng *rand.Rand, from, to persona.Persona, date time.Time) Invoice {
	return Invoice{
		Number: fmt.Sprintf("INV-%d", 1000+rng.Intn(9000)),
		Date:   date,
		From:   from,
		To:     to,
		Items:  DefaultLineItems(),
	}
}
