package verify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	lineItemRow = regexp.MustCompile(`(?s)<tr class="line-item">(.*?)</tr>`)
	cell        = regexp.MustCompile(`(?s)<td[^>]*>(.*?)</td>`)
	totalCell   = regexp.MustCompile(`(?s)<td class="total"[^>]*>(?:<strong>)?([^<]*)`)
	money       = regexp.MustCompile(`^(-?)£([\d,]+)(?:\.(\d{1,2}))?$`)
)

// checkInvoice verifies that every line item amount equals quantity × rate
// and that the amounts add up to the displayed total. HTML without line
// items is not an invoice and passes.
func checkInvoice(html string) error {
	rows := lineItemRow.FindAllStringSubmatch(html, -1)
	if len(rows) == 0 {
		return nil
	}

	var sum int64
	for i, row := range rows {
		cells := cell.FindAllStringSubmatch(row[1], -1)
		if len(cells) != 4 {
			return fmt.Errorf("invoice line %d: want 4 cells, got %d", i+1, len(cells))
		}
		qty, err := strconv.ParseInt(strings.TrimSpace(cells[1][1]), 10, 64)
		if err != nil {
			return fmt.Errorf("invoice line %d: quantity: %w", i+1, err)
		}
		rate, err := ParsePence(cells[2][1])
		if err != nil {
			return fmt.Errorf("invoice line %d: rate: %w", i+1, err)
		}
		amount, err := ParsePence(cells[3][1])
		if err != nil {
			return fmt.Errorf("invoice line %d: amount: %w", i+1, err)
		}
		if qty*rate != amount {
			return fmt.Errorf("invoice line %d: %d × %d != %d", i+1, qty, rate, amount)
		}
		sum += amount
	}

	m := totalCell.FindStringSubmatch(html)
	if m == nil {
		return fmt.Errorf("invoice has line items but no total")
	}
	total, err := ParsePence(m[1])
	if err != nil {
		return fmt.Errorf("invoice total: %w", err)
	}
	if sum != total {
		return fmt.Errorf("invoice total mismatch: line items sum to %d pence, total shows %d", sum, total)
	}
	return nil
}

// ParsePence parses an amount formatted like "£1,234.56" into pence.
func ParsePence(s string) (int64, error) {
	m := money.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("not a currency amount: %q", s)
	}
	pounds, err := strconv.ParseInt(strings.ReplaceAll(m[2], ",", ""), 10, 64)
	if err != nil {
		return 0, err
	}
	frac := m[3]
	if len(frac) == 1 {
		frac += "0"
	}
	var pence int64
	if frac != "" {
		pence, _ = strconv.ParseInt(frac, 10, 64)
	}
	total := pounds*100 + pence
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}
