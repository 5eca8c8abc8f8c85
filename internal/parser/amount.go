package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern matches a digit followed by digits and grouping commas, with
// an optional one or two digit fraction. Commas are accepted anywhere after
// the first digit so lakh grouping (1,00,000.00) parses too.
var amountPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d{1,2})?`)

// normalizeAmount returns the first amount found in s. Currency codes, Cr/Dr
// markers and whitespace around the number are ignored. ok is false when s
// holds no number at all.
func normalizeAmount(s string) (amount decimal.Decimal, ok bool) {
	m := amountPattern.FindString(s)
	if m == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// nullAmount wraps normalizeAmount for record fields.
func nullAmount(s string) decimal.NullDecimal {
	d, ok := normalizeAmount(s)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}
