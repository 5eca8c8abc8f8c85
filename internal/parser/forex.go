package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// forexPattern matches a trailing "USD 20.00" style fragment.
var forexPattern = regexp.MustCompile(`([A-Z]{3})\s+(\d[\d,]*(?:\.\d{1,2})?)\s*$`)

type forexFragment struct {
	Currency    string
	Amount      decimal.Decimal
	Description string // input with the fragment removed
}

// detectForex extracts at most one foreign currency fragment from the end of
// a description.
func detectForex(description string) (forexFragment, bool) {
	loc := forexPattern.FindStringSubmatchIndex(description)
	if loc == nil {
		return forexFragment{}, false
	}
	amount, ok := normalizeAmount(description[loc[4]:loc[5]])
	if !ok {
		return forexFragment{}, false
	}
	return forexFragment{
		Currency:    description[loc[2]:loc[3]],
		Amount:      amount,
		Description: strings.TrimSpace(description[:loc[0]] + description[loc[1]:]),
	}, true
}
