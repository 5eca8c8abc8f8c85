package parser

import (
	"regexp"
	"strings"
)

// Section markers printed above the transaction tables.
const (
	domesticMarker      = "Domestic Transactions"
	internationalMarker = "International Transactions"
)

var (
	// DD/MM/YYYY, the only date format these statements use.
	datePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	// HH:MM
	timePattern = regexp.MustCompile(`\d{2}:\d{2}`)
	// "DD/MM/YYYY | HH:MM rest" as printed by the modern layout.
	dateTimeAnchor = regexp.MustCompile(`^\s*(\d{2}/\d{2}/\d{4})\s*\|\s*(\d{2}:\d{2})\s*(.*)$`)
)

// hasDate reports whether s contains a date-like substring.
func hasDate(s string) bool {
	return datePattern.MatchString(s)
}

// splitLines splits on any newline convention.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
