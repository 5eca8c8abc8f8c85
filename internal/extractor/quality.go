package extractor

import (
	"strings"
	"unicode"
)

// statementWords appear on practically every card statement. Text with none
// of them is likely an image-based scan or an undecodable font.
var statementWords = []string{
	"statement", "transaction", "amount", "date", "card", "payment",
	"credit", "debit", "total", "due", "limit", "balance",
}

// textQuality returns the share of printable ASCII characters in pages,
// between 0 and 1. Identity-encoded fonts decode to runs of accented or
// private-use runes, which this rejects.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < unicode.MaxASCII && (unicode.IsPrint(r) || unicode.IsSpace(r)) || r == '₹' {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// LooksReadable reports whether the extracted page texts are real statement
// text: more than a few characters, mostly printable, and containing at least
// one word every statement carries.
func LooksReadable(pages []string) bool {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	if n <= 50 || textQuality(pages) <= 0.6 {
		return false
	}

	combined := strings.ToLower(strings.Join(pages, " "))
	for _, w := range statementWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}
