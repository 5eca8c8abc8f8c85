package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/card-statement-converter/internal/models"
)

// Amount markers on modern statement lines. They are searched from the
// right, so a description containing " C" before the real marker still
// splits correctly; one after it does not.
const (
	creditMarker = "+ C"
	debitMarker  = " C"
)

// modernRatePlaces is the rounding applied to forex rates on modern lines.
const modernRatePlaces = 4

// parseLine converts one line that is known to contain a date into a record.
// ok is false only for blank lines.
func (p *ModernParser) parseLine(line string) (rec models.TransactionRecord, ok bool) {
	if strings.TrimSpace(line) == "" {
		return rec, false
	}

	var date, tm, rest string
	if m := dateTimeAnchor.FindStringSubmatch(line); m != nil {
		date, tm, rest = m[1], m[2], m[3]
	} else {
		loc := datePattern.FindStringIndex(line)
		if loc == nil {
			return rec, false
		}
		date = line[loc[0]:loc[1]]
		rest = line[loc[1]:]
		tm = timePattern.FindString(line)
	}
	rest = strings.TrimSpace(rest)

	txnType := models.Debit
	var amountStr string
	if i := strings.LastIndex(rest, creditMarker); i >= 0 {
		txnType = models.Credit
		amountStr = rest[i+len(creditMarker):]
		rest = strings.TrimSpace(rest[:i])
	} else if i := strings.LastIndex(rest, debitMarker); i >= 0 {
		amountStr = rest[i+len(debitMarker):]
		rest = strings.TrimSpace(rest[:i])
	}

	rec = models.TransactionRecord{
		Date:        date,
		Time:        tm,
		Description: rest,
		Amount:      nullAmount(amountStr),
		Currency:    p.opts.LocalCurrency,
		Type:        txnType,
	}

	if fx, found := detectForex(rest); found {
		rec.Currency = fx.Currency
		rec.ForexAmount = decimal.NewNullDecimal(fx.Amount)
		rec.Description = fx.Description
	}

	rec.ForexRate = forexRate(rec.Amount, rec.ForexAmount, modernRatePlaces)
	return rec, true
}

// forexRate returns amount/forex rounded to places, or an invalid value when
// either side is missing or the forex amount is zero.
func forexRate(amount, forex decimal.NullDecimal, places int32) decimal.NullDecimal {
	if !amount.Valid || !forex.Valid || forex.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount.Decimal.Div(forex.Decimal).Round(places))
}
