package parser

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/card-statement-converter/internal/models"
)

// runningTotal approximates the amount due on a legacy statement. It is only
// logged for the operator and never written out.
type runningTotal struct {
	value decimal.Decimal
}

// addDomestic adds debits and subtracts credits.
func (t *runningTotal) addDomestic(rec models.TransactionRecord) {
	if !rec.Amount.Valid {
		return
	}
	if rec.Type == models.Credit {
		t.value = t.value.Sub(rec.Amount.Decimal)
		return
	}
	t.value = t.value.Add(rec.Amount.Decimal)
}

// addInternational uses the opposite polarity: the international section
// prints credits as reductions the other way round from the domestic one.
func (t *runningTotal) addInternational(rec models.TransactionRecord) {
	if !rec.Amount.Valid {
		return
	}
	if rec.Type == models.Credit {
		t.value = t.value.Add(rec.Amount.Decimal)
		return
	}
	t.value = t.value.Sub(rec.Amount.Decimal)
}

// formatTotal renders a total in the given currency, e.g. "₹1,234.50".
func formatTotal(total decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return total.StringFixed(2) + " " + code
	}
	minor := total.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
