package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/card-statement-converter/internal/models"
)

func record(amount string, typ models.TransactionType) models.TransactionRecord {
	return models.TransactionRecord{Amount: decimal.NewNullDecimal(dec(amount)), Type: typ}
}

func TestRunningTotal(t *testing.T) {
	var total runningTotal

	total.addDomestic(record("100.00", models.Debit))
	total.addDomestic(record("30.00", models.Credit))
	assert.True(t, total.value.Equal(dec("70")))

	total.addInternational(record("50.00", models.Debit))
	total.addInternational(record("5.00", models.Credit))
	assert.True(t, total.value.Equal(dec("25")))

	total.addDomestic(models.TransactionRecord{Type: models.Debit})
	assert.True(t, total.value.Equal(dec("25")))
}

func TestFormatTotal(t *testing.T) {
	assert.Contains(t, formatTotal(dec("1234.5"), "INR"), "1,234.50")
	assert.Equal(t, "12.30 XYZ", formatTotal(dec("12.3"), "XYZ"))
}
