package extractor

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-converter/internal/models"
	"github.com/insightdelivered/card-statement-converter/internal/parser"
)

// loadedPage builds a page whose content is already decoded into glyphs.
func loadedPage(num int, glyphs []glyph) *Page {
	p := &Page{num: num, cellGap: DefaultCellGap, glyphs: glyphs}
	p.once.Do(func() {})
	return p
}

func parse(t *testing.T, pipeline models.Pipeline, pages ...*Page) *models.Statement {
	t.Helper()
	p, err := parser.New(pipeline, parser.DefaultOptions())
	require.NoError(t, err)
	stmt, err := p.Parse(context.Background(), &Document{pages: pages})
	require.NoError(t, err)
	return stmt
}

func domesticPage(num int) *Page {
	return loadedPage(num, page(
		word(50, 760, "Domestic Transactions"),
		word(50, 740, "Date"), word(120, 740, "Transaction Description"), word(300, 740, "Amount (in Rs.)"), word(420, 740, "Points"),
		word(50, 725, "01/02/2024"), word(120, 725, "GROCERY MART"), word(300, 725, "2,345.60"), word(420, 725, "23"),
		word(120, 713, "BANGALORE"),
		word(50, 701, "02/02/2024"), word(120, 701, "CAFE"), word(300, 701, "120.00"), word(420, 701, "1"),
		word(50, 689, "03/02/2024"), word(120, 689, "PAYMENT RECEIVED"), word(300, 689, "5,000.00 Cr"), word(420, 689, "0"),
		word(50, 650, "Page 1 of 2"),
	))
}

// internationalPage puts the currency code left of the default split offset
// and the forex amount right of it.
func internationalPage(num int) *Page {
	return loadedPage(num, page(
		word(50, 760, "International Transactions"),
		word(50, 740, "Date"), word(120, 740, "Transaction Details"), word(470, 740, "Amount (in Rs.)"),
		word(50, 725, "10/02/2024"), word(120, 725, "STEAM GAMES"), word(360, 725, "USD"), word(385, 725, "20.00"), word(470, 725, "1,660.00"),
		word(50, 710, "11/02/2024"), word(120, 710, "HOTEL REFUND"), word(360, 710, "EUR"), word(385, 710, "100.00"), word(470, 710, "9,012.34 Cr"),
		word(50, 680, "Page 2 of 2"),
	))
}

func TestStatement_LegacyDomesticWrappedDescription(t *testing.T) {
	stmt := parse(t, models.PipelineLegacy, domesticPage(1))

	require.Len(t, stmt.Records, 3)
	assert.Empty(t, stmt.Defects)

	first := stmt.Records[0]
	assert.Equal(t, "01/02/2024", first.Date)
	assert.Equal(t, "GROCERY MART\nBANGALORE", first.Description)
	assert.True(t, first.Amount.Decimal.Equal(decimal.RequireFromString("2345.60")))

	assert.Equal(t, "02/02/2024", stmt.Records[1].Date)
	assert.Equal(t, "CAFE", stmt.Records[1].Description)

	assert.Equal(t, "03/02/2024", stmt.Records[2].Date)
	assert.Equal(t, models.Credit, stmt.Records[2].Type)

	// 2345.60 + 120.00 - 5000.00
	assert.True(t, stmt.RunningTotal.Equal(decimal.RequireFromString("-2534.40")), "got %s", stmt.RunningTotal)
}

func TestStatement_LegacyInternationalSplit(t *testing.T) {
	stmt := parse(t, models.PipelineLegacy, internationalPage(1))

	require.Len(t, stmt.Records, 2)
	assert.Empty(t, stmt.Defects)

	rec := stmt.Records[0]
	assert.Equal(t, "STEAM GAMES", rec.Description)
	assert.Equal(t, "USD", rec.Currency)
	require.True(t, rec.ForexAmount.Valid)
	assert.True(t, rec.ForexAmount.Decimal.Equal(decimal.RequireFromString("20.00")))
	require.True(t, rec.Amount.Valid)
	assert.True(t, rec.Amount.Decimal.Equal(decimal.RequireFromString("1660.00")))
	require.True(t, rec.ForexRate.Valid)
	assert.Equal(t, "83.00", rec.ForexRate.Decimal.StringFixed(2))
	assert.Equal(t, models.Debit, rec.Type)

	rec = stmt.Records[1]
	assert.Equal(t, "EUR", rec.Currency)
	assert.True(t, rec.ForexAmount.Decimal.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, "90.12", rec.ForexRate.Decimal.StringFixed(2))
	assert.Equal(t, models.Credit, rec.Type)
}

func TestStatement_LegacyDocument(t *testing.T) {
	cover := loadedPage(1, page(word(50, 700, "Your card statement")))
	stmt := parse(t, models.PipelineLegacy, cover, internationalPage(2), domesticPage(3))

	require.Len(t, stmt.Records, 5)
	assert.Equal(t, "GROCERY MART\nBANGALORE", stmt.Records[0].Description)
	assert.Equal(t, "STEAM GAMES", stmt.Records[3].Description)
	assert.Equal(t, []int{1}, stmt.PagesSkipped)

	// -2534.40 domestic, then -1660.00 + 9012.34 international
	assert.True(t, stmt.RunningTotal.Equal(decimal.RequireFromString("4817.94")), "got %s", stmt.RunningTotal)
}

func TestStatement_Modern(t *testing.T) {
	pg := loadedPage(1, page(
		word(50, 740, "Transaction Details"),
		word(50, 725, "01/03/2024 | 14:32"), word(200, 725, "COFFEE SHOP PURCHASE"), word(400, 725, "C 250.00"),
		word(200, 713, "BANGALORE"),
		word(50, 701, "02/03/2024 | 09:10"), word(200, 701, "AMAZON REFUND"), word(400, 701, "+ C 1,000.00"),
		word(50, 689, "05/03/2024 | 21:45"), word(200, 689, "STEAM GAMES USD 20.00"), word(400, 689, "C 1,660.00"),
	))
	summary := loadedPage(2, page(word(50, 700, "Rewards summary")))

	stmt := parse(t, models.PipelineModern, pg, summary)

	require.Len(t, stmt.Records, 3)
	assert.Equal(t, []int{2}, stmt.PagesSkipped)

	rec := stmt.Records[0]
	assert.Equal(t, "01/03/2024", rec.Date)
	assert.Equal(t, "14:32", rec.Time)
	assert.Equal(t, "COFFEE SHOP PURCHASE", rec.Description)
	assert.True(t, rec.Amount.Decimal.Equal(decimal.RequireFromString("250.00")))
	assert.Equal(t, models.Debit, rec.Type)

	assert.Equal(t, models.Credit, stmt.Records[1].Type)
	assert.True(t, stmt.Records[1].Amount.Decimal.Equal(decimal.RequireFromString("1000.00")))

	rec = stmt.Records[2]
	assert.Equal(t, "USD", rec.Currency)
	assert.True(t, rec.ForexAmount.Decimal.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, "83.0000", rec.ForexRate.Decimal.StringFixed(4))
}
