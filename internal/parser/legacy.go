package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/card-statement-converter/internal/document"
	"github.com/insightdelivered/card-statement-converter/internal/logger"
	"github.com/insightdelivered/card-statement-converter/internal/models"
)

// LegacyParser handles the older statement layout: fixed-column tables under
// a "Domestic Transactions" or "International Transactions" heading.
//
//	Date | Description | ... | Amount (Cr suffix on credits) | ...
//	Date | Description | USD | 20.00 | Amount | ...
//
// Domestic rows always settle in the local currency. International rows
// print the currency code and forex amount side by side; the extractor
// breaks them into two cells at a fixed split offset. Rows read without
// that split keep a combined "USD 20.00" cell, and both forms are accepted.
type LegacyParser struct {
	opts Options
}

const (
	creditSuffix      = "Cr"
	nullToken         = "null"
	legacyRatePlaces  = 2
	minLegacyRowCells = 3
)

// Name returns the pipeline name used in logs.
func (p *LegacyParser) Name() string {
	return "legacy"
}

// Parse reads the domestic and international tables of doc. Domestic
// records come first in the result.
func (p *LegacyParser) Parse(ctx context.Context, doc document.Document) (*models.Statement, error) {
	log := logger.FromContext(ctx).With().Str("pipeline", string(models.PipelineLegacy)).Logger()
	stmt := &models.Statement{Pipeline: models.PipelineLegacy}

	var domestic, international []models.TransactionRecord
	var total runningTotal

	for _, page := range doc.Pages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := pageText(page)
		if err != nil {
			return nil, err
		}

		switch {
		case strings.Contains(text, domesticMarker):
			table := p.pageTable(page, document.TableSettings{}, log)
			for i, row := range table {
				if i == 0 || row.Value(0) == "" {
					continue
				}
				rec, defects := p.domesticRow(page.Number(), i, row)
				stmt.Defects = append(stmt.Defects, defects...)
				if rec == nil {
					continue
				}
				log.Debug().Int("page", page.Number()).Int("row", i).Strs("cells", cellStrings(row)).Msg("domestic row")
				total.addDomestic(*rec)
				domestic = append(domestic, *rec)
			}

		case strings.Contains(text, internationalMarker):
			settings := document.TableSettings{VerticalLines: []float64{p.opts.IntlSplitX}}
			table := p.pageTable(page, settings, log)
			for i, row := range table {
				if i == 0 || row.Value(0) == "" {
					continue
				}
				rec, defects := p.internationalRow(page.Number(), i, row)
				stmt.Defects = append(stmt.Defects, defects...)
				if rec == nil {
					continue
				}
				log.Debug().Int("page", page.Number()).Int("row", i).Strs("cells", cellStrings(row)).Msg("international row")
				total.addInternational(*rec)
				international = append(international, *rec)
			}

		default:
			stmt.PagesSkipped = append(stmt.PagesSkipped, page.Number())
		}
	}

	for _, d := range stmt.Defects {
		log.Warn().Int("page", d.Page).Int("row", d.Row).Str("column", d.Column).Str("raw", d.RawData).Msg(d.Message)
	}

	stmt.Records = append(domestic, international...)
	stmt.RunningTotal = total.value
	log.Info().
		Int("records", len(stmt.Records)).
		Str("total_due", formatTotal(total.value, p.opts.LocalCurrency)).
		Msg("legacy statement processed")

	return stmt, nil
}

// pageTable returns the main table of a page. Extraction failures only cost
// this page its records.
func (p *LegacyParser) pageTable(page document.Page, settings document.TableSettings, log zerolog.Logger) document.Table {
	tables, err := page.Tables(settings)
	if err != nil {
		log.Warn().Err(err).Int("page", page.Number()).Msg("table extraction failed, page contributes no records")
		return nil
	}
	return document.Largest(tables)
}

func (p *LegacyParser) domesticRow(pageNum, idx int, row document.Row) (*models.TransactionRecord, []models.RowError) {
	if len(row) < minLegacyRowCells {
		return nil, []models.RowError{shortRow(pageNum, idx, row)}
	}

	var defects []models.RowError
	date := legacyDate(row.Value(0))
	if date == "" {
		return nil, []models.RowError{{Page: pageNum, Row: idx, Column: models.ColDate, Message: "no date after removing placeholder", RawData: row.Value(0)}}
	}

	amountCell := settlementCell(row, 2)
	amount, txnType := legacyAmount(amountCell)
	if !amount.Valid {
		defects = append(defects, models.RowError{Page: pageNum, Row: idx, Column: models.ColAmount, Message: "no amount found", RawData: amountCell})
	}

	return &models.TransactionRecord{
		Date:        date,
		Description: strings.TrimSpace(row.Value(1)),
		Amount:      amount,
		Currency:    p.opts.LocalCurrency,
		Type:        txnType,
	}, defects
}

func (p *LegacyParser) internationalRow(pageNum, idx int, row document.Row) (*models.TransactionRecord, []models.RowError) {
	if len(row) < minLegacyRowCells {
		return nil, []models.RowError{shortRow(pageNum, idx, row)}
	}

	var defects []models.RowError
	date := legacyDate(row.Value(0))
	if date == "" {
		return nil, []models.RowError{{Page: pageNum, Row: idx, Column: models.ColDate, Message: "no date after removing placeholder", RawData: row.Value(0)}}
	}

	code, forexStr, next := currencyCells(row)
	currencyCell := strings.Join(cellStrings(row[2:next]), " ")

	amountCell := settlementCell(row, next)
	amount, txnType := legacyAmount(amountCell)
	if !amount.Valid {
		defects = append(defects, models.RowError{Page: pageNum, Row: idx, Column: models.ColAmount, Message: "no amount found", RawData: amountCell})
	}

	if !isCurrencyCode(code) {
		defects = append(defects, models.RowError{Page: pageNum, Row: idx, Column: models.ColCurrency, Message: "no currency code, using local currency", RawData: currencyCell})
		code = p.opts.LocalCurrency
	}

	forex, err := parseForexAmount(forexStr)
	if err != nil {
		defects = append(defects, models.RowError{Page: pageNum, Row: idx, Column: models.ColForexAmount, Message: err.Error(), RawData: currencyCell})
	}

	rate := forexRate(amount, forex, legacyRatePlaces)
	if !rate.Valid && forex.Valid && forex.Decimal.IsZero() {
		defects = append(defects, models.RowError{Page: pageNum, Row: idx, Column: models.ColForexRate, Message: "zero forex amount, rate left empty", RawData: currencyCell})
	}

	return &models.TransactionRecord{
		Date:        date,
		Description: strings.TrimSpace(row.Value(1)),
		Amount:      amount,
		Currency:    code,
		ForexAmount: forex,
		ForexRate:   rate,
		Type:        txnType,
	}, defects
}

// currencyCells returns the currency code and forex amount of an
// international row, and the index of the first cell after them. With the
// split offset in place cell 2 holds just the code and cell 3 the amount;
// otherwise cell 2 holds both.
func currencyCells(row document.Row) (code, amount string, next int) {
	if c := strings.TrimSpace(row.Value(2)); isCurrencyCode(c) && len(row) > 3 {
		return c, strings.TrimSpace(row.Value(3)), 4
	}
	code, amount = splitCurrencyCell(row.Value(2))
	return code, amount, 3
}

// splitCurrencyCell reads the combined currency cell of the international
// table by position: the code is the first three characters and the amount
// starts at the fifth. This matches exactly one statement template; when the
// layout changes, this is the function to change.
func splitCurrencyCell(cell string) (code, amount string) {
	r := []rune(cell)
	if len(r) <= 3 {
		return string(r), ""
	}
	code = string(r[:3])
	if len(r) > 4 {
		amount = string(r[4:])
	}
	return code, amount
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// parseForexAmount parses the sliced forex amount strictly: positional cells
// are not searched for a number.
func parseForexAmount(s string) (decimal.NullDecimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.NullDecimal{}, fmt.Errorf("missing forex amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid forex amount %q", s)
	}
	return decimal.NewNullDecimal(d.Abs()), nil
}

// settlementCell returns the settlement amount cell, looking only at cells
// from index from onwards. The template prints it second to last with a
// trailing column after it; rows where the extractor dropped that trailing
// column carry the amount in the last cell instead.
func settlementCell(row document.Row, from int) string {
	if i := len(row) - 2; i >= from && strings.TrimSpace(row.Value(i)) != "" {
		return row.Value(i)
	}
	if i := len(row) - 1; i >= from {
		return row.Value(i)
	}
	return ""
}

// legacyAmount reads a settlement amount cell such as "1,200.00 Cr".
func legacyAmount(cell string) (decimal.NullDecimal, models.TransactionType) {
	txnType := models.Debit
	if strings.Contains(cell, creditSuffix) {
		txnType = models.Credit
	}
	cleaned := strings.ReplaceAll(cell, creditSuffix, "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	return nullAmount(cleaned), txnType
}

// legacyDate strips the "null" placeholder some rows carry in the date cell.
func legacyDate(cell string) string {
	return strings.TrimSpace(strings.ReplaceAll(cell, nullToken, ""))
}

func shortRow(pageNum, idx int, row document.Row) models.RowError {
	return models.RowError{
		Page:    pageNum,
		Row:     idx,
		Message: fmt.Sprintf("row has %d cells, need at least %d", len(row), minLegacyRowCells),
		RawData: strings.Join(cellStrings(row), " | "),
	}
}

func cellStrings(row document.Row) []string {
	out := make([]string, len(row))
	for i := range row {
		out[i] = row.Value(i)
	}
	return out
}
