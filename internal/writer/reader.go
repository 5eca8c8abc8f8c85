package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/card-statement-converter/internal/models"
)

// csvRow mirrors a serialized record. Every field is a string so empty
// cells survive the round trip.
type csvRow struct {
	Date        string `csv:"date"`
	Time        string `csv:"time"`
	Currency    string `csv:"currency"`
	Description string `csv:"description"`
	ForexAmount string `csv:"forex_amount"`
	ForexRate   string `csv:"forex_rate"`
	Amount      string `csv:"amount"`
	Type        string `csv:"type"`
}

// ReadCSV reads records written by CSVWriter. It also reports which pipeline
// schema the header matches: a time column means the modern layout.
func ReadCSV(in io.Reader) ([]models.TransactionRecord, models.Pipeline, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read CSV: %w", err)
	}

	pipeline := models.PipelineLegacy
	header, _, _ := strings.Cut(string(data), "\n")
	if strings.Contains(header, `"`+models.ColTime+`"`) || hasBareColumn(header, models.ColTime) {
		pipeline = models.PipelineModern
	}

	var rows []*csvRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, "", fmt.Errorf("failed to parse CSV: %w", err)
	}

	records := make([]models.TransactionRecord, 0, len(rows))
	for i, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, "", fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, pipeline, nil
}

func hasBareColumn(header, name string) bool {
	for _, col := range strings.Split(strings.TrimSpace(header), ",") {
		if strings.TrimSpace(col) == name {
			return true
		}
	}
	return false
}

func (r *csvRow) record() (models.TransactionRecord, error) {
	rec := models.TransactionRecord{
		Date:        r.Date,
		Time:        r.Time,
		Currency:    r.Currency,
		Description: r.Description,
		Type:        models.TransactionType(r.Type),
	}

	var err error
	if rec.Amount, err = parseDecimal(models.ColAmount, r.Amount); err != nil {
		return rec, err
	}
	if rec.ForexAmount, err = parseDecimal(models.ColForexAmount, r.ForexAmount); err != nil {
		return rec, err
	}
	if rec.ForexRate, err = parseDecimal(models.ColForexRate, r.ForexRate); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseDecimal(column, s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("column %s: invalid decimal %q", column, s)
	}
	return decimal.NewNullDecimal(d), nil
}
