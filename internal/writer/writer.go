// Package writer serializes transaction records to CSV and XLSX.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/card-statement-converter/internal/models"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx"; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown output format %q. Supported: csv, xlsx", s)
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type used when serving the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Writer serializes records with a fixed column order.
type Writer interface {
	Write(out io.Writer, records []models.TransactionRecord) error
}

// New returns the writer for format with the given column order.
func New(format Format, columns []string) (Writer, error) {
	switch format {
	case FormatCSV:
		return &CSVWriter{Columns: columns}, nil
	case FormatXLSX:
		return &XLSXWriter{Columns: columns}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// WriteToFile writes records to path through a temporary file in the same
// directory, so a failed write never leaves a partial file behind. Missing
// parent directories are created.
func WriteToFile(w Writer, path string, records []models.TransactionRecord) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := w.Write(tmp, records); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place at %q: %w", path, err)
	}
	return nil
}

// recordValues returns the serialized fields of rec in column order.
func recordValues(rec models.TransactionRecord, columns []string) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		switch col {
		case models.ColDate:
			row[i] = rec.Date
		case models.ColTime:
			row[i] = rec.Time
		case models.ColCurrency:
			row[i] = rec.Currency
		case models.ColDescription:
			row[i] = rec.Description
		case models.ColForexAmount:
			row[i] = formatDecimal(rec.ForexAmount)
		case models.ColForexRate:
			row[i] = formatDecimal(rec.ForexRate)
		case models.ColAmount:
			row[i] = formatDecimal(rec.Amount)
		case models.ColType:
			row[i] = string(rec.Type)
		}
	}
	return row
}

// formatDecimal writes d at the scale it was parsed or rounded at, so 250.00
// stays 250.00 and a rate rounded to 4 places keeps all four.
func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	if exp := d.Decimal.Exponent(); exp < 0 {
		return d.Decimal.StringFixed(-exp)
	}
	return d.Decimal.StringFixed(0)
}
