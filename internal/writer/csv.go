package writer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/insightdelivered/card-statement-converter/internal/models"
)

// CSVWriter writes records as comma separated values with every field quoted
// and "\n" line endings.
type CSVWriter struct {
	Columns []string
}

// Write writes the header row and then one row per record, in order.
func (w *CSVWriter) Write(out io.Writer, records []models.TransactionRecord) error {
	bw := bufio.NewWriter(out)

	if err := writeQuotedRow(bw, w.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		if err := writeQuotedRow(bw, recordValues(rec, w.Columns)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

var fieldReplacer = strings.NewReplacer(`"`, `""`, "\r\n", "\n", "\r", "\n")

// writeQuotedRow writes fields quoted unconditionally. encoding/csv only
// quotes fields that need it.
func writeQuotedRow(bw *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := bw.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(`"` + fieldReplacer.Replace(f) + `"`); err != nil {
			return err
		}
	}
	return bw.WriteByte('\n')
}
