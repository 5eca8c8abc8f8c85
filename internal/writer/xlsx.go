package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/card-statement-converter/internal/models"
)

// SheetName is the worksheet records are written to.
const SheetName = "Transactions"

// XLSXWriter writes records to a single-sheet workbook. Cells hold the same
// strings the CSV would, so amounts keep their printed scale.
type XLSXWriter struct {
	Columns []string
}

func (w *XLSXWriter) Write(out io.Writer, records []models.TransactionRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := w.setRow(f, 1, w.Columns); err != nil {
		return fmt.Errorf("failed to write XLSX header: %w", err)
	}
	for i, rec := range records {
		if err := w.setRow(f, i+2, recordValues(rec, w.Columns)); err != nil {
			return fmt.Errorf("failed to write XLSX row %d: %w", i+1, err)
		}
	}

	if len(w.Columns) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(w.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

func (w *XLSXWriter) setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &cells)
}
