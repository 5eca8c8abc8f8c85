package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction. Amounts are always
// magnitudes; the sign lives here.
type TransactionType string

const (
	Debit  TransactionType = "Dr"
	Credit TransactionType = "Cr"
)

// TransactionRecord is a single statement line or row.
type TransactionRecord struct {
	Date        string              `json:"date"`
	Time        string              `json:"time,omitempty"` // HH:MM, modern layout only
	Description string              `json:"description"`
	Amount      decimal.NullDecimal `json:"amount"`
	Currency    string              `json:"currency"`
	ForexAmount decimal.NullDecimal `json:"forexAmount"`
	ForexRate   decimal.NullDecimal `json:"forexRate"`
	Type        TransactionType     `json:"type"`
}

// Pipeline selects which statement layout parser runs.
type Pipeline string

const (
	PipelineLegacy Pipeline = "legacy"
	PipelineModern Pipeline = "modern"
)

// Column names shared by the serializers and the record reader.
const (
	ColDate        = "date"
	ColTime        = "time"
	ColCurrency    = "currency"
	ColDescription = "description"
	ColForexAmount = "forex_amount"
	ColForexRate   = "forex_rate"
	ColAmount      = "amount"
	ColType        = "type"
)

var (
	legacyColumns = []string{ColDate, ColCurrency, ColDescription, ColForexAmount, ColForexRate, ColAmount, ColType}
	modernColumns = []string{ColDate, ColTime, ColCurrency, ColDescription, ColForexAmount, ColForexRate, ColAmount, ColType}
)

// Columns returns the output column order for the pipeline.
func (p Pipeline) Columns() []string {
	if p == PipelineLegacy {
		return append([]string(nil), legacyColumns...)
	}
	return append([]string(nil), modernColumns...)
}

// ParsePipeline accepts the pipeline names plus the "old"/"new" aliases the
// batch tool has always used.
func ParsePipeline(s string) (Pipeline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy", "old":
		return PipelineLegacy, nil
	case "modern", "new", "":
		return PipelineModern, nil
	default:
		return "", fmt.Errorf("unknown statement format %q. Supported: legacy (old), modern (new)", s)
	}
}

// RowError describes a row or line that could not be fully parsed.
// It never aborts a parse; the statement carries it for diagnostics.
type RowError struct {
	Page    int
	Row     int
	Column  string
	Message string
	RawData string
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("page %d, row %d: %s", e.Page, e.Row, e.Message)
	}
	return fmt.Sprintf("page %d, row %d, column %s: %s", e.Page, e.Row, e.Column, e.Message)
}

// Statement holds everything one parse invocation produced.
type Statement struct {
	Pipeline     Pipeline
	Records      []TransactionRecord
	RunningTotal decimal.Decimal // legacy diagnostic only, never serialized
	Defects      []RowError
	PagesSkipped []int
}
