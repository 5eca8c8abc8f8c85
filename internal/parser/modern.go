package parser

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/card-statement-converter/internal/document"
	"github.com/insightdelivered/card-statement-converter/internal/logger"
	"github.com/insightdelivered/card-statement-converter/internal/models"
)

// ModernParser handles the current statement layout, where each table row
// carries one or more free-text transaction lines:
//
//	01/03/2024 | 14:32 COFFEE SHOP PURCHASE C 250.00
//	02/03/2024 | 09:10 AMAZON REFUND + C 1,000.00
//	05/03/2024 | 21:45 STEAM GAMES USD 20.00 C 1,660.00
//
// "C" precedes the settlement amount and a leading "+" marks a credit.
type ModernParser struct {
	opts Options
}

// Name returns the pipeline name used in logs.
func (p *ModernParser) Name() string {
	return "modern"
}

// Parse reads every transaction line of doc. Only text extraction errors
// are fatal.
func (p *ModernParser) Parse(ctx context.Context, doc document.Document) (*models.Statement, error) {
	log := logger.FromContext(ctx).With().Str("pipeline", string(models.PipelineModern)).Logger()
	stmt := &models.Statement{Pipeline: models.PipelineModern}

	for _, page := range doc.Pages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := pageText(page)
		if err != nil {
			return nil, err
		}

		if !isTransactionPage(text) {
			log.Debug().Int("page", page.Number()).Msg("skipping page without transaction indicator")
			stmt.PagesSkipped = append(stmt.PagesSkipped, page.Number())
			continue
		}

		records := p.parsePage(page, log)
		log.Debug().Int("page", page.Number()).Int("records", len(records)).Msg("page parsed")
		stmt.Records = append(stmt.Records, records...)
	}

	return stmt, nil
}

// isTransactionPage filters covers, summaries and disclaimers.
func isTransactionPage(text string) bool {
	return strings.Contains(text, domesticMarker) ||
		strings.Contains(text, internationalMarker) ||
		hasDate(text)
}

func (p *ModernParser) parsePage(page document.Page, log zerolog.Logger) []models.TransactionRecord {
	tables, err := page.Tables(document.TableSettings{})
	if err != nil {
		log.Warn().Err(err).Int("page", page.Number()).Msg("table extraction failed, page contributes no records")
		return nil
	}

	var records []models.TransactionRecord
	for _, table := range tables {
		for _, row := range table {
			for _, line := range rowLines(row) {
				if !hasDate(line) {
					continue
				}
				if rec, ok := p.parseLine(line); ok {
					records = append(records, rec)
				}
			}
		}
	}
	return records
}

// rowLines rebuilds the text of a table row. A cell holds several lines when
// the statement wraps it; line k of the row joins line k of every cell, so a
// wrapped description does not pull the amount away from its date.
func rowLines(row document.Row) []string {
	var cells [][]string
	depth := 0
	for _, cell := range row {
		if cell == nil {
			continue
		}
		ls := splitLines(strings.TrimSpace(*cell))
		cells = append(cells, ls)
		depth = max(depth, len(ls))
	}

	var out []string
	for k := 0; k < depth; k++ {
		parts := make([]string, 0, len(cells))
		for _, ls := range cells {
			if k < len(ls) {
				if v := strings.TrimSpace(ls[k]); v != "" {
					parts = append(parts, v)
				}
			}
		}
		if line := strings.Join(parts, " "); line != "" {
			out = append(out, line)
		}
	}
	return out
}
