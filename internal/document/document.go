// Package document defines the page/table view of a statement that the
// parsers consume. The PDF-backed implementation lives in package extractor.
package document

import "errors"

var (
	// ErrInvalidPassword is returned when an encrypted document cannot be
	// unlocked with the supplied password (or none was supplied).
	ErrInvalidPassword = errors.New("document is encrypted: invalid or missing password")
	// ErrUnreadable is returned for corrupt or unsupported documents.
	ErrUnreadable = errors.New("document could not be read")
)

// Row is one table row. A nil cell means the extractor found nothing there,
// which is different from an empty string.
type Row []*string

// Table is an ordered list of rows.
type Table []Row

// TableSettings tunes table extraction.
type TableSettings struct {
	// VerticalLines are extra x offsets (in points) at which cells are always split.
	VerticalLines []float64
}

// Page exposes the extracted content of one page.
type Page interface {
	// Number is the 1-based page number.
	Number() int
	Text() (string, error)
	Tables(settings TableSettings) ([]Table, error)
}

// Document is an opened, already decrypted statement.
type Document interface {
	Pages() []Page
	Close() error
}

// Cell returns a pointer to s, for building rows.
func Cell(s string) *string {
	return &s
}

// NewRow builds a row where every cell is present.
func NewRow(cells ...string) Row {
	row := make(Row, len(cells))
	for i, c := range cells {
		row[i] = Cell(c)
	}
	return row
}

// Value returns the cell contents, or "" for a nil cell.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r) || r[i] == nil {
		return ""
	}
	return *r[i]
}

// Largest returns the table with the most rows, or nil when there are none.
func Largest(tables []Table) Table {
	var best Table
	for _, t := range tables {
		if len(t) > len(best) {
			best = t
		}
	}
	return best
}
