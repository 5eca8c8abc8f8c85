// Package extractor opens statement PDFs and exposes their pages as text and
// tables for the parsers.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/card-statement-converter/internal/document"
)

// DefaultCellGap is the horizontal gap, in points, that starts a new table cell.
const DefaultCellGap = 12.0

// Options tunes how page geometry is turned into tables.
type Options struct {
	CellGap float64
}

// Document is a PDF statement opened with ledongthuc/pdf.
type Document struct {
	pages  []*Page
	closer io.Closer
}

// Page is one PDF page. Its content stream is decoded on first use.
type Page struct {
	num     int
	src     pdf.Page
	cellGap float64

	once   sync.Once
	glyphs []glyph
	rules  []float64
	err    error
}

// OpenFile opens a statement from disk. The caller must Close the document.
func OpenFile(path, password string, opts Options) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	doc, err := Open(f, info.Size(), password, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	doc.closer = f
	return doc, nil
}

// Open reads the document structure from r and unlocks it with password.
// An empty password still opens documents that are encrypted with an empty
// user password.
func Open(r io.ReaderAt, size int64, password string, opts Options) (doc *Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("%w: PDF library crashed: %v", document.ErrUnreadable, rec)
		}
	}()

	if opts.CellGap <= 0 {
		opts.CellGap = DefaultCellGap
	}

	reader, err := pdf.NewReaderEncrypted(r, size, passwordOnce(password))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, document.ErrInvalidPassword
		}
		return nil, fmt.Errorf("%w: %v", document.ErrUnreadable, err)
	}

	n := reader.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("%w: PDF has no pages", document.ErrUnreadable)
	}

	doc = &Document{pages: make([]*Page, 0, n)}
	for i := 1; i <= n; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		doc.pages = append(doc.pages, &Page{num: i, src: p, cellGap: opts.CellGap})
	}
	return doc, nil
}

// passwordOnce offers the password a single time; the library keeps asking
// until it gets an empty string.
func passwordOnce(password string) func() string {
	offered := false
	return func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	}
}

// Pages returns the pages in document order.
func (d *Document) Pages() []document.Page {
	out := make([]document.Page, len(d.pages))
	for i, p := range d.pages {
		out[i] = p
	}
	return out
}

// Close releases the file opened by OpenFile, if any.
func (d *Document) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Number is the 1-based page number.
func (p *Page) Number() int { return p.num }

// Text returns the page as plain text, one line per baseline.
func (p *Page) Text() (string, error) {
	if err := p.load(); err != nil {
		return "", err
	}
	lo := layout{cellGap: p.cellGap}
	return text(lo.lines(p.glyphs)), nil
}

// Tables splits cells at the page's vertical ruling lines and at any extra
// offsets in settings.
func (p *Page) Tables(settings document.TableSettings) ([]document.Table, error) {
	if err := p.load(); err != nil {
		return nil, err
	}
	splits := append(append([]float64(nil), p.rules...), settings.VerticalLines...)
	lo := layout{cellGap: p.cellGap, splits: splits}
	return lo.tables(lo.lines(p.glyphs)), nil
}

func (p *Page) load() error {
	p.once.Do(func() {
		p.glyphs, p.rules, p.err = readContent(p.num, p.src)
	})
	return p.err
}

func readContent(num int, src pdf.Page) (glyphs []glyph, rules []float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: page %d content: %v", document.ErrUnreadable, num, rec)
		}
	}()

	content := src.Content()
	glyphs = make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	for _, r := range content.Rect {
		if x, ok := verticalRule(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y); ok {
			rules = append(rules, x)
		}
	}
	return glyphs, rules, nil
}

// verticalRule reports whether a filled rectangle is a thin vertical line,
// the way statements draw column separators, and returns its x centre.
func verticalRule(x0, y0, x1, y1 float64) (float64, bool) {
	w, h := x1-x0, y1-y0
	if w < 0 {
		w = -w
	}
	if h < 0 {
		h = -h
	}
	if w > 2 || h < 10 {
		return 0, false
	}
	return (x0 + x1) / 2, true
}
