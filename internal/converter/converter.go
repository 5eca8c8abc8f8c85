// Package converter runs whole conversions: open a statement, parse it with
// the selected pipeline and write the records out.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/card-statement-converter/internal/config"
	"github.com/insightdelivered/card-statement-converter/internal/document"
	"github.com/insightdelivered/card-statement-converter/internal/extractor"
	"github.com/insightdelivered/card-statement-converter/internal/logger"
	"github.com/insightdelivered/card-statement-converter/internal/models"
	"github.com/insightdelivered/card-statement-converter/internal/parser"
	"github.com/insightdelivered/card-statement-converter/internal/writer"
)

// OpenFunc opens a statement document from raw bytes.
type OpenFunc func(r io.ReaderAt, size int64, password string) (document.Document, error)

// Converter holds the settings shared by every conversion. It is safe for
// concurrent use; each call owns its document and parser.
type Converter struct {
	parserOpts parser.Options
	workers    int
	open       OpenFunc
}

// New builds a Converter from cfg using the PDF extractor.
func New(cfg *config.Config) *Converter {
	extractOpts := extractor.Options{CellGap: cfg.Statement.CellGap}
	return &Converter{
		parserOpts: parser.OptionsFromConfig(cfg.Statement),
		workers:    cfg.Workers,
		open: func(r io.ReaderAt, size int64, password string) (document.Document, error) {
			return extractor.Open(r, size, password, extractOpts)
		},
	}
}

// WithOpener replaces the document opener, e.g. with an in-memory one.
func (c *Converter) WithOpener(open OpenFunc) *Converter {
	cp := *c
	cp.open = open
	return &cp
}

// Job describes one file conversion.
type Job struct {
	Input    string
	Output   string // defaults to Input with the format's extension
	Password string // defaults to PasswordFromFilename(Input)
	Pipeline models.Pipeline
	Format   writer.Format
}

// Result is what a successful conversion produced.
type Result struct {
	Input     string
	Output    string
	Statement *models.Statement
}

// ConvertFile converts one statement on disk. Nothing is written when the
// document cannot be opened or parsed.
func (c *Converter) ConvertFile(ctx context.Context, job Job) (*Result, error) {
	if job.Format == "" {
		job.Format = writer.FormatCSV
	}
	if job.Output == "" {
		job.Output = OutputPath(job.Input, filepath.Dir(job.Input), job.Format)
	}
	if job.Password == "" {
		job.Password = PasswordFromFilename(job.Input)
	}

	log := logger.FromContext(ctx).With().Str("file", filepath.Base(job.Input)).Logger()
	ctx = logger.WithContext(ctx, log)

	f, err := os.Open(job.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", job.Input, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", job.Input, err)
	}

	stmt, err := c.parse(ctx, f, info.Size(), job.Password, job.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", job.Input, err)
	}

	w, err := writer.New(job.Format, job.Pipeline.Columns())
	if err != nil {
		return nil, err
	}
	if err := writer.WriteToFile(w, job.Output, stmt.Records); err != nil {
		return nil, err
	}

	log.Info().
		Str("output", job.Output).
		Int("records", len(stmt.Records)).
		Int("defects", len(stmt.Defects)).
		Msg("statement converted")

	return &Result{Input: job.Input, Output: job.Output, Statement: stmt}, nil
}

// ConvertReader parses the document in r and writes the serialized records to
// out. The API uses it to convert uploads without touching disk.
func (c *Converter) ConvertReader(ctx context.Context, r io.ReaderAt, size int64, password string,
	pipeline models.Pipeline, format writer.Format, out io.Writer) (*models.Statement, error) {
	stmt, err := c.parse(ctx, r, size, password, pipeline)
	if err != nil {
		return nil, err
	}

	w, err := writer.New(format, pipeline.Columns())
	if err != nil {
		return nil, err
	}
	if err := w.Write(out, stmt.Records); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (c *Converter) parse(ctx context.Context, r io.ReaderAt, size int64, password string, pipeline models.Pipeline) (*models.Statement, error) {
	if pipeline == "" {
		pipeline = models.PipelineModern
	}
	p, err := parser.New(pipeline, c.parserOpts)
	if err != nil {
		return nil, err
	}

	doc, err := c.open(r, size, password)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	stmt, err := p.Parse(ctx, doc)
	if err != nil {
		return nil, err
	}

	if len(stmt.Records) == 0 {
		warnIfUnreadable(logger.FromContext(ctx), doc)
	}
	return stmt, nil
}

// warnIfUnreadable explains an empty result caused by a scanned or
// undecodable document, which no pipeline can read.
func warnIfUnreadable(log zerolog.Logger, doc document.Document) {
	var texts []string
	for _, page := range doc.Pages() {
		text, err := page.Text()
		if err != nil {
			return
		}
		texts = append(texts, text)
	}
	if !extractor.LooksReadable(texts) {
		log.Warn().Msg("no records and no readable text; the statement may be image-based")
	}
}

// PasswordFromFilename returns the part of the file name after the last "-"
// and before the extension: "statement-abc123.pdf" gives "abc123". Names
// without a "-" carry no password.
func PasswordFromFilename(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndex(base, "-")
	if i < 0 {
		return ""
	}
	suffix := base[i+1:]
	if dot := strings.Index(suffix, "."); dot >= 0 {
		suffix = suffix[:dot]
	}
	return strings.TrimSpace(suffix)
}

// OutputPath places input's base name, with the format's extension, in dir.
func OutputPath(input, dir string, format writer.Format) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+format.Extension())
}

// Reformat reads a CSV written earlier and writes the same records in format.
func Reformat(input, output string, format writer.Format) (int, error) {
	f, err := os.Open(input)
	if err != nil {
		return 0, fmt.Errorf("failed to open %q: %w", input, err)
	}
	defer f.Close()

	records, pipeline, err := writer.ReadCSV(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", input, err)
	}

	w, err := writer.New(format, pipeline.Columns())
	if err != nil {
		return 0, err
	}
	if err := writer.WriteToFile(w, output, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// IsInputError reports whether err was caused by the document itself rather
// than by the converter or its environment.
func IsInputError(err error) bool {
	return errors.Is(err, document.ErrInvalidPassword) || errors.Is(err, document.ErrUnreadable)
}
