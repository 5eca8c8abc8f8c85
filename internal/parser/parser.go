package parser

import (
	"context"
	"errors"
	"fmt"

	"github.com/insightdelivered/card-statement-converter/internal/config"
	"github.com/insightdelivered/card-statement-converter/internal/document"
	"github.com/insightdelivered/card-statement-converter/internal/models"
)

// ErrUnsupportedPipeline is returned by New for an unknown pipeline.
var ErrUnsupportedPipeline = errors.New("unsupported statement pipeline")

// Parser turns an opened statement document into transaction records.
type Parser interface {
	// Parse walks the pages in order. Only document-level failures are
	// returned as errors; row and page problems degrade the output instead.
	Parse(ctx context.Context, doc document.Document) (*models.Statement, error)
	// Name returns a human-readable parser name.
	Name() string
}

// Options carries the template constants both pipelines need.
type Options struct {
	LocalCurrency string
	IntlSplitX    float64
}

// DefaultOptions returns the built-in template constants.
func DefaultOptions() Options {
	return Options{
		LocalCurrency: config.DefaultLocalCurrency,
		IntlSplitX:    config.DefaultIntlSplitX,
	}
}

// OptionsFromConfig copies the statement settings out of cfg.
func OptionsFromConfig(cfg config.StatementConfig) Options {
	return Options{
		LocalCurrency: cfg.LocalCurrency,
		IntlSplitX:    cfg.IntlSplitX,
	}
}

// New returns the parser for the given pipeline.
func New(pipeline models.Pipeline, opts Options) (Parser, error) {
	if opts.LocalCurrency == "" {
		opts.LocalCurrency = config.DefaultLocalCurrency
	}
	if opts.IntlSplitX <= 0 {
		opts.IntlSplitX = config.DefaultIntlSplitX
	}

	switch pipeline {
	case models.PipelineLegacy:
		return &LegacyParser{opts: opts}, nil
	case models.PipelineModern:
		return &ModernParser{opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPipeline, pipeline)
	}
}

// pageText reads the text of a page; failure here means the document itself
// is unreadable, so it is never degraded.
func pageText(page document.Page) (string, error) {
	text, err := page.Text()
	if err != nil {
		return "", fmt.Errorf("reading text of page %d: %w", page.Number(), err)
	}
	return text, nil
}
