package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/card-statement-converter/internal/logger"
	"github.com/insightdelivered/card-statement-converter/internal/models"
	"github.com/insightdelivered/card-statement-converter/internal/writer"
)

// DirOptions applies to every file of a directory conversion.
type DirOptions struct {
	Pipeline models.Pipeline
	Format   writer.Format
	// Password is used for every file; empty falls back to each file name.
	Password string
}

// ConvertDir converts every PDF in inDir into outDir, several at a time.
// A failing file does not stop the others; all failures are returned joined.
// Results are in directory order and nil for failed files.
func (c *Converter) ConvertDir(ctx context.Context, inDir, outDir string, opts DirOptions) ([]*Result, error) {
	inputs, err := ListPDFs(inDir)
	if err != nil {
		return nil, err
	}
	if opts.Format == "" {
		opts.Format = writer.FormatCSV
	}

	log := logger.FromContext(ctx)
	log.Info().Str("in_dir", inDir).Int("files", len(inputs)).Int("workers", c.workers).Msg("converting directory")

	results := make([]*Result, len(inputs))
	errs := make([]error, len(inputs))

	var g errgroup.Group
	g.SetLimit(max(c.workers, 1))
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			res, err := c.ConvertFile(ctx, Job{
				Input:    input,
				Output:   OutputPath(input, outDir, opts.Format),
				Password: opts.Password,
				Pipeline: opts.Pipeline,
				Format:   opts.Format,
			})
			if err != nil {
				log.Error().Err(err).Str("file", filepath.Base(input)).Msg("conversion failed")
				errs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// ListPDFs returns the .pdf files in dir, any case, in name order.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %q: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}
