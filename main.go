package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/card-statement-converter/internal/api"
	"github.com/insightdelivered/card-statement-converter/internal/config"
	"github.com/insightdelivered/card-statement-converter/internal/converter"
	"github.com/insightdelivered/card-statement-converter/internal/logger"
	"github.com/insightdelivered/card-statement-converter/internal/models"
	"github.com/insightdelivered/card-statement-converter/internal/writer"
)

const version = "2.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalf("Configuration error: %v\n", err)
	}

	// CLI flags
	formatFlag := flag.String("format", "modern", "Statement layout: legacy or modern (aliases: old, new)")
	passwordFlag := flag.String("password", "", "Password for encrypted statements (defaults to the file name suffix after the last '-')")
	outputFlag := flag.String("output", "", "Output file path for a single input (defaults to the input name with the new extension)")
	inDirFlag := flag.String("in-dir", "", "Convert every PDF in this directory")
	outDirFlag := flag.String("out-dir", "", "Directory for converted files (defaults to the input directory)")
	outFormatFlag := flag.String("out-format", "csv", "Output format: csv or xlsx")
	workersFlag := flag.Int("workers", cfg.Workers, "Number of statements converted at once with -in-dir")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of converting files")
	addrFlag := flag.String("addr", cfg.Server.Addr, "Listen address for -serve")
	debugFlag := flag.Bool("debug", false, "Log every parsed row")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Card Statement PDF to CSV Converter
by Insight Delivered

Converts credit card statement PDFs, in the legacy fixed-column layout or the
modern free-text layout, into CSV or XLSX transaction files.

Usage:
  card-statement-converter [flags] <statement.pdf> [statement2.pdf ...]
  card-statement-converter [flags] -in-dir <dir> [-out-dir <dir>]
  card-statement-converter -serve [-addr :8080]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Modern layout, password taken from the file name (march-abc123.pdf)
  card-statement-converter march-abc123.pdf

  # Legacy layout with an explicit password
  card-statement-converter -format=old -password=abc123 statement.pdf

  # Whole directory to XLSX
  card-statement-converter -format=new -in-dir=./input -out-dir=./output -out-format=xlsx

  # Turn an earlier CSV into a workbook
  card-statement-converter -out-format=xlsx march.csv

Environment:
  STATEMENT_LOCAL_CURRENCY, STATEMENT_INTL_SPLIT_X, STATEMENT_CELL_GAP,
  STATEMENT_WORKERS, SERVER_ADDR, SERVER_BODY_LIMIT_MB, LOG_LEVEL
  (a .env file in the working directory is read first)
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("card-statement-converter v%s\n", version)
		os.Exit(0)
	}

	if *helpFlag || (flag.NArg() == 0 && *inDirFlag == "" && !*serveFlag) {
		flag.Usage()
		os.Exit(0)
	}

	level := cfg.LogLevel
	if *debugFlag {
		level = "debug"
	}
	log := logger.New(level)

	cfg.Workers = *workersFlag
	cfg.Server.Addr = *addrFlag
	if err := cfg.Validate(); err != nil {
		fatalf("Configuration error: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	conv := converter.New(cfg)

	if *serveFlag {
		if err := serve(ctx, cfg, conv, log); err != nil {
			fatalf("Server error: %v\n", err)
		}
		return
	}

	pipeline, err := models.ParsePipeline(*formatFlag)
	if err != nil {
		fatalf("%v\n", err)
	}
	format, err := writer.ParseFormat(*outFormatFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	failed := false

	if *inDirFlag != "" {
		outDir := *outDirFlag
		if outDir == "" {
			outDir = *inDirFlag
		}
		results, err := conv.ConvertDir(ctx, *inDirFlag, outDir, converter.DirOptions{
			Pipeline: pipeline,
			Format:   format,
			Password: *passwordFlag,
		})
		for _, res := range results {
			if res != nil {
				printResult(res)
			}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Errors:\n%v\n", err)
			failed = true
		}
	}

	inputFiles := flag.Args()
	if *outputFlag != "" && len(inputFiles) > 1 {
		fatalf("-output can only be used with a single input file\n")
	}

	// Process each input file
	for _, inputPath := range inputFiles {
		if err := processFile(ctx, conv, inputPath, pipeline, format, *passwordFlag, *outputFlag, *outDirFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func processFile(ctx context.Context, conv *converter.Converter, inputPath string, pipeline models.Pipeline,
	format writer.Format, password, outputPath, outDir string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	if outputPath == "" {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(inputPath)
		}
		outputPath = converter.OutputPath(inputPath, dir, format)
	}

	switch ext := strings.ToLower(filepath.Ext(inputPath)); ext {
	case ".pdf":
	case ".csv":
		if filepath.Clean(outputPath) == filepath.Clean(inputPath) {
			return fmt.Errorf("refusing to overwrite %s; choose -out-format=xlsx or -output", inputPath)
		}
		n, err := converter.Reformat(inputPath, outputPath, format)
		if err != nil {
			return err
		}
		fmt.Printf("Reformatted: %s\n  %d record(s)\n  Output: %s\n", inputPath, n, outputPath)
		return nil
	default:
		return fmt.Errorf("expected .pdf or .csv file, got %q", ext)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	res, err := conv.ConvertFile(ctx, converter.Job{
		Input:    inputPath,
		Output:   outputPath,
		Password: password,
		Pipeline: pipeline,
		Format:   format,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted")
		}
		return err
	}

	printResult(res)
	return nil
}

func printResult(res *converter.Result) {
	stmt := res.Statement
	fmt.Printf("%s\n", res.Input)
	fmt.Printf("  Found %d transaction(s)\n", len(stmt.Records))
	if len(stmt.PagesSkipped) > 0 {
		fmt.Printf("  Skipped page(s): %v\n", stmt.PagesSkipped)
	}
	if len(stmt.Defects) > 0 {
		fmt.Printf("  %d row(s) could not be fully read:\n", len(stmt.Defects))
		for _, d := range stmt.Defects {
			fmt.Printf("    %s\n", d.Error())
		}
	}
	if len(stmt.Records) == 0 {
		fmt.Println("  Warning: No transactions found. The statement may use the other layout; try -format=legacy or -format=modern.")
	}
	fmt.Printf("  Output: %s\n", res.Output)
}

func serve(ctx context.Context, cfg *config.Config, conv *converter.Converter, log zerolog.Logger) error {
	app := api.NewApp(&api.Handler{
		Converter: conv,
		Version:   version,
		Log:       log,
	}, cfg.Server.BodyLimitMB)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		_ = app.Shutdown()
	}()

	log.Info().Str("addr", cfg.Server.Addr).Str("version", version).Msg("listening")
	return app.Listen(cfg.Server.Addr)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
