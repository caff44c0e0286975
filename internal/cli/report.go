package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/exporter"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	"github.com/sakura24999/data-analysis-dashboard/internal/loader"
	"github.com/sakura24999/data-analysis-dashboard/internal/report"
	"github.com/sakura24999/data-analysis-dashboard/internal/validation"
)

const samplePrefix = "sample:"

// reportOptions drive the headless report command
type reportOptions struct {
	input     string
	encoding  string
	delimiter string
	sheet     string
	title     string
	out       string
	preview   int
}

func reportCmd(configFile *string) *cobra.Command {
	var opts reportOptions

	c := &cobra.Command{
		Use:   "report",
		Short: "Build a Markdown report for a file or a built-in sample without starting the server",
		Example: `  dashboard report --input sales.csv --title "Q3 Sales"
  dashboard report --input sample:weather --out -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	c.Flags().StringVarP(&opts.input, "input", "i", "", "CSV/TSV/Excel file, or sample:<name>")
	c.Flags().StringVar(&opts.encoding, "encoding", "", "Text encoding of delimited files (default from config)")
	c.Flags().StringVar(&opts.delimiter, "delimiter", ",", `Field delimiter of delimited files, "\t" for tab`)
	c.Flags().StringVar(&opts.sheet, "sheet", "", "Excel sheet (defaults to the first)")
	c.Flags().StringVarP(&opts.title, "title", "t", report.DefaultTitle, "Report title")
	c.Flags().StringVarP(&opts.out, "out", "o", "", `Output file, "-" for stdout (defaults to the reports directory)`)
	c.Flags().IntVar(&opts.preview, "preview-rows", 5, "Rows shown in the data preview section")

	_ = c.MarkFlagRequired("input")
	return c
}

func runReport(ctx context.Context, cfg *config.Config, opts reportOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	logger := infrastructure.NewLogger(stderr, "warn")

	validator := validation.NewFileValidator(logger)

	ds, err := loadInput(cfg, validator, opts)
	if err != nil {
		return err
	}

	builder := report.NewBuilder(
		report.WithWorkers(cfg.Analysis.Workers),
		report.WithLogger(logger))

	reportOpts := report.DefaultOptions()
	reportOpts.Title = opts.title
	reportOpts.PreviewRows = opts.preview

	content, err := builder.Build(ctx, report.Input{Original: ds, Processed: ds}, reportOpts)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	if opts.out == "-" {
		_, err := io.WriteString(stdout, content)
		return err
	}

	path, err := writeReport(cfg, validator, opts, content)
	if err != nil {
		return err
	}

	printSummary(stderr, opts.input, ds, path)
	return nil
}

// loadInput reads a file or generates a built-in sample
func loadInput(cfg *config.Config, validator *validation.FileValidator, opts reportOptions) (*dataset.Dataset, error) {
	if name, ok := strings.CutPrefix(opts.input, samplePrefix); ok {
		return loader.Sample(name)
	}

	rules := validation.InputRules{Extensions: cfg.Upload.Extensions, MaxBytes: cfg.Upload.MaxBytes()}
	if err := validator.ValidateInputFile(opts.input, rules); err != nil {
		return nil, err
	}

	f, err := os.Open(opts.input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	encoding := opts.encoding
	if encoding == "" {
		encoding = cfg.Upload.DefaultEncoding
	}

	return loader.Load(f, filepath.Base(opts.input), loader.Options{
		CSVOptions: loader.CSVOptions{
			Encoding:  encoding,
			Delimiter: parseDelimiter(opts.delimiter),
		},
		Sheet: opts.sheet,
	})
}

func parseDelimiter(s string) rune {
	switch s {
	case "", ",":
		return ','
	case `\t`, "\t", "tab":
		return '\t'
	}
	return []rune(s)[0]
}

// writeReport saves to --out, or to the configured reports directory
func writeReport(cfg *config.Config, validator *validation.FileValidator, opts reportOptions, content string) (string, error) {
	if opts.out != "" {
		if err := validator.ValidateOutputFile(opts.out); err != nil {
			return "", err
		}
		if err := os.WriteFile(opts.out, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("failed to write report: %w", err)
		}
		return opts.out, nil
	}

	paths, err := cfg.GetPaths()
	if err != nil {
		return "", err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return "", err
	}
	return exporter.NewCSVWriter(paths).SaveReport(report.Filename(opts.title), content)
}

func printSummary(w io.Writer, input string, ds *dataset.Dataset, path string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Input", "Rows", "Columns", "Missing", "Report"})
	t.AppendRow(table.Row{input, ds.Rows(), ds.Cols(), ds.MissingTotal(), path})
	t.Render()
}
