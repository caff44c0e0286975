// Package report renders a session's dataset, preprocessing history and
// analysis results as a Markdown document.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	"github.com/sakura24999/data-analysis-dashboard/internal/preprocess"
)

// DefaultTitle is used when Options.Title is blank
const DefaultTitle = "Data Analysis Report"

// Options selects the report sections
type Options struct {
	Title                string `json:"title"`
	IncludePreview       bool   `json:"include_preview"`
	IncludeStats         bool   `json:"include_stats"`
	IncludePreprocessing bool   `json:"include_preprocessing"`
	IncludeAnalysis      bool   `json:"include_analysis"`
	IncludeInsights      bool   `json:"include_insights"`
	PreviewRows          int    `json:"preview_rows"`
}

// DefaultOptions enables every section
func DefaultOptions() Options {
	return Options{
		Title:                DefaultTitle,
		IncludePreview:       true,
		IncludeStats:         true,
		IncludePreprocessing: true,
		IncludeAnalysis:      true,
		IncludeInsights:      true,
		PreviewRows:          5,
	}
}

// Input is everything a report is built from. Processed is the dataset the
// report describes; Original is only used to show the preprocessing impact.
type Input struct {
	Original  *dataset.Dataset
	Processed *dataset.Dataset
	Steps     []preprocess.Step
	Results   analysis.Results
}

// Builder renders reports
type Builder struct {
	clock   func() time.Time
	workers int
	logger  *slog.Logger
}

// Option configures a Builder
type Option func(*Builder)

// WithClock overrides the clock used for the generation timestamp
func WithClock(clock func() time.Time) Option {
	return func(b *Builder) { b.clock = clock }
}

// WithWorkers bounds the goroutines used to summarise columns
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// WithLogger sets the builder logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder creates a report builder
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		clock:   time.Now,
		workers: 4,
		logger:  infrastructure.WithComponent(infrastructure.GetLogger(), "report"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// section renders one top-level part of the report into its own buffer
type section func(ctx context.Context, w *strings.Builder) error

// Build renders the report. Sections are generated concurrently and
// joined in order; disabled or empty sections are left out.
func (b *Builder) Build(ctx context.Context, in Input, opts Options) (string, error) {
	if in.Processed == nil {
		return "", dataset.ErrEmptyDataset
	}
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = DefaultTitle
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 5
	}

	sections := []section{
		func(_ context.Context, w *strings.Builder) error {
			b.writeOverview(w, in.Processed, opts)
			return nil
		},
	}
	if opts.IncludeStats {
		sections = append(sections, func(ctx context.Context, w *strings.Builder) error {
			return b.writeStatistics(ctx, w, in.Processed)
		})
	}
	if opts.IncludePreprocessing && len(in.Steps) > 0 {
		sections = append(sections, func(_ context.Context, w *strings.Builder) error {
			return writePreprocessing(w, in)
		})
	}
	if opts.IncludeAnalysis && !in.Results.Empty() {
		sections = append(sections, func(_ context.Context, w *strings.Builder) error {
			writeAnalysis(w, in.Results)
			return nil
		})
	}
	if opts.IncludeInsights {
		sections = append(sections, func(_ context.Context, w *strings.Builder) error {
			writeInsights(w, in.Processed, in.Results)
			return nil
		})
	}

	parts := make([]strings.Builder, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	for i, render := range sections {
		g.Go(func() error {
			return render(gctx, &parts[i])
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("failed to build report: %w", err)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# %s\n\n", opts.Title)
	fmt.Fprintf(&out, "Generated: %s\n\n", b.clock().Format(time.DateTime))
	for i := range parts {
		out.WriteString(parts[i].String())
	}

	b.logger.InfoContext(ctx, "report built",
		slog.String("title", opts.Title),
		slog.Int("sections", len(sections)),
		slog.Int("bytes", out.Len()))
	return out.String(), nil
}

var unsafeFilename = regexp.MustCompile(`[^\p{L}\p{N}_.-]+`)

// Filename derives the export filename from a report title: lower case,
// spaces replaced by underscores, other unsafe characters removed.
func Filename(title string) string {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "_")
	name = unsafeFilename.ReplaceAllString(name, "")
	name = strings.Trim(name, ".")
	if name == "" {
		name = "report"
	}
	return name + ".md"
}
