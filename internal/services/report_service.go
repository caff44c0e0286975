package services

import (
	"context"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/exporter"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	"github.com/sakura24999/data-analysis-dashboard/internal/report"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts/events"
)

// ReportResult is a generated report
type ReportResult struct {
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
	// SavedPath is set when the report was also written to the reports directory
	SavedPath string `json:"saved_path,omitempty"`
}

// ReportService builds Markdown reports from a session
type ReportService struct {
	builder  *report.Builder
	writer   *exporter.CSVWriter
	notifier Notifier
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
}

// NewReportService creates a report service. writer is used to save
// reports and may be nil when reports are only downloaded.
func NewReportService(builder *report.Builder, writer *exporter.CSVWriter, notifier Notifier, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &ReportService{
		builder:  builder,
		writer:   writer,
		notifier: orNoop(notifier),
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "report_service"),
	}
}

// ReportOptions converts a report request; unset section flags are enabled
func ReportOptions(req api.ReportRequest) report.Options {
	opts := report.DefaultOptions()
	if req.Title != "" {
		opts.Title = req.Title
	}
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&opts.IncludePreview, req.IncludePreview)
	set(&opts.IncludeStats, req.IncludeStats)
	set(&opts.IncludePreprocessing, req.IncludePreprocessing)
	set(&opts.IncludeAnalysis, req.IncludeAnalysis)
	set(&opts.IncludeInsights, req.IncludeInsights)
	return opts
}

// Generate builds the report of the session
func (s *ReportService) Generate(ctx context.Context, sess *session.Session, req api.ReportRequest) (ReportResult, error) {
	opts := ReportOptions(req)
	ctx, span := infrastructure.StartSpan(ctx, "report.generate", attribute.String("report.title", opts.Title))
	defer span.End()

	sess.Lock()
	if _, err := sess.Data(); err != nil {
		sess.Unlock()
		return ReportResult{}, err
	}
	in := report.Input{
		Original:  sess.Original,
		Processed: sess.Processed,
		Steps:     slices.Clone(sess.Steps),
		Results:   sess.Results,
	}
	content, err := s.builder.Build(ctx, in, opts)
	sess.Unlock()
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return ReportResult{}, err
	}

	res := ReportResult{Title: opts.Title, Filename: report.Filename(opts.Title), Content: content}
	if req.Save && s.writer != nil {
		path, err := s.writer.SaveReport(res.Filename, content)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			return ReportResult{}, apierrors.NewStorageError("failed to save report", err).
				WithContext("filename", res.Filename)
		}
		res.SavedPath = path
	}

	if s.metrics != nil {
		s.metrics.ReportsGenerated.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "Report generated",
		slog.String("filename", res.Filename),
		slog.Int("bytes", len(content)),
		slog.Bool("saved", res.SavedPath != ""))
	s.notifier.Publish(ctx, sess.ID, events.MessageTypeReportGenerated, events.ReportGenerated{
		Title:    res.Title,
		Filename: res.Filename,
		Bytes:    len(content),
	})
	return res, nil
}
