package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sakura24999/data-analysis-dashboard/internal/charts"
	"github.com/sakura24999/data-analysis-dashboard/internal/explore"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
)

// Chart kinds drawn from the stored analysis results
const (
	ChartTimeSeries    = "timeseries"
	ChartDecomposition = "decomposition"
	ChartClusters      = "clusters"
	ChartDistribution  = "distribution"
)

// AnalysisCharts lists the chart kinds drawn from analysis results
var AnalysisCharts = []string{ChartTimeSeries, ChartDecomposition, ChartClusters, ChartDistribution}

// ChartService renders PNG charts
type ChartService struct {
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewChartService creates a chart service. metrics may be nil.
func NewChartService(metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ChartService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &ChartService{metrics: metrics, logger: infrastructure.WithComponent(logger, "chart_service")}
}

// IsAnalysisChart reports whether kind is drawn from analysis results
func IsAnalysisChart(kind string) bool {
	switch kind {
	case ChartTimeSeries, ChartDecomposition, ChartClusters, ChartDistribution:
		return true
	}
	return false
}

// RenderExplore draws an exploration chart of the processed dataset
func (s *ChartService) RenderExplore(ctx context.Context, sess *session.Session, req explore.ChartRequest, w io.Writer) error {
	ctx, span := infrastructure.StartSpan(ctx, "chart.render", attribute.String("chart.kind", string(req.Kind)))
	defer span.End()

	sess.Lock()
	defer sess.Unlock()

	ds, err := sess.Data()
	if err != nil {
		return err
	}
	c, err := explore.ChartData(ds, req)
	if err != nil {
		return err
	}
	return s.done(ctx, string(req.Kind), charts.Render(w, c))
}

// RenderAnalysis draws a chart of the latest analysis result of kind
func (s *ChartService) RenderAnalysis(ctx context.Context, sess *session.Session, kind string, w io.Writer) error {
	ctx, span := infrastructure.StartSpan(ctx, "chart.render", attribute.String("chart.kind", kind))
	defer span.End()

	sess.Lock()
	defer sess.Unlock()

	if _, err := sess.Data(); err != nil {
		return err
	}
	r := sess.Results
	var err error
	switch kind {
	case ChartTimeSeries, ChartDecomposition:
		if r.TimeSeries == nil {
			return fmt.Errorf("%w: timeseries", ErrNoResult)
		}
		if kind == ChartTimeSeries {
			err = charts.TimeSeries(w, r.TimeSeries)
		} else {
			err = charts.Decomposition(w, r.TimeSeries)
		}
	case ChartClusters:
		if r.Cluster == nil {
			return fmt.Errorf("%w: cluster", ErrNoResult)
		}
		err = charts.Clusters(w, r.Cluster)
	case ChartDistribution:
		if r.Distribution == nil {
			return fmt.Errorf("%w: distribution", ErrNoResult)
		}
		err = charts.Distribution(w, r.Distribution)
	default:
		return fmt.Errorf("%w: %s", charts.ErrUnsupported, kind)
	}
	return s.done(ctx, kind, err)
}

func (s *ChartService) done(ctx context.Context, kind string, err error) error {
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.DebugContext(ctx, "Chart not rendered",
			slog.String("kind", kind),
			slog.String("error", err.Error()))
		return err
	}
	if s.metrics != nil {
		s.metrics.ChartsRendered.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
	return nil
}
