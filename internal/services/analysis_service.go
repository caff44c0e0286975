package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts/events"
)

// AnalysisService runs the advanced analyses and keeps their latest results
// in the session
type AnalysisService struct {
	notifier Notifier
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
}

// NewAnalysisService creates an analysis service. notifier and metrics may be nil.
func NewAnalysisService(notifier Notifier, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &AnalysisService{
		notifier: orNoop(notifier),
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "analysis_service"),
	}
}

// run executes fn on the processed dataset under the session lock, stores
// its result with store and reports timing, errors and completion.
func run[R any](ctx context.Context, s *AnalysisService, sess *session.Session, kind analysis.Kind,
	fn func(context.Context, *dataset.Dataset) (R, error), store func(*analysis.Results, R), warning func(R) string) (api.AnalysisResponse, error) {

	ctx, span := infrastructure.StartSpan(ctx, "analysis."+string(kind), attribute.String("analysis.kind", string(kind)))
	defer span.End()

	sess.Lock()
	ds, err := sess.Data()
	if err != nil {
		sess.Unlock()
		return api.AnalysisResponse{}, err
	}
	start := time.Now()
	result, err := fn(ctx, ds)
	elapsed := time.Since(start)
	if err == nil {
		store(&sess.Results, result)
	}
	sess.Unlock()

	s.metrics.RecordAnalysis(ctx, string(kind), elapsed, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Analysis failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		return api.AnalysisResponse{}, err
	}

	ms := float64(elapsed.Microseconds()) / 1000
	s.logger.InfoContext(ctx, "Analysis completed",
		slog.String("kind", string(kind)),
		slog.Float64("duration_ms", ms))
	complete := events.AnalysisComplete{Kind: string(kind), DurationMS: ms}
	if warning != nil {
		complete.Warning = warning(result)
	}
	s.notifier.Publish(ctx, sess.ID, events.MessageTypeAnalysisComplete, complete)

	return api.AnalysisResponse{Kind: string(kind), DurationMS: ms, Result: result}, nil
}

// TimeSeries analyses a value column ordered by a date column
func (s *AnalysisService) TimeSeries(ctx context.Context, sess *session.Session, req api.TimeSeriesRequest) (api.AnalysisResponse, error) {
	return run(ctx, s, sess, analysis.KindTimeSeries,
		func(ctx context.Context, ds *dataset.Dataset) (*analysis.TimeSeriesResult, error) {
			return analysis.TimeSeries(ctx, ds, req.DateColumn, req.ValueColumn)
		},
		func(r *analysis.Results, res *analysis.TimeSeriesResult) { r.TimeSeries = res },
		func(res *analysis.TimeSeriesResult) string { return res.Error })
}

// Correlation computes the correlation matrix, strong pairs and trend lines
func (s *AnalysisService) Correlation(ctx context.Context, sess *session.Session, req api.CorrelationRequest) (api.AnalysisResponse, error) {
	return run(ctx, s, sess, analysis.KindCorrelation,
		func(_ context.Context, ds *dataset.Dataset) (*analysis.CorrelationResult, error) {
			return analysis.CorrelationAnalysis(ds, req.Columns)
		},
		func(r *analysis.Results, res *analysis.CorrelationResult) { r.Correlation = res },
		nil)
}

// Cluster runs K-means over the requested columns
func (s *AnalysisService) Cluster(ctx context.Context, sess *session.Session, req api.ClusterRequest) (api.AnalysisResponse, error) {
	return run(ctx, s, sess, analysis.KindCluster,
		func(ctx context.Context, ds *dataset.Dataset) (*analysis.ClusterResult, error) {
			return analysis.Cluster(ctx, ds, req.Columns, req.K)
		},
		func(r *analysis.Results, res *analysis.ClusterResult) { r.Cluster = res },
		nil)
}

// Distribution describes the distribution of one column
func (s *AnalysisService) Distribution(ctx context.Context, sess *session.Session, req api.DistributionRequest) (api.AnalysisResponse, error) {
	return run(ctx, s, sess, analysis.KindDistribution,
		func(_ context.Context, ds *dataset.Dataset) (*analysis.DistributionResult, error) {
			return analysis.Distribution(ds, req.Column)
		},
		func(r *analysis.Results, res *analysis.DistributionResult) { r.Distribution = res },
		nil)
}

// Results returns the latest results of the session
func (s *AnalysisService) Results(ctx context.Context, sess *session.Session) analysis.Results {
	sess.Lock()
	defer sess.Unlock()
	return sess.Results
}
