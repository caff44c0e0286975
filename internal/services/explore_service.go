package services

import (
	"context"
	"log/slog"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/explore"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
)

// topCategories is the number of values listed per non-numeric column
const topCategories = 5

// Summary is the exploration overview of a dataset
type Summary struct {
	Overview    explore.Overview             `json:"overview"`
	Columns     []dataset.ColumnInfo         `json:"columns"`
	Numeric     []explore.ColumnSummary      `json:"numeric"`
	Categorical []explore.CategoricalSummary `json:"categorical"`
}

// CorrelationMatrix is the explore correlation response
type CorrelationMatrix struct {
	explore.Matrix
	StrongPairs []explore.Pair `json:"strong_pairs"`
}

// ValueCountsResult lists the frequencies of one column
type ValueCountsResult struct {
	Column string               `json:"column"`
	Unique int                  `json:"unique"`
	Values []explore.ValueCount `json:"values"`
}

// ExploreService answers the read-only exploration queries
type ExploreService struct {
	workers int
	logger  *slog.Logger
}

// NewExploreService creates an explore service fanning Describe out over workers
func NewExploreService(workers int, logger *slog.Logger) *ExploreService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &ExploreService{
		workers: max(1, workers),
		logger:  infrastructure.WithComponent(logger, "explore_service"),
	}
}

// Summary describes every column of the processed dataset
func (s *ExploreService) Summary(ctx context.Context, sess *session.Session) (Summary, error) {
	ctx, span := infrastructure.StartSpan(ctx, "explore.summary")
	defer span.End()

	sess.Lock()
	defer sess.Unlock()

	ds, err := sess.Data()
	if err != nil {
		return Summary{}, err
	}
	numeric, err := explore.Describe(ctx, ds, s.workers)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return Summary{}, err
	}
	return Summary{
		Overview:    explore.Summarize(ds),
		Columns:     ds.Info(),
		Numeric:     numeric,
		Categorical: explore.DescribeCategorical(ds, topCategories),
	}, nil
}

// ValueCounts returns the top values of column; top <= 0 returns all
func (s *ExploreService) ValueCounts(ctx context.Context, sess *session.Session, column string, top int) (ValueCountsResult, error) {
	sess.Lock()
	defer sess.Unlock()

	ds, err := sess.Data()
	if err != nil {
		return ValueCountsResult{}, err
	}
	c, err := ds.Column(column)
	if err != nil {
		return ValueCountsResult{}, err
	}
	return ValueCountsResult{
		Column: column,
		Unique: c.Unique(),
		Values: explore.ValueCounts(c, top),
	}, nil
}

// Correlation computes the correlation matrix and its strong pairs
func (s *ExploreService) Correlation(ctx context.Context, sess *session.Session, req api.CorrelationRequest) (CorrelationMatrix, error) {
	sess.Lock()
	defer sess.Unlock()

	ds, err := sess.Data()
	if err != nil {
		return CorrelationMatrix{}, err
	}
	m, err := explore.Correlation(ds, req.Columns)
	if err != nil {
		return CorrelationMatrix{}, err
	}
	threshold := req.Threshold
	if threshold == 0 {
		threshold = explore.StrongThreshold
	}
	return CorrelationMatrix{Matrix: m, StrongPairs: explore.StrongPairs(m, threshold)}, nil
}

// Chart builds the data of an exploration chart
func (s *ExploreService) Chart(ctx context.Context, sess *session.Session, req explore.ChartRequest) (*explore.Chart, error) {
	sess.Lock()
	defer sess.Unlock()

	ds, err := sess.Data()
	if err != nil {
		return nil, err
	}
	chart, err := explore.ChartData(ds, req)
	if err != nil {
		s.logger.DebugContext(ctx, "Chart request rejected",
			slog.String("kind", string(req.Kind)),
			slog.String("error", err.Error()))
		return nil, err
	}
	return chart, nil
}

// ChartRequest converts the API contract to an explore request
func ChartRequest(req api.ChartRequest) explore.ChartRequest {
	return explore.ChartRequest{
		Kind:    explore.ChartKind(req.Kind),
		X:       req.X,
		Y:       req.Y,
		Agg:     req.Agg,
		TopN:    req.TopN,
		Bins:    req.Bins,
		Columns: req.Columns,
	}
}
