package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	"github.com/sakura24999/data-analysis-dashboard/internal/preprocess"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts/events"
)

// PreprocessService applies preprocessing steps to the session dataset
type PreprocessService struct {
	notifier Notifier
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewPreprocessService creates a preprocess service. notifier and metrics may be nil.
func NewPreprocessService(notifier Notifier, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *PreprocessService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &PreprocessService{
		notifier: orNoop(notifier),
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "preprocess_service"),
		now:      time.Now,
	}
}

// Apply runs cfg on the processed dataset and records it as a step
func (s *PreprocessService) Apply(ctx context.Context, sess *session.Session, cfg preprocess.Config) (api.PreprocessResponse, error) {
	name := cfg.Name()
	ctx, span := infrastructure.StartSpan(ctx, "preprocess.apply", attribute.String("step", name))
	defer span.End()

	sess.Lock()
	ds, err := sess.Data()
	if err != nil {
		sess.Unlock()
		return api.PreprocessResponse{}, err
	}
	processed, err := preprocess.Apply(ds, cfg)
	if err != nil {
		sess.Unlock()
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Preprocessing step failed",
			slog.String("step", name),
			slog.String("error", err.Error()))
		return api.PreprocessResponse{}, err
	}

	rows, cols := processed.Shape()
	step := preprocess.Step{Name: name, Config: cfg, AppliedAt: s.now(), RowsAfter: rows, ColsAfter: cols}
	sess.Apply(step, processed)
	resp := api.PreprocessResponse{
		Step:    stepResponse(len(sess.Steps)-1, step),
		Dataset: datasetInfo(sess),
	}
	sess.Unlock()

	if s.metrics != nil {
		s.metrics.PreprocessSteps.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "Preprocessing step applied",
		slog.String("step", name),
		slog.Int("rows", rows),
		slog.Int("cols", cols))
	s.notifier.Publish(ctx, sess.ID, events.MessageTypeDatasetUpdated, events.DatasetUpdated{
		Reason: events.ReasonPreprocessed,
		Source: resp.Dataset.Source,
		Rows:   rows,
		Cols:   cols,
		Step:   name,
	})
	return resp, nil
}

// Outliers reports the IQR outliers of a numeric column
func (s *PreprocessService) Outliers(ctx context.Context, sess *session.Session, column string) (preprocess.OutlierReport, error) {
	sess.Lock()
	defer sess.Unlock()

	ds, err := sess.Data()
	if err != nil {
		return preprocess.OutlierReport{}, err
	}
	return preprocess.DetectOutliers(ds, column)
}

// History lists the applied steps
func (s *PreprocessService) History(ctx context.Context, sess *session.Session) (api.HistoryResponse, error) {
	sess.Lock()
	defer sess.Unlock()

	ds, err := sess.Data()
	if err != nil {
		return api.HistoryResponse{}, err
	}
	resp := api.HistoryResponse{Steps: make([]api.StepResponse, len(sess.Steps))}
	for i, step := range sess.Steps {
		resp.Steps[i] = stepResponse(i, step)
	}
	resp.OriginalRows, resp.OriginalCols = sess.Original.Shape()
	resp.Rows, resp.Cols = ds.Shape()
	return resp, nil
}

func stepResponse(i int, step preprocess.Step) api.StepResponse {
	return api.StepResponse{
		Index:     i,
		Name:      step.Name,
		Config:    step.Config,
		AppliedAt: step.AppliedAt,
		RowsAfter: step.RowsAfter,
		ColsAfter: step.ColsAfter,
	}
}

// ColumnsConfig converts a columns request
func ColumnsConfig(req api.ColumnsRequest) (preprocess.Config, error) {
	cfg := preprocess.Config{SelectColumns: req.Select, RenameColumns: req.Rename}
	if len(req.ConvertTypes) > 0 {
		cfg.ConvertTypes = make(map[string]dataset.Kind, len(req.ConvertTypes))
		for col, k := range req.ConvertTypes {
			kind, ok := dataset.ParseKind(k)
			if !ok {
				return preprocess.Config{}, fmt.Errorf("%w: unknown type %q for %s", preprocess.ErrInvalidMethod, k, col)
			}
			cfg.ConvertTypes[col] = kind
		}
	}
	return cfg, nil
}

// MissingConfig converts a missing-value request
func MissingConfig(req api.MissingRequest) preprocess.Config {
	return preprocess.Config{Missing: convertMethods[preprocess.MissingMethod](req.Methods)}
}

// OutliersConfig converts an outlier request
func OutliersConfig(req api.OutliersRequest) preprocess.Config {
	return preprocess.Config{Outliers: convertMethods[preprocess.OutlierMethod](req.Methods)}
}

// ScalingConfig converts a scaling request
func ScalingConfig(req api.ScalingRequest) preprocess.Config {
	return preprocess.Config{Scaling: &preprocess.ScalingConfig{
		Method:  preprocess.ScalingMethod(req.Method),
		Columns: req.Columns,
	}}
}

// FeaturesConfig converts a feature engineering request
func FeaturesConfig(req api.FeatureRequest) preprocess.Config {
	features := make(map[string]preprocess.FeatureConfig)
	for col, names := range req.Datetime {
		fc := features[col]
		fc.Datetime = names
		features[col] = fc
	}
	for col, text := range req.Text {
		fc := features[col]
		fc.Text = &preprocess.TextConfig{Length: text.Length, WordCount: text.WordCount, Contains: text.Contains}
		features[col] = fc
	}
	return preprocess.Config{Features: features}
}

// BinningConfig converts a binning request
func BinningConfig(req api.BinningRequest) preprocess.Config {
	return preprocess.Config{Features: map[string]preprocess.FeatureConfig{
		req.Column: {Binning: &preprocess.BinningConfig{NBins: req.NBins, Labels: req.Labels}},
	}}
}

// EncodingConfig converts an encoding request
func EncodingConfig(req api.EncodingRequest) preprocess.Config {
	return preprocess.Config{Encoding: convertMethods[preprocess.EncodingMethod](req.Methods)}
}

// DropConfig converts a drop request
func DropConfig(req api.DropRequest) preprocess.Config {
	return preprocess.Config{DropColumns: req.Columns}
}

func convertMethods[M ~string](in map[string]string) map[string]M {
	out := make(map[string]M, len(in))
	for col, m := range in {
		out[col] = M(m)
	}
	return out
}
