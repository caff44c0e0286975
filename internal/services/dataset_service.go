package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/exporter"
	"github.com/sakura24999/data-analysis-dashboard/internal/infrastructure"
	"github.com/sakura24999/data-analysis-dashboard/internal/loader"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts/events"
)

// Export formats
const (
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
	FormatClusters = "clusters"
)

// Content types of the export formats
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DatasetService loads data into sessions and exposes the loaded dataset
type DatasetService struct {
	upload      config.UploadConfig
	previewRows int
	notifier    Notifier
	metrics     *infrastructure.BusinessMetrics
	logger      *slog.Logger
}

// NewDatasetService creates a dataset service. notifier and metrics may be nil.
func NewDatasetService(cfg *config.Config, notifier Notifier, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &DatasetService{
		upload:      cfg.Upload,
		previewRows: cfg.Analysis.PreviewRows,
		notifier:    orNoop(notifier),
		metrics:     metrics,
		logger:      infrastructure.WithComponent(logger, "dataset_service"),
	}
}

// CheckExtension rejects file names whose extension is not configured
func (s *DatasetService) CheckExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !slices.Contains(s.upload.Extensions, ext) {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedExtension, ext, strings.Join(s.upload.Extensions, ", "))
	}
	return nil
}

// readUpload reads at most the configured upload size from r
func (s *DatasetService) readUpload(r io.Reader) ([]byte, error) {
	limit := s.upload.MaxBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d MB", ErrUploadTooLarge, s.upload.MaxSizeMB)
	}
	return data, nil
}

// Sheets lists the worksheets of an uploaded workbook
func (s *DatasetService) Sheets(ctx context.Context, filename string, r io.Reader) (api.SheetsResponse, error) {
	if err := s.CheckExtension(filename); err != nil {
		return api.SheetsResponse{}, err
	}
	if !loader.IsExcel(filename) {
		return api.SheetsResponse{}, fmt.Errorf("%w: %s is not a workbook", ErrInvalidInput, filename)
	}
	data, err := s.readUpload(r)
	if err != nil {
		return api.SheetsResponse{}, err
	}
	sheets, err := loader.ExcelSheets(bytes.NewReader(data))
	if err != nil {
		return api.SheetsResponse{}, err
	}
	return api.SheetsResponse{Filename: filename, Sheets: sheets}, nil
}

// Upload parses an uploaded file and makes it the session dataset
func (s *DatasetService) Upload(ctx context.Context, sess *session.Session, r io.Reader, req api.UploadRequest) (api.DatasetInfo, error) {
	ctx, span := infrastructure.StartSpan(ctx, "dataset.upload",
		attribute.String("filename", req.Filename))
	defer span.End()

	if err := s.CheckExtension(req.Filename); err != nil {
		return api.DatasetInfo{}, err
	}
	delim, err := loader.ParseDelimiter(req.Delimiter)
	if err != nil {
		return api.DatasetInfo{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	encoding := req.Encoding
	if encoding == "" {
		encoding = s.upload.DefaultEncoding
	}

	data, err := s.readUpload(r)
	if err != nil {
		return api.DatasetInfo{}, err
	}
	ds, err := loader.Load(bytes.NewReader(data), req.Filename, loader.Options{
		CSVOptions: loader.CSVOptions{Encoding: encoding, Delimiter: delim},
		Sheet:      req.Sheet,
	})
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(s.logger, err).WarnContext(ctx, "Failed to parse upload",
			slog.String("filename", req.Filename))
		return api.DatasetInfo{}, apierrors.NewParsingError("failed to load "+req.Filename, err).
			WithContext("filename", req.Filename).
			WithContext("encoding", encoding)
	}
	if ds.IsEmpty() {
		return api.DatasetInfo{}, fmt.Errorf("failed to load %s: %w", req.Filename, dataset.ErrEmptyDataset)
	}

	return s.load(ctx, sess, ds, req.Filename, "upload"), nil
}

// LoadSample replaces the session dataset with a built-in sample
func (s *DatasetService) LoadSample(ctx context.Context, sess *session.Session, name string) (api.DatasetInfo, error) {
	ctx, span := infrastructure.StartSpan(ctx, "dataset.sample", attribute.String("sample", name))
	defer span.End()

	ds, err := loader.Sample(name)
	if err != nil {
		return api.DatasetInfo{}, err
	}
	return s.load(ctx, sess, ds, "sample:"+name, "sample"), nil
}

func (s *DatasetService) load(ctx context.Context, sess *session.Session, ds *dataset.Dataset, source, kind string) api.DatasetInfo {
	sess.Lock()
	sess.Load(ds, source)
	info := datasetInfo(sess)
	sess.Unlock()

	s.metrics.RecordDatasetLoaded(ctx, kind)
	s.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("source", source),
		slog.Int("rows", info.Rows),
		slog.Int("cols", info.Cols))
	s.notifier.Publish(ctx, sess.ID, events.MessageTypeDatasetUpdated, events.DatasetUpdated{
		Reason: events.ReasonLoaded,
		Source: source,
		Rows:   info.Rows,
		Cols:   info.Cols,
	})
	return info
}

// Samples lists the built-in sample datasets
func (s *DatasetService) Samples() api.SamplesResponse {
	return api.SamplesResponse{Samples: loader.SampleNames()}
}

// Info describes the processed dataset of the session
func (s *DatasetService) Info(ctx context.Context, sess *session.Session) (api.DatasetInfo, error) {
	sess.Lock()
	defer sess.Unlock()

	if _, err := sess.Data(); err != nil {
		return api.DatasetInfo{}, err
	}
	return datasetInfo(sess), nil
}

// Preview returns the first rows of the processed dataset. rows <= 0 uses
// the configured default.
func (s *DatasetService) Preview(ctx context.Context, sess *session.Session, rows int) (api.PreviewResponse, error) {
	sess.Lock()
	defer sess.Unlock()

	ds, err := sess.Data()
	if err != nil {
		return api.PreviewResponse{}, err
	}
	if rows <= 0 {
		rows = s.previewRows
	}
	return api.PreviewResponse{
		Columns: ds.Names(),
		Rows:    ds.Head(rows),
		Total:   ds.Rows(),
	}, nil
}

// Reset discards every preprocessing step
func (s *DatasetService) Reset(ctx context.Context, sess *session.Session) (api.DatasetInfo, error) {
	sess.Lock()
	if err := sess.Reset(); err != nil {
		sess.Unlock()
		return api.DatasetInfo{}, err
	}
	info := datasetInfo(sess)
	sess.Unlock()

	s.logger.InfoContext(ctx, "Dataset reset to original", slog.String("source", info.Source))
	s.notifier.Publish(ctx, sess.ID, events.MessageTypeDatasetUpdated, events.DatasetUpdated{
		Reason: events.ReasonReset,
		Source: info.Source,
		Rows:   info.Rows,
		Cols:   info.Cols,
	})
	return info, nil
}

// Export writes the processed dataset, or the cluster-labelled dataset, in
// format to w and returns the download file name and content type.
func (s *DatasetService) Export(ctx context.Context, sess *session.Session, format string, w io.Writer) (filename, contentType string, err error) {
	sess.Lock()
	defer sess.Unlock()

	ds, err := sess.Data()
	if err != nil {
		return "", "", err
	}

	switch format {
	case FormatCSV:
		return exporter.DatasetCSVName, ContentTypeCSV, exporter.WriteDatasetCSV(w, ds)
	case FormatXLSX:
		return exporter.DatasetXLSXName, ContentTypeXLSX, exporter.WriteDatasetXLSX(w, ds)
	case FormatClusters:
		if sess.Results.Cluster == nil {
			return "", "", fmt.Errorf("%w: cluster", ErrNoResult)
		}
		return exporter.ClustersCSVName, ContentTypeCSV, exporter.WriteClustersCSV(w, ds, sess.Results.Cluster)
	}
	return "", "", fmt.Errorf("%w: %q", ErrInvalidFormat, format)
}

// datasetInfo describes the session data; the caller holds the session lock
func datasetInfo(sess *session.Session) api.DatasetInfo {
	ds := sess.Processed
	info := api.DatasetInfo{
		Source:      sess.Source,
		Rows:        ds.Rows(),
		Cols:        ds.Cols(),
		MemoryBytes: ds.MemoryUsage(),
		Missing:     ds.MissingTotal(),
		Steps:       len(sess.Steps),
	}
	if sess.Original != nil {
		info.OriginalRows, info.OriginalCols = sess.Original.Shape()
	}
	for _, c := range ds.Info() {
		info.Columns = append(info.Columns, api.ColumnInfo{
			Name:       c.Name,
			Kind:       string(c.Kind),
			NonNull:    c.NonNull,
			Missing:    c.Missing,
			MissingPct: c.MissingPct,
			Unique:     c.Unique,
			Sample:     c.Sample,
		})
	}
	return info
}
