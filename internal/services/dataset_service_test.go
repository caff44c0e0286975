package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sakura24999/data-analysis-dashboard/internal/analysis"
	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	apierrors "github.com/sakura24999/data-analysis-dashboard/internal/errors"
	"github.com/sakura24999/data-analysis-dashboard/internal/loader"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
	api "github.com/sakura24999/data-analysis-dashboard/pkg/contracts/api/v1"
	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts/events"
)

func TestDatasetServiceLoadSample(t *testing.T) {
	notifier := &MockNotifier{}
	sess := newSession(t)
	notifier.On("Publish", sess.ID, events.MessageTypeDatasetUpdated, mock.MatchedBy(func(d events.DatasetUpdated) bool {
		return d.Reason == events.ReasonLoaded && d.Source == "sample:sales" && d.Rows == 365
	})).Once()

	svc := NewDatasetService(config.Default(), notifier, nil, nil)
	info, err := svc.LoadSample(context.Background(), sess, "sales")
	require.NoError(t, err)

	assert.Equal(t, 365, info.Rows)
	assert.Equal(t, 5, info.Cols)
	assert.Equal(t, 365, info.OriginalRows)
	assert.Equal(t, "date", info.Columns[0].Name)
	assert.Equal(t, "datetime", info.Columns[0].Kind)
	notifier.AssertExpectations(t)

	_, err = svc.LoadSample(context.Background(), sess, "missing")
	assert.ErrorIs(t, err, loader.ErrUnknownSample)
}

func TestDatasetServiceUpload(t *testing.T) {
	svc := NewDatasetService(config.Default(), nil, nil, nil)

	tests := []struct {
		name    string
		req     api.UploadRequest
		body    string
		rows    int
		cols    int
		wantErr error
	}{
		{
			name: "csv",
			req:  api.UploadRequest{Filename: "data.csv"},
			body: "a,b\n1,x\n2,y\n3,z\n",
			rows: 3, cols: 2,
		},
		{
			name: "semicolon delimiter",
			req:  api.UploadRequest{Filename: "data.csv", Delimiter: ";"},
			body: "a;b;c\n1;2;3\n",
			rows: 1, cols: 3,
		},
		{
			name:    "extension not allowed",
			req:     api.UploadRequest{Filename: "data.json"},
			body:    "{}",
			wantErr: ErrUnsupportedExtension,
		},
		{
			name:    "bad delimiter",
			req:     api.UploadRequest{Filename: "data.csv", Delimiter: "ab"},
			body:    "a\n1\n",
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown encoding",
			req:     api.UploadRequest{Filename: "data.csv", Encoding: "ebcdic"},
			body:    "a\n1\n",
			wantErr: loader.ErrUnsupportedEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newSession(t)
			info, err := svc.Upload(context.Background(), sess, strings.NewReader(tt.body), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, dataErr := sess.Data()
				assert.ErrorIs(t, dataErr, session.ErrNoDataset, "failed uploads leave the session untouched")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows, info.Rows)
			assert.Equal(t, tt.cols, info.Cols)
			assert.Equal(t, tt.req.Filename, info.Source)
		})
	}
}

func TestDatasetServiceUploadTooLarge(t *testing.T) {
	cfg := config.Default()
	cfg.Upload.MaxSizeMB = 1
	svc := NewDatasetService(cfg, nil, nil, nil)

	body := bytes.Repeat([]byte("1\n"), 1<<20)
	_, err := svc.Upload(context.Background(), newSession(t), bytes.NewReader(body), api.UploadRequest{Filename: "big.csv"})
	assert.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestDatasetServiceUploadParseErrorIsTyped(t *testing.T) {
	svc := NewDatasetService(config.Default(), nil, nil, nil)

	_, err := svc.Upload(context.Background(), newSession(t), strings.NewReader("not a zip archive"),
		api.UploadRequest{Filename: "broken.xlsx"})
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeParsing, appErr.Type)
	assert.Equal(t, "broken.xlsx", appErr.Context["filename"])
}

func TestDatasetServiceSheets(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("extra")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	svc := NewDatasetService(config.Default(), nil, nil, nil)
	resp, err := svc.Sheets(context.Background(), "book.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "extra"}, resp.Sheets)

	_, err = svc.Sheets(context.Background(), "data.csv", strings.NewReader("a\n1\n"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDatasetServicePreviewAndInfo(t *testing.T) {
	svc := NewDatasetService(config.Default(), nil, nil, nil)
	empty := newSession(t)

	_, err := svc.Info(context.Background(), empty)
	assert.ErrorIs(t, err, session.ErrNoDataset)
	_, err = svc.Preview(context.Background(), empty, 5)
	assert.ErrorIs(t, err, session.ErrNoDataset)

	sess := loadSample(t, "weather")
	preview, err := svc.Preview(context.Background(), sess, 3)
	require.NoError(t, err)
	assert.Len(t, preview.Rows, 3)
	assert.Equal(t, 365, preview.Total)
	assert.Equal(t, []string{"date", "temperature", "humidity", "precipitation", "wind_speed"}, preview.Columns)

	preview, err = svc.Preview(context.Background(), sess, 0)
	require.NoError(t, err)
	assert.Len(t, preview.Rows, config.Default().Analysis.PreviewRows)
}

func TestDatasetServiceReset(t *testing.T) {
	notifier := &MockNotifier{}
	expectPublish(notifier)
	svc := NewDatasetService(config.Default(), notifier, nil, nil)
	pre := NewPreprocessService(notifier, nil, nil)

	sess := loadSample(t, "stock")
	_, err := pre.Apply(context.Background(), sess, DropConfig(api.DropRequest{Columns: []string{"volume"}}))
	require.NoError(t, err)

	info, err := svc.Reset(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 6, info.Cols)
	assert.Equal(t, 0, info.Steps)
	notifier.AssertCalled(t, "Publish", sess.ID, events.MessageTypeDatasetUpdated, mock.MatchedBy(func(d events.DatasetUpdated) bool {
		return d.Reason == events.ReasonReset
	}))

	_, err = svc.Reset(context.Background(), newSession(t))
	assert.ErrorIs(t, err, session.ErrNoDataset)
}

func TestDatasetServiceExport(t *testing.T) {
	svc := NewDatasetService(config.Default(), nil, nil, nil)
	sess := loadSample(t, "sales")

	var buf bytes.Buffer
	name, ctype, err := svc.Export(context.Background(), sess, FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, "processed_data.csv", name)
	assert.Equal(t, ContentTypeCSV, ctype)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), []byte("\xEF\xBB\xBF")))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 366)
	assert.Equal(t, "date", records[0][0])

	buf.Reset()
	name, ctype, err = svc.Export(context.Background(), sess, FormatXLSX, &buf)
	require.NoError(t, err)
	assert.Equal(t, "processed_data.xlsx", name)
	assert.Equal(t, ContentTypeXLSX, ctype)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	_, _, err = svc.Export(context.Background(), sess, FormatClusters, &buf)
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = NewAnalysisService(nil, nil, nil).Cluster(context.Background(), sess, api.ClusterRequest{
		Columns: []string{"sales", "product_a", "product_b"}, K: 3,
	})
	require.NoError(t, err)
	buf.Reset()
	name, _, err = svc.Export(context.Background(), sess, FormatClusters, &buf)
	require.NoError(t, err)
	assert.Equal(t, "clustering_results.csv", name)
	assert.Contains(t, buf.String(), analysis.ClusterColumn)

	_, _, err = svc.Export(context.Background(), sess, "parquet", &buf)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
