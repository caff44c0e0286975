// Package api contains the request and response contracts of the dashboard
// HTTP API. Version v1 is the current stable API version.
package api

// Dataset API Requests

// UploadRequest carries the form fields sent with an uploaded file
type UploadRequest struct {
	Filename  string `json:"filename" validate:"required,filename"`
	Encoding  string `json:"encoding,omitempty" validate:"omitempty,max=32"`
	Delimiter string `json:"delimiter,omitempty" validate:"omitempty,max=8"`
	Sheet     string `json:"sheet,omitempty" validate:"omitempty,max=31"`
}

// SampleRequest loads one of the bundled sample datasets
type SampleRequest struct {
	Name string `json:"name" validate:"required,oneof=sales stock weather"`
}

// Explore API Requests

// CorrelationRequest selects the numeric columns of a correlation matrix.
// An empty list means every numeric column.
type CorrelationRequest struct {
	Columns   []string `json:"columns,omitempty" validate:"omitempty,dive,colname"`
	Threshold float64  `json:"threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// ChartRequest describes an exploration chart
type ChartRequest struct {
	Kind    string   `json:"kind" validate:"required,oneof=line bar scatter histogram box pie heatmap"`
	X       string   `json:"x,omitempty" validate:"omitempty,colname"`
	Y       []string `json:"y,omitempty" validate:"omitempty,dive,colname"`
	Agg     string   `json:"agg,omitempty" validate:"omitempty,oneof=sum mean count median min max"`
	TopN    int      `json:"top_n,omitempty" validate:"omitempty,min=1,max=100"`
	Bins    int      `json:"bins,omitempty" validate:"omitempty,min=2,max=200"`
	Columns []string `json:"columns,omitempty" validate:"omitempty,dive,colname"`
}

// Preprocess API Requests

// ColumnsRequest converts, selects and renames columns
type ColumnsRequest struct {
	ConvertTypes map[string]string `json:"convert_types,omitempty" validate:"omitempty,dive,keys,colname,endkeys,oneof=numeric categorical datetime boolean"`
	Select       []string          `json:"select,omitempty" validate:"omitempty,dive,colname"`
	Rename       map[string]string `json:"rename,omitempty" validate:"omitempty,dive,keys,colname,endkeys,colname"`
}

// MissingRequest picks a missing-value method per column
type MissingRequest struct {
	Methods map[string]string `json:"methods" validate:"required,min=1,dive,keys,colname,endkeys,oneof=drop mean median mode zero forward backward"`
}

// OutliersRequest picks an outlier treatment per column
type OutliersRequest struct {
	Methods map[string]string `json:"methods" validate:"required,min=1,dive,keys,colname,endkeys,oneof=clip remove"`
}

// ScalingRequest scales numeric columns. Empty Columns scales every numeric column.
type ScalingRequest struct {
	Method  string   `json:"method" validate:"required,oneof=standard minmax robust"`
	Columns []string `json:"columns,omitempty" validate:"omitempty,dive,colname"`
}

// TextFeatures selects the derived features of a text column
type TextFeatures struct {
	Length    bool     `json:"length,omitempty"`
	WordCount bool     `json:"word_count,omitempty"`
	Contains  []string `json:"contains,omitempty" validate:"omitempty,max=20,dive,required,max=64"`
}

// FeatureRequest derives datetime or text features from columns
type FeatureRequest struct {
	Datetime map[string][]string     `json:"datetime,omitempty" validate:"omitempty,dive,keys,colname,endkeys,min=1,dive,oneof=year month day weekday quarter is_weekend"`
	Text     map[string]TextFeatures `json:"text,omitempty" validate:"omitempty,dive,keys,colname,endkeys"`
}

// BinningRequest cuts a numeric column into equal-width bins
type BinningRequest struct {
	Column string   `json:"column" validate:"required,colname"`
	NBins  int      `json:"n_bins" validate:"required,min=2,max=20"`
	Labels []string `json:"labels,omitempty" validate:"omitempty,dive,required"`
}

// EncodingRequest picks an encoder per categorical column
type EncodingRequest struct {
	Methods map[string]string `json:"methods" validate:"required,min=1,dive,keys,colname,endkeys,oneof=onehot label"`
}

// DropRequest removes columns
type DropRequest struct {
	Columns []string `json:"columns" validate:"required,min=1,dive,colname"`
}

// Analysis API Requests

// TimeSeriesRequest selects the date and value columns
type TimeSeriesRequest struct {
	DateColumn  string `json:"date_column" validate:"required,colname"`
	ValueColumn string `json:"value_column" validate:"required,colname"`
}

// ClusterRequest runs K-means over numeric columns
type ClusterRequest struct {
	Columns []string `json:"columns" validate:"required,min=2,dive,colname"`
	K       int      `json:"k" validate:"required,min=2,max=10"`
}

// DistributionRequest selects the column to analyse
type DistributionRequest struct {
	Column string `json:"column" validate:"required,colname"`
}

// Report API Requests

// ReportRequest selects the report title and sections. Nil flags default to true.
type ReportRequest struct {
	Title                string `json:"title" validate:"omitempty,max=200"`
	IncludePreview       *bool  `json:"include_preview,omitempty"`
	IncludeStats         *bool  `json:"include_stats,omitempty"`
	IncludePreprocessing *bool  `json:"include_preprocessing,omitempty"`
	IncludeAnalysis      *bool  `json:"include_analysis,omitempty"`
	IncludeInsights      *bool  `json:"include_insights,omitempty"`
	Save                 bool   `json:"save,omitempty"`
}
