package api

import "time"

// ColumnInfo describes one column of the loaded dataset
type ColumnInfo struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	NonNull    int     `json:"non_null"`
	Missing    int     `json:"missing"`
	MissingPct float64 `json:"missing_pct"`
	Unique     int     `json:"unique"`
	Sample     string  `json:"sample"`
}

// DatasetInfo is returned after a load and by GET /api/dataset
type DatasetInfo struct {
	Source       string       `json:"source"`
	Rows         int          `json:"rows"`
	Cols         int          `json:"cols"`
	OriginalRows int          `json:"original_rows"`
	OriginalCols int          `json:"original_cols"`
	MemoryBytes  int64        `json:"memory_bytes"`
	Missing      int          `json:"missing"`
	Steps        int          `json:"steps"`
	Columns      []ColumnInfo `json:"columns"`
}

// PreviewResponse holds the first rows of the processed dataset
type PreviewResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

// SheetsResponse lists the sheets of an uploaded workbook
type SheetsResponse struct {
	Filename string   `json:"filename"`
	Sheets   []string `json:"sheets"`
}

// SamplesResponse lists the bundled sample datasets
type SamplesResponse struct {
	Samples []string `json:"samples"`
}

// StepResponse describes one applied preprocessing step
type StepResponse struct {
	Index     int         `json:"index"`
	Name      string      `json:"name"`
	Config    interface{} `json:"config"`
	AppliedAt time.Time   `json:"applied_at"`
	RowsAfter int         `json:"rows_after"`
	ColsAfter int         `json:"cols_after"`
}

// PreprocessResponse is returned after a preprocessing step
type PreprocessResponse struct {
	Step    StepResponse `json:"step"`
	Dataset DatasetInfo  `json:"dataset"`
}

// HistoryResponse lists the applied steps and the shape change they caused
type HistoryResponse struct {
	Steps        []StepResponse `json:"steps"`
	OriginalRows int            `json:"original_rows"`
	OriginalCols int            `json:"original_cols"`
	Rows         int            `json:"rows"`
	Cols         int            `json:"cols"`
}

// AnalysisResponse wraps the result of one analysis
type AnalysisResponse struct {
	Kind       string      `json:"kind"`
	DurationMS float64     `json:"duration_ms"`
	Result     interface{} `json:"result"`
}

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one readiness check
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
