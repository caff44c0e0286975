package analysis

// Kind names an analysis
type Kind string

const (
	KindTimeSeries   Kind = "timeseries"
	KindCorrelation  Kind = "correlation"
	KindCluster      Kind = "cluster"
	KindDistribution Kind = "distribution"
)

// Results holds the latest result of each analysis run in a session
type Results struct {
	TimeSeries   *TimeSeriesResult   `json:"time_series,omitempty"`
	Correlation  *CorrelationResult  `json:"correlation,omitempty"`
	Cluster      *ClusterResult      `json:"cluster,omitempty"`
	Distribution *DistributionResult `json:"distribution,omitempty"`
}

// Empty reports whether no analysis has run
func (r Results) Empty() bool {
	return r.TimeSeries == nil && r.Correlation == nil && r.Cluster == nil && r.Distribution == nil
}
