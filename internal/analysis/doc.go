// Package analysis implements the advanced analyses offered by the dashboard.
//
// Four analyses are available:
//
// TimeSeries: moving averages, additive seasonal decomposition and
// autocorrelation of one value column ordered by a date column.
//
// CorrelationAnalysis: Pearson matrix, strong pairs and least-squares
// trend lines for the strongest pairs.
//
// Cluster: k-means on standardized columns with per-cluster statistics,
// a two component PCA projection and Kruskal-Wallis ranking of the
// variables that best separate the clusters.
//
// Distribution: descriptive statistics, shape, histogram, QQ points and
// normality tests for a numeric column, or value counts otherwise.
//
// Results are plain structs that serialise to JSON; NaN values are
// encoded as null through stats.Float.
//
// Example usage:
//
//	res, err := analysis.Cluster(ctx, ds, []string{"sales", "product_a", "product_b"}, 3)
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Inertia, res.PCA.ExplainedVariance)
package analysis
