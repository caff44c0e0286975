package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
	"github.com/sakura24999/data-analysis-dashboard/internal/stats"
)

// ErrInvalidParameter is returned for out-of-range analysis parameters
var ErrInvalidParameter = errors.New("invalid analysis parameter")

const (
	// MinClusters and MaxClusters bound k
	MinClusters = 2
	MaxClusters = 10
	// Seed makes clustering and subsampling reproducible
	Seed = 42
	// TopVariables is how many discriminating variables are reported
	TopVariables = 5
	// ClusterColumn is the column added by ClusterResult.Labelled
	ClusterColumn = "cluster"

	kmeansRestarts = 10
	kmeansMaxIter  = 300
	kmeansTol      = 1e-4
	// Kruskal-Wallis runs only when every cluster has more values than this
	minGroupSize = 5
)

// ClusterProfile summarises the original values of one cluster, one entry
// per analysed column
type ClusterProfile struct {
	Cluster int           `json:"cluster"`
	Size    int           `json:"size"`
	Mean    []stats.Float `json:"mean"`
	Std     []stats.Float `json:"std"`
	Min     []stats.Float `json:"min"`
	Max     []stats.Float `json:"max"`
}

// ClusterResult is the output of Cluster
type ClusterResult struct {
	Columns      []string                    `json:"columns"`
	K            int                         `json:"k"`
	Labels       []int                       `json:"labels"`
	Inertia      stats.Float                 `json:"inertia"`
	Iterations   int                         `json:"iterations"`
	Centroids    [][]stats.Float             `json:"centroids"`
	Profiles     []ClusterProfile            `json:"profiles"`
	PCA          *PCAResult                  `json:"pca,omitempty"`
	Kruskal      map[string]stats.TestResult `json:"kruskal"`
	TopVariables []string                    `json:"top_variables"`
}

// Cluster runs k-means on the standardized cols of ds. Missing values are
// replaced by the column mean before scaling. With more than two columns
// the scaled data is also projected on its first two principal components.
func Cluster(ctx context.Context, ds *dataset.Dataset, cols []string, k int) (*ClusterResult, error) {
	if k < MinClusters || k > MaxClusters {
		return nil, fmt.Errorf("%w: k must be between %d and %d, got %d", ErrInvalidParameter, MinClusters, MaxClusters, k)
	}
	if len(cols) < 2 {
		return nil, fmt.Errorf("%w: clustering needs at least two numeric columns", dataset.ErrInsufficientData)
	}

	raw := make([][]float64, len(cols))
	for j, name := range cols {
		c, err := ds.NumericColumn(name)
		if err != nil {
			return nil, err
		}
		raw[j] = c.Floats
	}
	n := ds.Rows()
	if n < k {
		return nil, fmt.Errorf("%w: %d rows for %d clusters", dataset.ErrInsufficientData, n, k)
	}

	x, err := standardize(cols, raw, n)
	if err != nil {
		return nil, err
	}

	fit, err := kmeans(ctx, x, k)
	if err != nil {
		return nil, err
	}

	res := &ClusterResult{
		Columns:    cols,
		K:          k,
		Labels:     fit.labels,
		Inertia:    stats.Float(fit.inertia),
		Iterations: fit.iterations,
		Centroids:  stats.MatrixOf(fit.centroids),
		Profiles:   profiles(raw, fit.labels, k),
		Kruskal:    make(map[string]stats.TestResult),
	}

	if len(cols) > 2 {
		if res.PCA, err = PCA(x, 2); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.TopVariables = rankVariables(res, raw)
	return res, nil
}

// Labelled returns a copy of ds with the cluster label of each row in
// ClusterColumn, or ClusterColumn_1, _2... when ds already has a column
// of that name. ds must be the dataset the clustering ran on.
func (r *ClusterResult) Labelled(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if ds.Rows() != len(r.Labels) {
		return nil, fmt.Errorf("%w: dataset has %d rows, clustering has %d labels",
			dataset.ErrLengthMismatch, ds.Rows(), len(r.Labels))
	}
	labels := make([]float64, len(r.Labels))
	for i, l := range r.Labels {
		labels[i] = float64(l)
	}
	out := ds.Clone()
	name := ClusterColumn
	for i := 1; out.Has(name); i++ {
		name = fmt.Sprintf("%s_%d", ClusterColumn, i)
	}
	if err := out.AddColumn(dataset.NewNumeric(name, labels)); err != nil {
		return nil, err
	}
	return out, nil
}

// standardize fills NaNs with the column mean and scales each column to
// mean 0 and population std 1, returning row-major data. Constant columns
// become 0.
func standardize(names []string, cols [][]float64, n int) ([][]float64, error) {
	x := make([][]float64, n)
	for i := range x {
		x[i] = make([]float64, len(cols))
	}
	for j, col := range cols {
		clean := stats.DropNaN(col)
		if len(clean) == 0 {
			return nil, fmt.Errorf("%w: %q has no values", dataset.ErrInsufficientData, names[j])
		}
		mean := stats.Mean(clean)

		filled := make([]float64, n)
		for i, v := range col {
			if math.IsNaN(v) {
				v = mean
			}
			filled[i] = v
		}
		std := stats.PopStdDev(filled)
		for i, v := range filled {
			if std == 0 {
				x[i][j] = 0
				continue
			}
			x[i][j] = (v - mean) / std
		}
	}
	return x, nil
}

type kmeansFit struct {
	labels     []int
	centroids  [][]float64
	inertia    float64
	iterations int
}

// kmeans keeps the lowest-inertia run out of kmeansRestarts k-means++
// initialisations.
func kmeans(ctx context.Context, x [][]float64, k int) (kmeansFit, error) {
	rng := rand.New(rand.NewPCG(Seed, Seed))
	best := kmeansFit{inertia: math.Inf(1)}
	for range kmeansRestarts {
		if err := ctx.Err(); err != nil {
			return kmeansFit{}, err
		}
		fit := lloyd(x, seedCentroids(x, k, rng))
		if fit.inertia < best.inertia {
			best = fit
		}
	}
	relabel(&best)
	return best, nil
}

// seedCentroids picks k initial centroids with the k-means++ D² weighting.
func seedCentroids(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(x)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, slices.Clone(x[rng.IntN(n)]))

	dist := make([]float64, n)
	for i, row := range x {
		dist[i] = sqDist(row, centroids[0])
	}
	for len(centroids) < k {
		next := 0
		if total := floats.Sum(dist); total == 0 {
			next = rng.IntN(n)
		} else {
			target := rng.Float64() * total
			for ; next < n-1; next++ {
				target -= dist[next]
				if target < 0 {
					break
				}
			}
		}
		c := slices.Clone(x[next])
		centroids = append(centroids, c)
		for i, row := range x {
			dist[i] = math.Min(dist[i], sqDist(row, c))
		}
	}
	return centroids
}

// lloyd iterates assignment and update steps until the centroids move less
// than kmeansTol in total squared distance.
func lloyd(x [][]float64, centroids [][]float64) kmeansFit {
	k, p := len(centroids), len(x[0])
	labels := make([]int, len(x))

	iter := 1
	for ; iter <= kmeansMaxIter; iter++ {
		for i, row := range x {
			labels[i] = nearest(row, centroids)
		}

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, p)
		}
		for i, row := range x {
			floats.Add(next[labels[i]], row)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range next {
			if counts[c] == 0 {
				// empty cluster: restart it on the worst-fitted point
				next[c] = slices.Clone(x[farthest(x, centroids, labels)])
			} else {
				floats.Scale(1/float64(counts[c]), next[c])
			}
			shift += sqDist(next[c], centroids[c])
		}
		centroids = next
		if shift <= kmeansTol {
			break
		}
	}

	inertia := 0.0
	for i, row := range x {
		labels[i] = nearest(row, centroids)
		inertia += sqDist(row, centroids[labels[i]])
	}
	return kmeansFit{
		labels:     labels,
		centroids:  centroids,
		inertia:    inertia,
		iterations: min(iter, kmeansMaxIter),
	}
}

// relabel numbers clusters by order of first appearance so results do not
// depend on which restart won.
func relabel(fit *kmeansFit) {
	mapping := make(map[int]int)
	for _, l := range fit.labels {
		if _, ok := mapping[l]; !ok {
			mapping[l] = len(mapping)
		}
	}
	for c := range fit.centroids {
		if _, ok := mapping[c]; !ok {
			mapping[c] = len(mapping)
		}
	}
	centroids := make([][]float64, len(fit.centroids))
	for old, c := range fit.centroids {
		centroids[mapping[old]] = c
	}
	for i, l := range fit.labels {
		fit.labels[i] = mapping[l]
	}
	fit.centroids = centroids
}

func nearest(row []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(row, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func farthest(x [][]float64, centroids [][]float64, labels []int) int {
	idx, far := 0, -1.0
	for i, row := range x {
		if d := sqDist(row, centroids[labels[i]]); d > far {
			idx, far = i, d
		}
	}
	return idx
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// groups splits col by cluster label, dropping missing values
func groups(col []float64, labels []int, k int) [][]float64 {
	out := make([][]float64, k)
	for i, v := range col {
		if !math.IsNaN(v) {
			out[labels[i]] = append(out[labels[i]], v)
		}
	}
	return out
}

func profiles(raw [][]float64, labels []int, k int) []ClusterProfile {
	out := make([]ClusterProfile, k)
	for c := range out {
		out[c] = ClusterProfile{
			Cluster: c,
			Mean:    make([]stats.Float, len(raw)),
			Std:     make([]stats.Float, len(raw)),
			Min:     make([]stats.Float, len(raw)),
			Max:     make([]stats.Float, len(raw)),
		}
	}
	for _, l := range labels {
		out[l].Size++
	}
	for j, col := range raw {
		for c, g := range groups(col, labels, k) {
			s := stats.Describe(g)
			out[c].Mean[j], out[c].Std[j], out[c].Min[j], out[c].Max[j] = s.Mean, s.Std, s.Min, s.Max
		}
	}
	return out
}

// rankVariables fills r.Kruskal and returns the columns that separate the
// clusters best (lowest p-value). Without any test result the first
// columns are returned.
func rankVariables(r *ClusterResult, raw [][]float64) []string {
	for j, name := range r.Columns {
		gs := groups(raw[j], r.Labels, r.K)
		if slices.ContainsFunc(gs, func(g []float64) bool { return len(g) <= minGroupSize }) {
			continue
		}
		res, err := stats.KruskalWallis(gs...)
		if err != nil {
			continue
		}
		r.Kruskal[name] = res
	}

	if len(r.Kruskal) == 0 {
		return slices.Clone(r.Columns[:min(TopVariables, len(r.Columns))])
	}
	ranked := make([]string, 0, len(r.Kruskal))
	for _, name := range r.Columns {
		if _, ok := r.Kruskal[name]; ok {
			ranked = append(ranked, name)
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return r.Kruskal[ranked[a]].PValue < r.Kruskal[ranked[b]].PValue
	})
	return ranked[:min(TopVariables, len(ranked))]
}
