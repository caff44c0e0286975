package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RollingMean is a trailing moving average; the first window-1 entries are NaN.
func RollingMean(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}

// CenteredMean is the centred moving average used for a classical
// decomposition trend. Even windows use the 2×m filter with half weights
// at both ends; the edges are NaN.
func CenteredMean(xs []float64, window int) []float64 {
	n := len(xs)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	var weights []float64
	if window%2 == 1 {
		weights = make([]float64, window)
		for i := range weights {
			weights[i] = 1 / float64(window)
		}
	} else {
		weights = make([]float64, window+1)
		for i := range weights {
			weights[i] = 1 / float64(window)
		}
		weights[0] /= 2
		weights[window] /= 2
	}

	half := len(weights) / 2
	for i := half; i < n-half; i++ {
		sum := 0.0
		for j, w := range weights {
			sum += w * xs[i-half+j]
		}
		out[i] = sum
	}
	return out
}

// Decomposition is an additive seasonal decomposition.
type Decomposition struct {
	Trend    []float64
	Seasonal []float64
	Residual []float64
}

// Decompose splits xs into trend, seasonal and residual parts for the given
// period. It needs at least two full periods.
func Decompose(xs []float64, period int) (Decomposition, error) {
	n := len(xs)
	if period < 2 || n < 2*period {
		return Decomposition{}, ErrTooFewValues
	}

	trend := CenteredMean(xs, period)
	detrended := make([]float64, n)
	for i := range xs {
		detrended[i] = xs[i] - trend[i]
	}

	phase := make([]float64, period)
	for p := 0; p < period; p++ {
		sum, count := 0.0, 0
		for i := p; i < n; i += period {
			if !math.IsNaN(detrended[i]) {
				sum += detrended[i]
				count++
			}
		}
		if count > 0 {
			phase[p] = sum / float64(count)
		}
	}
	avg := stat.Mean(phase, nil)
	for p := range phase {
		phase[p] -= avg
	}

	seasonal := make([]float64, n)
	resid := make([]float64, n)
	for i := range xs {
		seasonal[i] = phase[i%period]
		resid[i] = xs[i] - trend[i] - seasonal[i]
	}
	return Decomposition{Trend: trend, Seasonal: seasonal, Residual: resid}, nil
}

// ACF returns the sample autocorrelation for lags 0..nlags.
func ACF(xs []float64, nlags int) []float64 {
	n := len(xs)
	if n == 0 {
		return nil
	}
	if nlags >= n {
		nlags = n - 1
	}
	mean := stat.Mean(xs, nil)
	denom := 0.0
	for _, x := range xs {
		denom += (x - mean) * (x - mean)
	}

	acf := make([]float64, nlags+1)
	for k := 0; k <= nlags; k++ {
		if denom == 0 {
			acf[k] = math.NaN()
			continue
		}
		sum := 0.0
		for t := 0; t < n-k; t++ {
			sum += (xs[t] - mean) * (xs[t+k] - mean)
		}
		acf[k] = sum / denom
	}
	return acf
}

// PACF returns the partial autocorrelation for lags 0..nlags computed from
// the ACF by the Durbin-Levinson recursion.
func PACF(xs []float64, nlags int) []float64 {
	acf := ACF(xs, nlags)
	if len(acf) == 0 {
		return nil
	}
	nlags = len(acf) - 1

	pacf := make([]float64, nlags+1)
	pacf[0] = 1
	if nlags == 0 {
		return pacf
	}

	phi := make([]float64, nlags+1)
	prev := make([]float64, nlags+1)
	phi[1] = acf[1]
	pacf[1] = acf[1]
	for k := 2; k <= nlags; k++ {
		copy(prev, phi)
		num, den := acf[k], 1.0
		for j := 1; j < k; j++ {
			num -= prev[j] * acf[k-j]
			den -= prev[j] * acf[j]
		}
		if den == 0 {
			pacf[k] = math.NaN()
			continue
		}
		phi[k] = num / den
		for j := 1; j < k; j++ {
			phi[j] = prev[j] - phi[k]*prev[k-j]
		}
		pacf[k] = phi[k]
	}
	return pacf
}

// ConfidenceBand is the ±1.96/√n white-noise band for ACF plots.
func ConfidenceBand(n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return 1.96 / math.Sqrt(float64(n))
}

// Fit is a least-squares line y = Slope·x + Intercept.
type Fit struct {
	Slope     Float `json:"slope"`
	Intercept Float `json:"intercept"`
	RSquared  Float `json:"r_squared"`
}

// LinearFit fits an OLS line over pairwise-complete observations.
func LinearFit(x, y []float64) (Fit, error) {
	xs, ys := PairwiseComplete(x, y)
	if len(xs) < 2 {
		return Fit{}, ErrTooFewValues
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, intercept, slope)
	return Fit{Slope: Float(slope), Intercept: Float(intercept), RSquared: Float(r2)}, nil
}

// Histogram holds equal-width bin edges and counts.
type Histogram struct {
	Edges  []Float `json:"edges"`
	Counts []int   `json:"counts"`
}

// NewHistogram bins the finite values of xs into equal-width bins between
// min and max. The last bin is closed on the right.
func NewHistogram(xs []float64, bins int) Histogram {
	x := Sorted(xs)
	if len(x) == 0 || bins < 1 {
		return Histogram{}
	}
	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)

	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi

	counts := make([]int, bins)
	for _, v := range x {
		i := sort.SearchFloat64s(edges, v)
		// SearchFloat64s gives the first edge >= v; values on an inner edge
		// belong to the bin on its right.
		switch {
		case i == 0:
		case i < len(edges) && edges[i] == v:
		default:
			i--
		}
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return Histogram{Edges: FloatsOf(edges), Counts: counts}
}
