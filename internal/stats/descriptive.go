package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DropNaN returns the finite values of xs in their original order.
func DropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// Sorted returns a sorted copy of the finite values of xs.
func Sorted(xs []float64) []float64 {
	out := DropNaN(xs)
	sort.Float64s(out)
	return out
}

// Mean of the finite values; NaN when there are none.
func Mean(xs []float64) float64 {
	clean := DropNaN(xs)
	if len(clean) == 0 {
		return math.NaN()
	}
	return stat.Mean(clean, nil)
}

// StdDev is the sample standard deviation (ddof=1) of the finite values.
func StdDev(xs []float64) float64 {
	clean := DropNaN(xs)
	if len(clean) < 2 {
		return math.NaN()
	}
	return stat.StdDev(clean, nil)
}

// PopStdDev is the population standard deviation (ddof=0).
func PopStdDev(xs []float64) float64 {
	clean := DropNaN(xs)
	if len(clean) == 0 {
		return math.NaN()
	}
	_, v := stat.PopMeanVariance(clean, nil)
	return math.Sqrt(v)
}

// Median of the finite values
func Median(xs []float64) float64 {
	return Quantile(Sorted(xs), 0.5)
}

// Quantile computes the q-th quantile of sorted data with linear
// interpolation between closest ranks (numpy's default method).
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * q
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Summary is the pandas describe() row for one numeric column.
type Summary struct {
	Count int   `json:"count"`
	Mean  Float `json:"mean"`
	Std   Float `json:"std"`
	Min   Float `json:"min"`
	Q1    Float `json:"25%"`
	Q2    Float `json:"50%"`
	Q3    Float `json:"75%"`
	Max   Float `json:"max"`
}

// Describe summarises the finite values of xs.
func Describe(xs []float64) Summary {
	sorted := Sorted(xs)
	s := Summary{Count: len(sorted)}
	if len(sorted) == 0 {
		nan := Float(math.NaN())
		s.Mean, s.Std, s.Min, s.Q1, s.Q2, s.Q3, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	s.Mean = Float(stat.Mean(sorted, nil))
	s.Std = Float(math.NaN())
	if len(sorted) > 1 {
		s.Std = Float(stat.StdDev(sorted, nil))
	}
	s.Min = Float(sorted[0])
	s.Q1 = Float(Quantile(sorted, 0.25))
	s.Q2 = Float(Quantile(sorted, 0.5))
	s.Q3 = Float(Quantile(sorted, 0.75))
	s.Max = Float(sorted[len(sorted)-1])
	return s
}

// IQRBounds returns the Tukey fences Q1-1.5·IQR and Q3+1.5·IQR.
func IQRBounds(xs []float64) (lower, upper float64) {
	sorted := Sorted(xs)
	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr
}

// Skewness is the biased sample skewness g1 = m3 / m2^1.5.
func Skewness(xs []float64) float64 {
	clean := DropNaN(xs)
	if len(clean) == 0 {
		return math.NaN()
	}
	m2, m3, _ := centralMoments(clean)
	if m2 == 0 {
		return math.NaN()
	}
	return m3 / math.Pow(m2, 1.5)
}

// Kurtosis is the biased excess kurtosis g2 = m4 / m2² - 3.
func Kurtosis(xs []float64) float64 {
	clean := DropNaN(xs)
	if len(clean) == 0 {
		return math.NaN()
	}
	m2, _, m4 := centralMoments(clean)
	if m2 == 0 {
		return math.NaN()
	}
	return m4/(m2*m2) - 3
}

func centralMoments(xs []float64) (m2, m3, m4 float64) {
	mean := floats.Sum(xs) / float64(len(xs))
	for _, x := range xs {
		d := x - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	n := float64(len(xs))
	return m2 / n, m3 / n, m4 / n
}

// Pearson computes the correlation over rows where both values are finite.
// It returns NaN when fewer than two complete pairs exist or a side is constant.
func Pearson(x, y []float64) float64 {
	xs, ys := PairwiseComplete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	if floats.Max(xs) == floats.Min(xs) || floats.Max(ys) == floats.Min(ys) {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// PairwiseComplete keeps the positions where both x and y are finite.
func PairwiseComplete(x, y []float64) ([]float64, []float64) {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || math.IsInf(x[i], 0) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// Ranks assigns 1-based ranks, averaging ties.
func Ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
