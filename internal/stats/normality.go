package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrTooFewValues is returned when a test needs more observations.
var ErrTooFewValues = errors.New("too few values for test")

// ErrConstant is returned when all values are equal.
var ErrConstant = errors.New("values are constant")

// TestResult holds a test statistic and its p-value.
type TestResult struct {
	Statistic Float `json:"statistic"`
	PValue    Float `json:"p_value"`
}

// Shapiro-Wilk polynomial coefficients (Royston 1995, algorithm AS R94).
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilk tests the null hypothesis that xs was drawn from a normal
// distribution. It needs 3 <= n <= 5000 finite values.
func ShapiroWilk(xs []float64) (TestResult, error) {
	x := Sorted(xs)
	n := len(x)
	if n < 3 {
		return TestResult{}, ErrTooFewValues
	}
	if n > 5000 {
		return TestResult{}, errors.New("shapiro-wilk supports at most 5000 values")
	}
	if x[n-1]-x[0] < 1e-19 {
		return TestResult{}, ErrConstant
	}

	a := swCoefficients(n)

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	num, ssq := 0.0, 0.0
	for i, c := range a {
		num += c * (x[n-1-i] - x[i])
	}
	for _, v := range x {
		ssq += (v - mean) * (v - mean)
	}
	w := math.Min(num*num/ssq, 1)

	return TestResult{Statistic: Float(w), PValue: Float(swPValue(w, n))}, nil
}

// swCoefficients returns the first n/2 weights; the full vector is antisymmetric.
func swCoefficients(n int) []float64 {
	nn2 := n / 2
	a := make([]float64, nn2)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	m := make([]float64, nn2)
	summ2 := 0.0
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (an + 0.25))
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)

	a1 := poly(swC1, rsn) - m[0]/ssumm2
	a[0] = a1

	start := 1
	var fac float64
	if n > 5 {
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
		start = 2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	for i := start; i < nn2; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func swPValue(w float64, n int) float64 {
	if n == 3 {
		const pi6, stqr = 6 / math.Pi, math.Pi / 3
		return math.Max(pi6*(math.Asin(math.Sqrt(w))-stqr), 0)
	}
	if w >= 1 {
		return 1
	}

	an := float64(n)
	y := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		mu = poly(swC3, an)
		sigma = math.Exp(poly(swC4, an))
	} else {
		ln := math.Log(an)
		mu = poly(swC5, ln)
		sigma = math.Exp(poly(swC6, ln))
	}
	return distuv.UnitNormal.Survival((y - mu) / sigma)
}

// poly evaluates c[0] + c[1]x + c[2]x² + ...
func poly(c []float64, x float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}

// DAgostinoK2 is the omnibus normality test combining skewness and kurtosis
// z-scores (scipy.stats.normaltest). It needs at least 8 finite values.
func DAgostinoK2(xs []float64) (TestResult, error) {
	x := DropNaN(xs)
	n := float64(len(x))
	if len(x) < 8 {
		return TestResult{}, ErrTooFewValues
	}
	m2, m3, m4 := centralMoments(x)
	if m2 == 0 {
		return TestResult{}, ErrConstant
	}

	// skewness z-score
	b1 := m3 / math.Pow(m2, 1.5)
	y := b1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	if y == 0 {
		y = 1
	}
	zs := delta * math.Log(y/alpha+math.Sqrt((y/alpha)*(y/alpha)+1))

	// kurtosis z-score
	b2 := m4 / (m2 * m2)
	e := 3 * (n - 1) / (n + 1)
	varb2 := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	xk := (b2 - e) / math.Sqrt(varb2)
	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term1 := 1 - 2/(9*a)
	denom := 1 + xk*math.Sqrt(2/(a-4))
	if denom == 0 {
		return TestResult{}, errors.New("kurtosis test undefined")
	}
	term2 := math.Copysign(math.Cbrt(math.Abs((1-2/a)/denom)), denom)
	zk := (term1 - term2) / math.Sqrt(2/(9*a))

	k2 := zs*zs + zk*zk
	p := distuv.ChiSquared{K: 2}.Survival(k2)
	return TestResult{Statistic: Float(k2), PValue: Float(p)}, nil
}

// KruskalWallis performs the H test on two or more groups, with tie correction.
func KruskalWallis(groups ...[]float64) (TestResult, error) {
	var pooled []float64
	var sizes []int
	for _, g := range groups {
		clean := DropNaN(g)
		if len(clean) == 0 {
			continue
		}
		pooled = append(pooled, clean...)
		sizes = append(sizes, len(clean))
	}
	if len(sizes) < 2 {
		return TestResult{}, ErrTooFewValues
	}

	ranks := Ranks(pooled)
	total := float64(len(pooled))

	h, off := 0.0, 0
	for _, size := range sizes {
		sum := 0.0
		for _, r := range ranks[off : off+size] {
			sum += r
		}
		h += sum * sum / float64(size)
		off += size
	}
	h = 12/(total*(total+1))*h - 3*(total+1)

	ties := tieSum(pooled)
	c := 1 - ties/(total*total*total-total)
	if c == 0 {
		return TestResult{}, ErrConstant
	}
	h /= c

	p := distuv.ChiSquared{K: float64(len(sizes) - 1)}.Survival(h)
	return TestResult{Statistic: Float(h), PValue: Float(p)}, nil
}

// tieSum returns Σ(t³ - t) over tie groups.
func tieSum(xs []float64) float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	sum := 0.0
	for i := 0; i < len(s); {
		j := i
		for j+1 < len(s) && s[j+1] == s[i] {
			j++
		}
		t := float64(j - i + 1)
		sum += t*t*t - t
		i = j + 1
	}
	return sum
}

// QQPoint pairs a theoretical normal quantile with an ordered sample value.
type QQPoint struct {
	Theoretical Float `json:"theoretical"`
	Sample      Float `json:"sample"`
}

// QQPoints returns normal probability plot points using Filliben's
// order statistic medians, like scipy.stats.probplot.
func QQPoints(xs []float64) []QQPoint {
	x := Sorted(xs)
	n := len(x)
	if n == 0 {
		return nil
	}
	pts := make([]QQPoint, n)
	for i := range x {
		var m float64
		switch {
		case i == n-1:
			m = math.Pow(0.5, 1/float64(n))
		case i == 0:
			m = 1 - math.Pow(0.5, 1/float64(n))
		default:
			m = (float64(i+1) - 0.3175) / (float64(n) + 0.365)
		}
		pts[i] = QQPoint{Theoretical: Float(distuv.UnitNormal.Quantile(m)), Sample: Float(x[i])}
	}
	return pts
}
