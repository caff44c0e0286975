package loader

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sakura24999/data-analysis-dashboard/internal/dataset"
)

// SampleSeed makes every generated sample reproducible
const SampleSeed = 42

// ErrUnknownSample is returned for a sample name not in SampleNames
var ErrUnknownSample = errors.New("unknown sample dataset")

var samples = map[string]func(*rand.Rand) *dataset.Dataset{
	"sales":   salesSample,
	"stock":   stockSample,
	"weather": weatherSample,
}

// SampleNames lists the built-in datasets
func SampleNames() []string {
	return []string{"sales", "stock", "weather"}
}

// Sample generates a built-in dataset. The same name always yields the same data.
func Sample(name string) (*dataset.Dataset, error) {
	gen, ok := samples[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSample, name)
	}
	return gen(rand.New(rand.NewPCG(SampleSeed, SampleSeed))), nil
}

func normal(rng *rand.Rand, mean, std float64) float64 {
	return mean + std*rng.NormFloat64()
}

func normals(rng *rand.Rand, n int, mean, std float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = normal(rng, mean, std)
	}
	return out
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// dailyRange returns every day of 2023
func dailyRange() []time.Time {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// businessRange returns the weekdays of 2023
func businessRange() []time.Time {
	var days []time.Time
	for _, d := range dailyRange() {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
	}
	return days
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// salesSample is a year of daily sales with weekly, monthly and seasonal effects.
func salesSample(rng *rand.Rand) *dataset.Dataset {
	dates := dailyRange()
	n := len(dates)
	sales := normals(rng, n, 1000, 200)
	a := normals(rng, n, 500, 100)
	b := normals(rng, n, 300, 80)
	c := normals(rng, n, 200, 50)

	for i, d := range dates {
		if isWeekend(d) {
			sales[i] *= 1.5
			a[i] *= 1.3
			b[i] *= 1.7
			c[i] *= 1.4
		}
		if d.Day() <= 5 {
			sales[i] *= 1.2
		}
		switch d.Month() {
		case time.June, time.July, time.August:
			sales[i] *= 1.1
			a[i] *= 1.3
		case time.November, time.December, time.January:
			sales[i] *= 1.2
			b[i] *= 1.4
		}
	}

	return dataset.MustNew(
		dataset.NewDatetime("date", dates, nil),
		dataset.NewNumeric("sales", sales),
		dataset.NewNumeric("product_a", a),
		dataset.NewNumeric("product_b", b),
		dataset.NewNumeric("product_c", c),
	)
}

// stockSample is a geometric random walk over business days with OHLCV columns.
func stockSample(rng *rand.Rand) *dataset.Dataset {
	dates := businessRange()
	n := len(dates)

	closes := make([]float64, n)
	price := 1000.0
	for i := range closes {
		price *= 1 + normal(rng, 0.0005, 0.015)
		closes[i] = price
	}

	volume := make([]float64, n)
	for i := range volume {
		volume[i] = math.Max(math.Round(normal(rng, 1_000_000, 200_000)), 0)
	}

	opens := make([]float64, n)
	for i := range opens {
		opens[i] = closes[i] * normal(rng, 0.995, 0.002)
	}

	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := range highs {
		highs[i] = math.Max(opens[i], closes[i]) * uniform(rng, 1.001, 1.015)
		lows[i] = math.Min(opens[i], closes[i]) * uniform(rng, 0.985, 0.999)
	}

	return dataset.MustNew(
		dataset.NewDatetime("date", dates, nil),
		dataset.NewNumeric("open", opens),
		dataset.NewNumeric("high", highs),
		dataset.NewNumeric("low", lows),
		dataset.NewNumeric("close", closes),
		dataset.NewNumeric("volume", volume),
	)
}

// weatherSample has a sinusoidal temperature cycle, humidity moving against
// it, humidity-driven rain and gamma-distributed wind.
func weatherSample(rng *rand.Rand) *dataset.Dataset {
	dates := dailyRange()
	n := len(dates)
	temp := make([]float64, n)
	hum := make([]float64, n)
	rain := make([]float64, n)
	wind := make([]float64, n)

	for i, d := range dates {
		seasonal := 10 * math.Sin(2*math.Pi*(float64(d.YearDay())/365.25-0.25))
		temp[i] = 15 + seasonal + normal(rng, 0, 2)
		hum[i] = math.Max(math.Min(70-seasonal+normal(rng, 0, 5), 100), 10)

		if rng.Float64() < hum[i]/100*0.3 {
			rain[i] = 5 * rng.ExpFloat64()
		}

		// Gamma(shape 2, scale 1.5) as the sum of two exponentials with mean 1.5
		wind[i] = 1.5*rng.ExpFloat64() + 1.5*rng.ExpFloat64()
	}

	return dataset.MustNew(
		dataset.NewDatetime("date", dates, nil),
		dataset.NewNumeric("temperature", temp),
		dataset.NewNumeric("humidity", hum),
		dataset.NewNumeric("precipitation", rain),
		dataset.NewNumeric("wind_speed", wind),
	)
}
