// Package analysis provides statistical comparison of move performance.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Outcomes holds outcome counts for one move continuation.
type Outcomes struct {
	Move   string
	Wins   int64 // Wins for the side making the move.
	Losses int64
	Draws  int64
}

// Trials returns the total number of games.
func (o Outcomes) Trials() int64 {
	return o.Wins + o.Losses + o.Draws
}

// Score returns the classical score (win = 1, draw = 0.5) over all games.
func (o Outcomes) Score() float64 {
	n := o.Trials()
	if n == 0 {
		return 0
	}
	return (float64(o.Wins) + 0.5*float64(o.Draws)) / float64(n)
}

// WinRate returns the fraction of games won, or 0 for no games.
func (o Outcomes) WinRate() float64 {
	n := o.Trials()
	if n == 0 {
		return 0
	}
	return float64(o.Wins) / float64(n)
}

// TwoProportionResult contains the result of a two-proportion z-test.
type TwoProportionResult struct {
	Z           float64 // Z score.
	PValue      float64 // Two-tailed p-value.
	Significant bool    // True if p < 0.05.
}

// TwoProportionZTest tests whether two win proportions differ. Uses the
// pooled standard error under the null hypothesis of equal proportions.
func TwoProportionZTest(wins1, trials1, wins2, trials2 int64) *TwoProportionResult {
	n1 := float64(trials1)
	n2 := float64(trials2)
	if n1 == 0 || n2 == 0 {
		return &TwoProportionResult{PValue: 1}
	}

	p1 := float64(wins1) / n1
	p2 := float64(wins2) / n2
	pooled := (float64(wins1) + float64(wins2)) / (n1 + n2)

	se := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n2))

	z := 0.0
	if se > 0 {
		z = (p1 - p2) / se
	}

	pValue := 2 * normalCDF(-math.Abs(z))

	return &TwoProportionResult{
		Z:           z,
		PValue:      pValue,
		Significant: pValue < 0.05,
	}
}

// normalCDF computes the cumulative distribution function of the standard normal.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// Interval is a confidence interval for a proportion.
type Interval struct {
	Lower      float64
	Upper      float64
	Confidence float64
}

// WilsonInterval computes the Wilson score interval for a win proportion.
// Unlike the normal approximation it behaves sensibly for small samples
// and proportions near 0 or 1.
func WilsonInterval(wins, trials int64, confidence float64) Interval {
	if trials == 0 {
		return Interval{Lower: 0, Upper: 1, Confidence: confidence}
	}

	n := float64(trials)
	p := float64(wins) / n
	z := normalQuantile(1 - (1-confidence)/2)
	z2 := z * z

	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	margin := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denom

	return Interval{
		Lower:      math.Max(0, center-margin),
		Upper:      math.Min(1, center+margin),
		Confidence: confidence,
	}
}

// normalQuantile computes the standard normal quantile by bisection on
// the CDF. Accurate to well below any reporting precision we use.
func normalQuantile(p float64) float64 {
	lo, hi := -10.0, 10.0
	for i := 0; i < 80; i++ {
		mid := (lo + hi) / 2
		if normalCDF(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// DescriptiveStats contains basic descriptive statistics.
type DescriptiveStats struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Describe computes descriptive statistics for a sample, e.g. opponent
// ratings along a line.
func Describe(sample []float64) *DescriptiveStats {
	if len(sample) == 0 {
		return &DescriptiveStats{}
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	return &DescriptiveStats{
		N:      len(sample),
		Mean:   stat.Mean(sample, nil),
		Median: sorted[len(sorted)/2],
		StdDev: stat.StdDev(sample, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}
