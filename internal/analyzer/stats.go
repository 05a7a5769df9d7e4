package analyzer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// clamp bounds a score into [0,100].
func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// popStdDev returns the population standard deviation.
func popStdDev(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	m := stat.Mean(xs, nil)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}

// coefficientOfVariation returns stddev/mean. ok is false when the mean is
// not strictly positive.
func coefficientOfVariation(xs []float64) (cv float64, ok bool) {
	if len(xs) == 0 {
		return 0, false
	}
	m := stat.Mean(xs, nil)
	if m <= 0 {
		return 0, false
	}
	return popStdDev(xs) / m, true
}

// normalizedEntropy computes the Shannon entropy of the count distribution,
// normalized against the maximum entropy of maxCategories equiprobable
// categories. Returns a value in [0,1].
func normalizedEntropy(counts []float64, maxCategories int) float64 {
	total := floats.Sum(counts)
	if total <= 0 || maxCategories < 2 {
		return 0
	}
	p := make([]float64, len(counts))
	for i, c := range counts {
		p[i] = c / total
	}
	entropy := stat.Entropy(p)
	maxEntropy := math.Log(float64(maxCategories))
	if maxEntropy == 0 {
		return 0
	}
	v := entropy / maxEntropy
	return math.Max(0, math.Min(1, v))
}
