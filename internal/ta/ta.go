package ta

import "math"

// EMA returns the exponential moving average series of vals with the given span.
// alpha = 2/(span+1) and the series is seeded with the first value, so out[0] == vals[0].
func EMA(vals []float64, span int) []float64 {
	if span <= 0 || len(vals) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(vals))
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = alpha*vals[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MinFloat returns the smallest value in vals, NaN on empty input.
func MinFloat(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Mean returns the arithmetic mean of vals, NaN on empty input.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
