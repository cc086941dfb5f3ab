package analysis

import "math"

// CalculateStdDev returns the standard deviation of values using
// Welford's single-pass algorithm. Returns 0 for an empty input.
func CalculateStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := 0.0
	s := 0.0
	k := 1
	for _, value := range values {
		oldM := m
		m += (value - oldM) / float64(k)
		s += (value - oldM) * (value - m)
		k++
	}
	return math.Sqrt(s / float64(k-1))
}

// LinearSlope fits a least-squares line through values indexed 1..n and
// returns its slope. Returns 0 with fewer than two points.
func LinearSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i + 1)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}
