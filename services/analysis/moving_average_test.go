package analysis

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSimpleMovingAverageEmptyWindow(t *testing.T) {
	sma := NewSimpleMovingAverage(5)
	if got := sma.Calculate(); got != 0 {
		t.Fatalf("empty window Calculate() = %v, want 0", got)
	}
}

func TestSimpleMovingAveragePartialWindow(t *testing.T) {
	sma := NewSimpleMovingAverage(5)
	sma.Push(10)
	sma.Push(20)
	if got := sma.Calculate(); !almostEqual(got, 15) {
		t.Fatalf("Calculate() = %v, want 15", got)
	}
}

func TestSimpleMovingAverageEvictsOldest(t *testing.T) {
	sma := NewSimpleMovingAverage(3)
	sma.PushAll([]float64{1, 2, 3, 4, 5, 6, 7})
	// Only the last three values should remain.
	if got := sma.Calculate(); !almostEqual(got, 6) {
		t.Fatalf("Calculate() = %v, want 6", got)
	}
}

func TestSimpleMovingAverageClear(t *testing.T) {
	sma := NewSimpleMovingAverage(3)
	sma.PushAll([]float64{1, 2, 3})
	sma.Clear()
	if got := sma.Calculate(); got != 0 {
		t.Fatalf("Calculate() after Clear() = %v, want 0", got)
	}
	sma.Push(9)
	if got := sma.Calculate(); !almostEqual(got, 9) {
		t.Fatalf("Calculate() = %v, want 9", got)
	}
}

func TestExponentialMovingAverageWarmupPhases(t *testing.T) {
	ema := NewExponentialMovingAverage(3)

	// First period-1 calls return the not-yet-warm sentinel.
	if got := ema.Calculate(1); got != 0 {
		t.Fatalf("call 1 = %v, want 0", got)
	}
	if got := ema.Calculate(2); got != 0 {
		t.Fatalf("call 2 = %v, want 0", got)
	}

	// Call period emits the simple average seed.
	if got := ema.Calculate(3); !almostEqual(got, 2) {
		t.Fatalf("call 3 = %v, want 2", got)
	}

	// Thereafter the recurrence applies with alpha = 2/(3+1) = 0.5.
	if got := ema.Calculate(4); !almostEqual(got, 3) {
		t.Fatalf("call 4 = %v, want 3", got)
	}
	if got := ema.Calculate(5); !almostEqual(got, 4) {
		t.Fatalf("call 5 = %v, want 4", got)
	}
}

func TestExponentialMovingAverageMatchesRecurrence(t *testing.T) {
	const period = 12
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i + 1)
	}

	ema := NewExponentialMovingAverage(period)
	alpha := 2 / (float64(period) + 1)

	var prev float64
	for i, v := range values {
		got := ema.Calculate(v)
		call := i + 1
		switch {
		case call < period:
			if got != 0 {
				t.Fatalf("call %d = %v, want warm-up 0", call, got)
			}
		case call == period:
			// Simple mean of the first period values: (1+..+12)/12.
			want := 6.5
			if !almostEqual(got, want) {
				t.Fatalf("call %d = %v, want seed %v", call, got, want)
			}
			prev = got
		default:
			want := prev + alpha*(v-prev)
			if !almostEqual(got, want) {
				t.Fatalf("call %d = %v, want %v", call, got, want)
			}
			prev = want
		}
	}
}

func TestCalculateStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := CalculateStdDev(values); !almostEqual(got, 2) {
		t.Fatalf("CalculateStdDev = %v, want 2", got)
	}
}

func TestCalculateStdDevEmpty(t *testing.T) {
	if got := CalculateStdDev(nil); got != 0 {
		t.Fatalf("CalculateStdDev(nil) = %v, want 0", got)
	}
}

func TestLinearSlope(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"ascending", []float64{1, 2, 3, 4}, 1},
		{"descending", []float64{4, 3, 2, 1}, -1},
		{"flat", []float64{5, 5, 5, 5}, 0},
		{"too short", []float64{5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinearSlope(tt.values); !almostEqual(got, tt.want) {
				t.Fatalf("LinearSlope(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}
