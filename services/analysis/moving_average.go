package analysis

// SimpleMovingAverage keeps a bounded trailing window of values and
// averages them. Once the window is full the oldest value is evicted.
type SimpleMovingAverage struct {
	period int
	values []float64
}

// NewSimpleMovingAverage creates a window holding at most period values.
func NewSimpleMovingAverage(period int) *SimpleMovingAverage {
	return &SimpleMovingAverage{
		period: period,
		values: make([]float64, 0, period),
	}
}

// Push adds a value, evicting the oldest when the window is full.
func (sma *SimpleMovingAverage) Push(value float64) {
	if len(sma.values) == sma.period {
		sma.values = sma.values[1:]
	}
	sma.values = append(sma.values, value)
}

// PushAll pushes a slice of values in order.
func (sma *SimpleMovingAverage) PushAll(values []float64) {
	for _, v := range values {
		sma.Push(v)
	}
}

// Clear empties the window.
func (sma *SimpleMovingAverage) Clear() {
	sma.values = sma.values[:0]
}

// Calculate returns the arithmetic mean of the held values,
// or 0 when the window is empty.
func (sma *SimpleMovingAverage) Calculate() float64 {
	if len(sma.values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range sma.values {
		sum += v
	}
	return sum / float64(len(sma.values))
}
