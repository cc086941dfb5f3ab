package analysis

// ExponentialMovingAverage computes an EMA over values pushed one at a
// time in chronological order. The smoothing factor is 2/(period+1).
//
// The first period-1 calls only accumulate into the simple-average seed
// and return 0. The period-th call returns the simple average of the
// values seen so far, which seeds the EMA. Every later call returns
// prev + alpha*(value-prev). Instances are single-use; start a new one
// rather than reusing after a series ends.
type ExponentialMovingAverage struct {
	period  int
	alpha   float64
	counter int
	seeded  bool
	prev    float64
	seed    *SimpleMovingAverage
}

// NewExponentialMovingAverage creates an EMA with the given period.
func NewExponentialMovingAverage(period int) *ExponentialMovingAverage {
	return &ExponentialMovingAverage{
		period: period,
		alpha:  2 / (float64(period) + 1),
		seed:   NewSimpleMovingAverage(period),
	}
}

// Calculate pushes the next chronological value and returns the EMA,
// or 0 while the average is still warming up.
func (ema *ExponentialMovingAverage) Calculate(value float64) float64 {
	ema.counter++
	if ema.counter < ema.period {
		ema.seed.Push(value)
		return 0
	}

	if ema.counter == ema.period {
		ema.seed.Push(value)
		sma := ema.seed.Calculate()
		ema.prev = sma
		ema.seeded = true
		return sma
	}

	if !ema.seeded {
		ema.prev = value
		ema.seeded = true
		return value
	}
	next := ema.prev + ema.alpha*(value-ema.prev)
	ema.prev = next
	return next
}
