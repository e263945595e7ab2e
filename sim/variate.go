package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonPositiveRate is returned when an exponential variate is sampled
// with a rate that is not strictly positive.
var ErrNonPositiveRate = errors.New("rate must be positive")

// Exponential draws exponentially distributed inter-event times.
type Exponential struct {
	Rate   float64
	Source UniformSource
}

// NewExponential creates an Exponential variate over src.
func NewExponential(rate float64, src UniformSource) *Exponential {
	if src == nil {
		panic("NewExponential: source must not be nil")
	}
	return &Exponential{Rate: rate, Source: src}
}

// Sample returns -ln(u)/rate for u in (0,1].
// A non-positive (or NaN) rate yields +Inf and ErrNonPositiveRate; callers
// must not schedule anything with that value.
func (e *Exponential) Sample() (float64, error) {
	if !(e.Rate > 0) {
		return math.Inf(1), fmt.Errorf("exponential sample with rate %v: %w", e.Rate, ErrNonPositiveRate)
	}
	u := 1 - e.Source.Float64()
	return -math.Log(u) / e.Rate, nil
}
