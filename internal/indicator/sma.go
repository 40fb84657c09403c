// Package indicator provides rolling technical indicator calculations over
// OHLCV bars.
//
// All windows are simple trailing windows ending at the current bar. A window
// that is not yet full reports NaN; callers check model.Defined before
// consuming a value.
package indicator

import "math"

// SMA calculates a simple moving average over a rolling window.
// Uses a preallocated circular buffer for zero-allocation updates.
type SMA struct {
	period int
	buf    []float64 // preallocated circular buffer
	idx    int       // current write position
	count  int       // total values received
	sum    float64
}

// NewSMA creates a new SMA window with the given period.
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
		buf:    make([]float64, period),
	}
}

func (s *SMA) Update(v float64) {
	if s.count >= s.period {
		// Subtract the oldest value being overwritten
		s.sum -= s.buf[s.idx]
	}

	s.buf[s.idx] = v
	s.sum += v
	s.idx = (s.idx + 1) % s.period
	s.count++
}

// Value returns the current window mean, or NaN until the window is full.
func (s *SMA) Value() float64 {
	if s.count < s.period {
		return math.NaN()
	}
	return s.sum / float64(s.period)
}

func (s *SMA) Ready() bool { return s.count >= s.period }
