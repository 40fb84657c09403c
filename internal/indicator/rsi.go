package indicator

import "math"

// RSI calculates the Relative Strength Index using trailing simple means of
// gains and losses (Cutler's method): the window mean of max(delta,0) over the
// window mean of max(-delta,0).
//
// Limit cases: zero average loss with a nonzero average gain reports 100
// (RS growing without bound must not produce NaN); a window with zero gain AND
// zero loss — a flat market — has no directional pressure and reports NaN.
type RSI struct {
	gains     *SMA
	losses    *SMA
	prevClose float64
	seeded    bool
}

// NewRSI creates a new RSI window with the given period (typically 14).
func NewRSI(period int) *RSI {
	return &RSI{
		gains:  NewSMA(period),
		losses: NewSMA(period),
	}
}

func (r *RSI) Update(closePrice float64) {
	if !r.seeded {
		// First bar — just record the close, no delta yet
		r.prevClose = closePrice
		r.seeded = true
		return
	}

	delta := closePrice - r.prevClose
	r.prevClose = closePrice

	gain := 0.0
	loss := 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}
	r.gains.Update(gain)
	r.losses.Update(loss)
}

// Value returns the current RSI in [0,100], or NaN until the window holds a
// full period of deltas or when the window is entirely flat.
func (r *RSI) Value() float64 {
	if !r.gains.Ready() {
		return math.NaN()
	}
	gain := r.gains.Value()
	loss := r.losses.Value()

	if loss == 0 {
		if gain == 0 {
			return math.NaN() // flat window, no directional pressure
		}
		return 100.0
	}

	rs := gain / loss
	return 100.0 - 100.0/(1.0+rs)
}

func (r *RSI) Ready() bool { return r.gains.Ready() }
