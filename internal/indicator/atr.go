package indicator

import "math"

// ATR calculates the Average True Range as a trailing simple mean of the
// per-bar True Range: max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close, so its TR reduces to high-low.
type ATR struct {
	tr        *SMA
	prevClose float64
	seeded    bool
}

// NewATR creates a new ATR window with the given period (typically 14).
func NewATR(period int) *ATR {
	return &ATR{tr: NewSMA(period)}
}

func (a *ATR) Update(high, low, closePrice float64) {
	tr := high - low
	if a.seeded {
		tr = math.Max(tr, math.Max(
			math.Abs(high-a.prevClose),
			math.Abs(low-a.prevClose),
		))
	}
	a.prevClose = closePrice
	a.seeded = true
	a.tr.Update(tr)
}

// Value returns the current ATR, or NaN until a full period of True Range
// values has accumulated.
func (a *ATR) Value() float64 { return a.tr.Value() }

func (a *ATR) Ready() bool { return a.tr.Ready() }
