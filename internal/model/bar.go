package model

import (
	"math"
	"time"
)

// Bar represents one OHLCV observation at a fixed interval.
// TS is the bar-open time (UTC). Amount is the quote-currency volume,
// carried through for reporting only.
type Bar struct {
	TS     time.Time `json:"ts"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Amount float64   `json:"amount"`
}

// EnrichedBar is a Bar plus derived indicator values. Any derived field whose
// trailing window is not yet full is NaN ("insufficient data") and must be
// checked with Defined before use.
type EnrichedBar struct {
	Bar

	MA55       float64 `json:"ma55"`
	MA200      float64 `json:"ma200"`
	RSI14      float64 `json:"rsi14"`
	ATR14      float64 `json:"atr14"`
	VolumeMA20 float64 `json:"volume_ma20"`
	TrendUp    bool    `json:"trend_up"`
	TrendDown  bool    `json:"trend_down"`
}

// Defined reports whether a derived value carries data (i.e. is not NaN).
func Defined(v float64) bool {
	return !math.IsNaN(v)
}
