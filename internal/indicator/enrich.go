package indicator

import (
	"fmt"

	"signal-sentinel/internal/model"
)

// Default periods for the enrichment pass.
const (
	PeriodMA55     = 55
	PeriodMA200    = 200
	PeriodRSI      = 14
	PeriodATR      = 14
	PeriodVolumeMA = 20
)

// Enrich computes every derived field for an ordered sequence of bars and
// returns the same-length enriched sequence. The transform is pure and
// deterministic: identical inputs always yield identical outputs.
//
// Bars must be strictly increasing by timestamp; anything else is an upstream
// contract violation and fails the whole batch rather than producing windows
// over misordered data.
func Enrich(bars []model.Bar) ([]model.EnrichedBar, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("enrich: empty bar sequence")
	}

	ma55 := NewSMA(PeriodMA55)
	ma200 := NewSMA(PeriodMA200)
	volMA := NewSMA(PeriodVolumeMA)
	rsi := NewRSI(PeriodRSI)
	atr := NewATR(PeriodATR)

	out := make([]model.EnrichedBar, len(bars))
	for i, b := range bars {
		if i > 0 && !b.TS.After(bars[i-1].TS) {
			return nil, fmt.Errorf("enrich: bar %d timestamp %s not after previous %s",
				i, b.TS.UTC().Format("2006-01-02 15:04:05"), bars[i-1].TS.UTC().Format("2006-01-02 15:04:05"))
		}

		ma55.Update(b.Close)
		ma200.Update(b.Close)
		volMA.Update(b.Volume)
		rsi.Update(b.Close)
		atr.Update(b.High, b.Low, b.Close)

		eb := model.EnrichedBar{
			Bar:        b,
			MA55:       ma55.Value(),
			MA200:      ma200.Value(),
			RSI14:      rsi.Value(),
			ATR14:      atr.Value(),
			VolumeMA20: volMA.Value(),
		}
		if model.Defined(eb.MA200) {
			eb.TrendUp = b.Close > eb.MA200
			eb.TrendDown = b.Close < eb.MA200
		}
		out[i] = eb
	}

	return out, nil
}
