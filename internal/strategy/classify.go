package strategy

import "signal-sentinel/internal/model"

// Classify evaluates one enriched bar against the previous bar's MA200.
//
// BUY:  MA55 > MA200, RSI < 55, volume above its 20-bar mean, and an up trend.
// SELL: MA55 < MA200, RSI > 45, volume above its 20-bar mean, a down trend,
//       and MA55 below the PREVIOUS bar's MA200 — a deliberate lag that
//       catches a freshly crossing-down moving average.
//
// BUY is checked first. Every comparison against an undefined (NaN) value is
// false, so incomplete indicator history always resolves to HOLD.
func Classify(bar model.EnrichedBar, prevMA200 float64) Action {
	if bar.MA55 > bar.MA200 && bar.RSI14 < 55 && bar.Volume > bar.VolumeMA20 && bar.TrendUp {
		return ActionBuy
	}
	if bar.MA55 < bar.MA200 && bar.RSI14 > 45 && bar.Volume > bar.VolumeMA20 && bar.TrendDown && bar.MA55 < prevMA200 {
		return ActionSell
	}
	return ActionHold
}

// Scan classifies every bar of an enriched sequence in ascending order and
// returns the BUY/SELL events. The first bar has no previous MA200 and is
// HOLD unconditionally, so scanning starts at index 1.
func Scan(bars []model.EnrichedBar) []SignalEvent {
	var events []SignalEvent
	for i := 1; i < len(bars); i++ {
		action := Classify(bars[i], bars[i-1].MA200)
		if action == ActionHold {
			continue
		}
		b := bars[i]
		events = append(events, SignalEvent{
			TS:     b.TS,
			Action: action,
			Close:  b.Close,
			RSI:    b.RSI14,
			Volume: b.Volume,
			ATR:    b.ATR14,
			MA55:   b.MA55,
			MA200:  b.MA200,
		})
	}
	return events
}
