// Package strategy evaluates the rule-based signal classifier over enriched
// bars and emits trading signals (BUY/SELL).
package strategy

import (
	"fmt"
	"time"
)

// Action represents the ternary classification of a bar.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Risk parameters for alert price levels. The stop distance is volatility
// scaled while the take-profit is a fixed percentage target; the two are
// independent heuristics.
const (
	StopLossATRMultiple = 5.0
	TakeProfitBuyPct    = 1.03
	TakeProfitSellPct   = 0.97
)

// SignalEvent captures one bar classified as BUY or SELL, with the indicator
// values that qualified it. Immutable once produced.
type SignalEvent struct {
	TS     time.Time `json:"ts"`
	Action Action    `json:"action"`
	Close  float64   `json:"close"`
	RSI    float64   `json:"rsi"`
	Volume float64   `json:"volume"`
	ATR    float64   `json:"atr"`
	MA55   float64   `json:"ma55"`
	MA200  float64   `json:"ma200"`
}

// Key returns the deduplication identity of the event:
// "{timestamp}_{action}_{price:.2f}". Two events with equal keys are the same
// notification; prices differing only beyond 2 decimals collapse together.
func (e SignalEvent) Key() string {
	return fmt.Sprintf("%s_%s_%.2f", e.TS.UTC().Format("2006-01-02 15:04:05"), e.Action, e.Close)
}

// StopLoss returns the suggested stop level: 5 ATRs below close for BUY,
// above for SELL.
func (e SignalEvent) StopLoss() float64 {
	if e.Action == ActionBuy {
		return e.Close - StopLossATRMultiple*e.ATR
	}
	return e.Close + StopLossATRMultiple*e.ATR
}

// TakeProfit returns the suggested target level: a fixed 3% from close.
func (e SignalEvent) TakeProfit() float64 {
	if e.Action == ActionBuy {
		return e.Close * TakeProfitBuyPct
	}
	return e.Close * TakeProfitSellPct
}
