// Package notification provides alert delivery to external channels
// (Telegram, log output) for trading signals.
package notification

import (
	"context"
	"log"

	"signal-sentinel/internal/strategy"
)

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert for a signal event. Returns error if delivery
	// fails; callers treat a failure as non-fatal.
	Send(ctx context.Context, event strategy.SignalEvent) error
}

// LogNotifier is a simple notifier that logs alerts (useful for development).
type LogNotifier struct {
	Market string
}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier(market string) *LogNotifier {
	return &LogNotifier{Market: market}
}

func (n *LogNotifier) Send(ctx context.Context, event strategy.SignalEvent) error {
	log.Printf("[notify] %s %s @ %.2f (stop %.2f, take %.2f)",
		n.Market, event.Action, event.Close, event.StopLoss(), event.TakeProfit())
	return nil
}
