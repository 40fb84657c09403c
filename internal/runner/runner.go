// Package runner orchestrates the scan cycle: fetch bars, enrich with
// indicators, classify, filter against the dedup ledger, notify, commit.
package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"signal-sentinel/internal/indicator"
	"signal-sentinel/internal/ledger"
	"signal-sentinel/internal/model"
	"signal-sentinel/internal/notification"
	"signal-sentinel/internal/strategy"
)

// Fetcher provides candlestick history, oldest first.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Bar, error)
}

// Journal records dispatch attempts. Optional; a nil journal is skipped.
type Journal interface {
	RecordDispatch(event strategy.SignalEvent, sendErr error) error
}

// Hooks are optional observation points, wired to metrics by the caller.
// Any nil hook is skipped.
type Hooks struct {
	OnCycleDone   func(ok bool, d time.Duration)
	OnFetchOK     func(bars int)
	OnFetchError  func()
	OnSignal      func(action strategy.Action)
	OnNotifySent  func()
	OnNotifyError func()
	OnLedgerSize  func(n int)
}

// Runner drives repeated scan cycles over one market.
type Runner struct {
	fetcher  Fetcher
	notifier notification.Notifier
	ledger   ledger.Ledger
	journal  Journal
	hooks    Hooks

	// SendPause is the delay between consecutive alert sends, to stay
	// under the Telegram Bot API rate limit.
	SendPause time.Duration
}

// New creates a runner. journal may be nil.
func New(fetcher Fetcher, notifier notification.Notifier, lg ledger.Ledger, jrnl Journal, hooks Hooks) *Runner {
	return &Runner{
		fetcher:   fetcher,
		notifier:  notifier,
		ledger:    lg,
		journal:   jrnl,
		hooks:     hooks,
		SendPause: time.Second,
	}
}

// RunCycle executes one full scan. A fetch or enrich failure aborts the cycle
// before any ledger mutation. A notification failure does not: the key is
// recorded anyway so a flaky delivery channel cannot cause duplicate alerts,
// and processing continues with the next event.
func (r *Runner) RunCycle(ctx context.Context) error {
	start := time.Now()
	err := r.runCycle(ctx)
	if r.hooks.OnCycleDone != nil {
		r.hooks.OnCycleDone(err == nil, time.Since(start))
	}
	return err
}

func (r *Runner) runCycle(ctx context.Context) error {
	bars, err := r.fetcher.Fetch(ctx)
	if err != nil {
		if r.hooks.OnFetchError != nil {
			r.hooks.OnFetchError()
		}
		return fmt.Errorf("fetch: %w", err)
	}
	if r.hooks.OnFetchOK != nil {
		r.hooks.OnFetchOK(len(bars))
	}

	enriched, err := indicator.Enrich(bars)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}

	events := strategy.Scan(enriched)

	fresh := 0
	for _, ev := range events {
		key := ev.Key()
		if r.ledger.Seen(key) {
			continue
		}
		r.ledger.Record(key)
		fresh++

		if r.hooks.OnSignal != nil {
			r.hooks.OnSignal(ev.Action)
		}
		log.Printf("[runner] new %s signal at %s close %.2f", ev.Action, ev.TS.UTC().Format("2006-01-02 15:04"), ev.Close)

		sendErr := r.notifier.Send(ctx, ev)
		if sendErr != nil {
			log.Printf("[runner] notify failed for %s: %v", key, sendErr)
			if r.hooks.OnNotifyError != nil {
				r.hooks.OnNotifyError()
			}
		} else if r.hooks.OnNotifySent != nil {
			r.hooks.OnNotifySent()
		}

		if r.journal != nil {
			if jerr := r.journal.RecordDispatch(ev, sendErr); jerr != nil {
				log.Printf("[runner] journal write failed: %v", jerr)
			}
		}

		if r.SendPause > 0 {
			select {
			case <-ctx.Done():
				// commit what was recorded so far before bailing out
				if err := r.ledger.Commit(); err != nil {
					log.Printf("[runner] ledger commit failed: %v", err)
				}
				return ctx.Err()
			case <-time.After(r.SendPause):
			}
		}
	}

	if err := r.ledger.Commit(); err != nil {
		return fmt.Errorf("ledger commit: %w", err)
	}
	if r.hooks.OnLedgerSize != nil {
		r.hooks.OnLedgerSize(r.ledger.Len())
	}

	log.Printf("[runner] cycle done: %d bars, %d signals, %d new", len(bars), len(events), fresh)
	return nil
}

// Run executes cycles on a fixed interval until ctx is cancelled. The first
// cycle starts immediately. A failed cycle is logged and the loop continues.
func (r *Runner) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := r.RunCycle(ctx); err != nil && ctx.Err() == nil {
		log.Printf("[runner] cycle error: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("[runner] stopping")
			return
		case <-ticker.C:
			if err := r.RunCycle(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[runner] cycle error: %v", err)
			}
		}
	}
}
