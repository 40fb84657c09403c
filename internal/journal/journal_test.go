package journal

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"signal-sentinel/internal/strategy"
)

func testEvent(action strategy.Action, close float64) strategy.SignalEvent {
	return strategy.SignalEvent{
		TS:     time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		Action: action,
		Close:  close,
		RSI:    52.1,
		ATR:    2,
	}
}

func TestJournal_RecordAndReadBack(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "signals.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	if err := j.RecordDispatch(testEvent(strategy.ActionBuy, 100), nil); err != nil {
		t.Fatalf("RecordDispatch: %v", err)
	}
	if err := j.RecordDispatch(testEvent(strategy.ActionSell, 101), errors.New("telegram down")); err != nil {
		t.Fatalf("RecordDispatch: %v", err)
	}

	recs, err := j.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	// Newest first.
	if recs[0].Action != "SELL" || recs[0].Delivered || recs[0].Error != "telegram down" {
		t.Errorf("failed dispatch row wrong: %+v", recs[0])
	}
	if recs[1].Action != "BUY" || !recs[1].Delivered || recs[1].Error != "" {
		t.Errorf("delivered dispatch row wrong: %+v", recs[1])
	}
	if recs[1].SignalKey != "2024-03-05 14:30:00_BUY_100.00" {
		t.Errorf("signal key = %q", recs[1].SignalKey)
	}
}

func TestJournal_GetRecentHonorsLimit(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "signals.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	for i := 0; i < 5; i++ {
		if err := j.RecordDispatch(testEvent(strategy.ActionBuy, 100+float64(i)), nil); err != nil {
			t.Fatalf("RecordDispatch %d: %v", i, err)
		}
	}

	recs, err := j.GetRecent(3)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0].Price != 104 {
		t.Errorf("newest price = %.0f, want 104", recs[0].Price)
	}
}
