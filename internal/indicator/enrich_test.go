package indicator

import (
	"math"
	"testing"
	"time"

	"signal-sentinel/internal/model"
)

func barAt(i int, closePrice, volume float64) model.Bar {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * 30 * time.Minute)
	return model.Bar{
		TS:     ts,
		Open:   closePrice,
		High:   closePrice + 1,
		Low:    closePrice - 1,
		Close:  closePrice,
		Volume: volume,
	}
}

func TestEnrich_WindowBoundaries(t *testing.T) {
	// Alternating closes so RSI sees both gains and losses once its window
	// holds 14 deltas.
	bars := make([]model.Bar, 250)
	for i := range bars {
		c := 100.0
		if i%2 == 1 {
			c = 101.0
		}
		bars[i] = barAt(i, c, 1000)
	}

	enriched, err := Enrich(bars)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if len(enriched) != len(bars) {
		t.Fatalf("length mismatch: got %d, want %d", len(enriched), len(bars))
	}

	checks := []struct {
		name  string
		value func(model.EnrichedBar) float64
		full  int // first index with a defined value
	}{
		{"MA55", func(e model.EnrichedBar) float64 { return e.MA55 }, PeriodMA55 - 1},
		{"MA200", func(e model.EnrichedBar) float64 { return e.MA200 }, PeriodMA200 - 1},
		{"VolumeMA20", func(e model.EnrichedBar) float64 { return e.VolumeMA20 }, PeriodVolumeMA - 1},
		{"ATR14", func(e model.EnrichedBar) float64 { return e.ATR14 }, PeriodATR - 1},
		// RSI consumes deltas, so it needs one extra bar.
		{"RSI14", func(e model.EnrichedBar) float64 { return e.RSI14 }, PeriodRSI},
	}

	for _, c := range checks {
		if v := c.value(enriched[c.full-1]); !math.IsNaN(v) {
			t.Errorf("%s at index %d: got %.4f, want NaN (window not full)", c.name, c.full-1, v)
		}
		if v := c.value(enriched[c.full]); math.IsNaN(v) {
			t.Errorf("%s at index %d: got NaN, want defined value", c.name, c.full)
		}
	}
}

func TestEnrich_TrendFlagsUndefinedBeforeMA200(t *testing.T) {
	bars := make([]model.Bar, 205)
	for i := range bars {
		bars[i] = barAt(i, 100+float64(i), 1000)
	}
	enriched, err := Enrich(bars)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	for i := 0; i < PeriodMA200-1; i++ {
		if enriched[i].TrendUp || enriched[i].TrendDown {
			t.Fatalf("bar %d: trend flags set before MA200 window full", i)
		}
	}
	// Rising series: close is above its trailing 200-mean once defined.
	last := enriched[len(enriched)-1]
	if !last.TrendUp || last.TrendDown {
		t.Errorf("last bar: TrendUp=%v TrendDown=%v, want up trend", last.TrendUp, last.TrendDown)
	}
}

func TestEnrich_FlatSeriesRSIUndefined(t *testing.T) {
	bars := make([]model.Bar, 50)
	for i := range bars {
		bars[i] = barAt(i, 100, 1000)
	}
	enriched, err := Enrich(bars)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	for i, e := range enriched {
		if !math.IsNaN(e.RSI14) {
			t.Fatalf("bar %d: flat series RSI = %.4f, want NaN", i, e.RSI14)
		}
	}
}

func TestEnrich_RejectsOutOfOrderBars(t *testing.T) {
	bars := []model.Bar{barAt(0, 100, 1), barAt(2, 101, 1), barAt(1, 102, 1)}
	if _, err := Enrich(bars); err == nil {
		t.Fatal("expected error for out-of-order timestamps")
	}

	dup := []model.Bar{barAt(0, 100, 1), barAt(0, 101, 1)}
	if _, err := Enrich(dup); err == nil {
		t.Fatal("expected error for duplicate timestamps")
	}
}

func TestEnrich_EmptyInput(t *testing.T) {
	if _, err := Enrich(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestEnrich_Deterministic(t *testing.T) {
	bars := make([]model.Bar, 100)
	for i := range bars {
		bars[i] = barAt(i, 100+math.Sin(float64(i)), 1000+float64(i%7))
	}
	a, err := Enrich(bars)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	b, _ := Enrich(bars)
	for i := range a {
		if a[i].MA55 != b[i].MA55 && !(math.IsNaN(a[i].MA55) && math.IsNaN(b[i].MA55)) {
			t.Fatalf("bar %d: non-deterministic MA55", i)
		}
		if a[i].RSI14 != b[i].RSI14 && !(math.IsNaN(a[i].RSI14) && math.IsNaN(b[i].RSI14)) {
			t.Fatalf("bar %d: non-deterministic RSI14", i)
		}
	}
}
