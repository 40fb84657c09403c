package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"signal-sentinel/internal/strategy"
)

func buyEvent() strategy.SignalEvent {
	return strategy.SignalEvent{
		TS:     time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		Action: strategy.ActionBuy,
		Close:  100,
		RSI:    52.1,
		Volume: 5000,
		ATR:    2,
	}
}

func TestFormatMessage_PriceLevels(t *testing.T) {
	// BUY at close=100, ATR=2: stop = 100 - 5*2 = 90, take = 100*1.03 = 103.
	msg := FormatMessage("BTC/USDT", buyEvent())

	for _, want := range []string{
		"BTC/USDT",
		"BUY at price: <b>100.00 USDT</b>",
		"<code>2024-03-05 14:30</code>",
		"Stop loss: <b>90.00</b>",
		"Take profit: <b>103.00</b>",
		"RSI: <b>52.1</b>",
		"Volume: <b>5000</b>",
		"ATR: <b>2.00</b>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatMessage_SellLevels(t *testing.T) {
	ev := buyEvent()
	ev.Action = strategy.ActionSell
	msg := FormatMessage("BTC/USDT", ev)

	// SELL at close=100, ATR=2: stop = 110, take = 97.
	if !strings.Contains(msg, "Stop loss: <b>110.00</b>") {
		t.Errorf("SELL stop wrong:\n%s", msg)
	}
	if !strings.Contains(msg, "Take profit: <b>97.00</b>") {
		t.Errorf("SELL take wrong:\n%s", msg)
	}
}

func TestTelegramSend_FormFields(t *testing.T) {
	var gotPath string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotForm = map[string]string{
			"chat_id":    r.PostFormValue("chat_id"),
			"parse_mode": r.PostFormValue("parse_mode"),
			"text":       r.PostFormValue("text"),
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("test-token", "12345", "BTC/USDT")
	n.BaseURL = srv.URL
	if err := n.Send(context.Background(), buyEvent()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("path = %q, want /bottest-token/sendMessage", gotPath)
	}
	if gotForm["chat_id"] != "12345" {
		t.Errorf("chat_id = %q, want 12345", gotForm["chat_id"])
	}
	if gotForm["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %q, want HTML", gotForm["parse_mode"])
	}
	if !strings.Contains(gotForm["text"], "BUY") {
		t.Errorf("text missing action: %q", gotForm["text"])
	}
}

func TestTelegramSend_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("t", "c", "BTC/USDT")
	n.BaseURL = srv.URL
	if err := n.Send(context.Background(), buyEvent()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
