package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"signal-sentinel/internal/strategy"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramNotifier sends alerts via the Telegram Bot API sendMessage call:
// a form POST with chat_id, text, and parse_mode=HTML.
type TelegramNotifier struct {
	// BaseURL of the Bot API; overridable for tests.
	BaseURL string

	botToken string
	chatID   string
	market   string
	client   *http.Client
}

// NewTelegramNotifier creates a Telegram notifier.
// botToken: Bot API token from @BotFather
// chatID: target chat/group/channel ID
// market: trading pair label embedded in the message, e.g. "BTC/USDT"
func NewTelegramNotifier(botToken, chatID, market string) *TelegramNotifier {
	return &TelegramNotifier{
		BaseURL:  defaultTelegramAPI,
		botToken: botToken,
		chatID:   chatID,
		market:   market,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (t *TelegramNotifier) Send(ctx context.Context, event strategy.SignalEvent) error {
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", FormatMessage(t.market, event))
	form.Set("parse_mode", "HTML")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}

	log.Printf("[telegram] sent %s alert for bar %s", event.Action, event.TS.UTC().Format("2006-01-02 15:04"))
	return nil
}

// FormatMessage renders the human-readable HTML alert for a signal event:
// direction, price, bar time, stop-loss and take-profit levels, RSI, volume
// and ATR.
func FormatMessage(market string, event strategy.SignalEvent) string {
	emoji := "🟢"
	if event.Action == strategy.ActionSell {
		emoji = "🔴"
	}

	return fmt.Sprintf(
		"%s New %s signal\n"+
			"%s at price: <b>%.2f USDT</b>\n"+
			"Time: <code>%s</code>\n"+
			"Stop loss: <b>%.2f</b>\n"+
			"Take profit: <b>%.2f</b>\n"+
			"RSI: <b>%.1f</b> | Volume: <b>%.0f</b> | ATR: <b>%.2f</b>",
		emoji, market,
		event.Action, event.Close,
		event.TS.UTC().Format("2006-01-02 15:04"),
		event.StopLoss(),
		event.TakeProfit(),
		event.RSI, event.Volume, event.ATR,
	)
}
