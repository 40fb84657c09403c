// Package marketdata fetches candlestick history from the CoinEx v1 kline
// endpoint. Rows arrive oldest-first as
// [timestamp, open, close, high, low, volume, amount] with numeric fields
// encoded as JSON strings.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"signal-sentinel/internal/model"
)

const requestTimeout = 10 * time.Second

// Client fetches OHLCV bars for a single market and interval.
type Client struct {
	baseURL  string
	market   string
	interval string // bar interval, e.g. "30min"
	limit    int
	client   *http.Client
}

// NewClient creates a kline client.
// baseURL: API root, e.g. "https://api.coinex.com/v1"
// market: trading pair, e.g. "BTCUSDT"
func NewClient(baseURL, market, interval string, limit int) *Client {
	return &Client{
		baseURL:  baseURL,
		market:   market,
		interval: interval,
		limit:    limit,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

type klineResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    [][]interface{} `json:"data"`
}

// Fetch returns up to limit bars, oldest first. Any transport, decode, or
// API-level failure aborts the whole batch — no partial processing of
// malformed data.
func (c *Client) Fetch(ctx context.Context) ([]model.Bar, error) {
	q := url.Values{}
	q.Set("market", c.market)
	q.Set("type", c.interval)
	q.Set("limit", strconv.Itoa(c.limit))

	reqURL := c.baseURL + "/market/kline?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("kline: create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kline: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kline: unexpected status %d", resp.StatusCode)
	}

	var kr klineResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber() // keep timestamps exact, numerics come as strings anyway
	if err := dec.Decode(&kr); err != nil {
		return nil, fmt.Errorf("kline: decode: %w", err)
	}
	if kr.Code != 0 {
		return nil, fmt.Errorf("kline: api error code %d: %s", kr.Code, kr.Message)
	}

	bars := make([]model.Bar, 0, len(kr.Data))
	for i, row := range kr.Data {
		bar, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("kline: row %d: %w", i, err)
		}
		bars = append(bars, bar)
	}

	log.Printf("[coinex] fetched %d bars for %s %s", len(bars), c.market, c.interval)
	return bars, nil
}

func parseRow(row []interface{}) (model.Bar, error) {
	if len(row) < 7 {
		return model.Bar{}, fmt.Errorf("short row: %d fields", len(row))
	}

	tsFloat, err := toFloat(row[0])
	if err != nil {
		return model.Bar{}, fmt.Errorf("timestamp: %w", err)
	}
	ts := int64(tsFloat)

	fields := make([]float64, 6)
	for i := 1; i < 7; i++ {
		v, err := toFloat(row[i])
		if err != nil {
			return model.Bar{}, fmt.Errorf("field %d: %w", i, err)
		}
		fields[i-1] = v
	}

	bar := model.Bar{
		TS:     time.Unix(ts, 0).UTC(),
		Open:   fields[0],
		Close:  fields[1],
		High:   fields[2],
		Low:    fields[3],
		Volume: fields[4],
		Amount: fields[5],
	}

	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
		return model.Bar{}, fmt.Errorf("non-positive price in bar at %d", ts)
	}
	if bar.Volume < 0 {
		return model.Bar{}, fmt.Errorf("negative volume in bar at %d", ts)
	}
	return bar, nil
}

// toFloat coerces a kline field to float64. The endpoint encodes prices and
// volumes as strings and timestamps as bare numbers.
func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case string:
		return strconv.ParseFloat(t, 64)
	case json.Number:
		return t.Float64()
	case float64:
		return t, nil
	default:
		return 0, fmt.Errorf("unsupported field type %T", v)
	}
}
