package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Telegram credentials
	TelegramBotToken string
	TelegramChatID   string

	// Market data
	Market       string
	MarketLabel  string // human label used in alerts, e.g. "BTC/USDT"
	BarInterval  string
	KlineLimit   int
	KlineBaseURL string

	// Deduplication ledger
	LedgerBackend string // "file" or "redis"
	LedgerPath    string
	RedisAddr     string
	RedisPassword string

	// Infrastructure
	JournalPath string
	MetricsAddr string

	// Scheduling
	CycleIntervalMin int
	Daemon           bool
}

// Load reads configuration from environment variables with sensible defaults.
// Telegram credentials are required; everything else falls back to the
// BTC/USDT 30-minute defaults.
func Load() *Config {
	return &Config{
		TelegramBotToken: mustEnv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   mustEnv("TELEGRAM_CHAT_ID"),

		Market:       getEnv("MARKET", "BTCUSDT"),
		MarketLabel:  getEnv("MARKET_LABEL", "BTC/USDT"),
		BarInterval:  getEnv("BAR_INTERVAL", "30min"),
		KlineLimit:   getEnvInt("KLINE_LIMIT", 1000),
		KlineBaseURL: getEnv("KLINE_BASE_URL", "https://api.coinex.com/v1"),

		LedgerBackend: getEnv("LEDGER_BACKEND", "file"),
		LedgerPath:    getEnv("LEDGER_PATH", "data/sent_signals.log"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JournalPath: getEnv("JOURNAL_PATH", "data/signals.db"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),

		CycleIntervalMin: getEnvInt("CYCLE_INTERVAL_MIN", 30),
		Daemon:           getEnvBool("DAEMON", true),
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true") || v == "1"
}
