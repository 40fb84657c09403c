package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-sentinel/config"
	"signal-sentinel/internal/journal"
	"signal-sentinel/internal/ledger"
	"signal-sentinel/internal/marketdata"
	"signal-sentinel/internal/metrics"
	"signal-sentinel/internal/notification"
	"signal-sentinel/internal/runner"
	"signal-sentinel/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[signalengine] starting...")

	// ---- Load config from env ----
	cfg := config.Load()

	// ---- Setup metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Setup context for graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Open dedup ledger ----
	os.MkdirAll("data", 0o755)

	var lg ledger.Ledger
	var redisLedger *ledger.RedisLedger
	switch cfg.LedgerBackend {
	case "redis":
		var err error
		redisLedger, err = ledger.OpenRedis(ledger.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			SetKey:   "signalengine:sent:" + cfg.Market,
		})
		if err != nil {
			log.Fatalf("[signalengine] redis ledger init failed: %v", err)
		}
		lg = redisLedger
	case "file":
		fl, err := ledger.OpenFile(cfg.LedgerPath)
		if err != nil {
			log.Fatalf("[signalengine] file ledger init failed: %v", err)
		}
		lg = fl
	default:
		log.Fatalf("[signalengine] unknown LEDGER_BACKEND %q (want file or redis)", cfg.LedgerBackend)
	}
	defer lg.Close()
	prom.LedgerKeys.Set(float64(lg.Len()))

	// ---- Open signal journal ----
	jrnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		log.Fatalf("[signalengine] journal init failed: %v", err)
	}
	defer jrnl.Close()

	// ---- Periodic liveness checks ----
	if redisLedger != nil {
		health.StartLivenessChecker(ctx, redisLedger.Client(), jrnl.DB(), 10*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, jrnl.DB(), 10*time.Second)
	}

	// ---- Market data + notifier ----
	fetcher := marketdata.NewClient(cfg.KlineBaseURL, cfg.Market, cfg.BarInterval, cfg.KlineLimit)
	notifier := notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.MarketLabel)

	// ---- Runner with metrics hooks ----
	run := runner.New(fetcher, notifier, lg, jrnl, runner.Hooks{
		OnCycleDone: func(ok bool, d time.Duration) {
			prom.CyclesTotal.Inc()
			prom.CycleDuration.Observe(d.Seconds())
			prom.LastCycleUnix.Set(float64(time.Now().Unix()))
			health.SetCycleResult(ok)
		},
		OnFetchOK: func(bars int) {
			prom.BarsFetched.Set(float64(bars))
		},
		OnFetchError: func() {
			prom.FetchErrorsTotal.Inc()
		},
		OnSignal: func(a strategy.Action) {
			prom.SignalsTotal.WithLabelValues(string(a)).Inc()
		},
		OnNotifySent: func() {
			prom.NotificationsSent.Inc()
		},
		OnNotifyError: func() {
			prom.NotifyFailures.Inc()
		},
		OnLedgerSize: func(n int) {
			prom.LedgerKeys.Set(float64(n))
		},
	})

	log.Printf("[signalengine] market=%s interval=%s limit=%d ledger=%s daemon=%v",
		cfg.Market, cfg.BarInterval, cfg.KlineLimit, cfg.LedgerBackend, cfg.Daemon)

	if !cfg.Daemon {
		// Single scan, then exit. Fits cron-style scheduling.
		if err := run.RunCycle(ctx); err != nil {
			log.Fatalf("[signalengine] cycle failed: %v", err)
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		metricsSrv.Stop(shutdownCtx)
		log.Println("[signalengine] single cycle complete.")
		return
	}

	// ---- Daemon loop ----
	go run.Run(ctx, time.Duration(cfg.CycleIntervalMin)*time.Minute)

	// ---- Wait for shutdown signal ----
	<-sigCh
	log.Println("[signalengine] shutdown signal received, cleaning up...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Stop(shutdownCtx)

	log.Println("[signalengine] shutdown complete.")
}
