package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the signal engine.
type Metrics struct {
	CyclesTotal       prometheus.Counter
	FetchErrorsTotal  prometheus.Counter
	SignalsTotal      *prometheus.CounterVec // labels: action
	NotificationsSent prometheus.Counter
	NotifyFailures    prometheus.Counter
	LedgerKeys        prometheus.Gauge
	CycleDuration     prometheus.Histogram
	BarsFetched       prometheus.Gauge
	LastCycleUnix     prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalengine_cycles_total",
			Help: "Total scan cycles executed",
		}),
		FetchErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalengine_fetch_errors_total",
			Help: "Kline fetch failures (cycle aborted)",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalengine_signals_total",
			Help: "New signals detected (by action)",
		}, []string{"action"}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalengine_notifications_sent_total",
			Help: "Alerts delivered successfully",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalengine_notify_failures_total",
			Help: "Alert delivery failures",
		}),
		LedgerKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalengine_ledger_keys",
			Help: "Signal keys held in the dedup ledger",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalengine_cycle_duration_seconds",
			Help:    "Full scan cycle latency (fetch through commit)",
			Buckets: prometheus.DefBuckets,
		}),
		BarsFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalengine_bars_fetched",
			Help: "Bars returned by the last successful kline fetch",
		}),
		LastCycleUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalengine_last_cycle_timestamp_seconds",
			Help: "Unix time of the last completed cycle",
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.FetchErrorsTotal,
		m.SignalsTotal,
		m.NotificationsSent,
		m.NotifyFailures,
		m.LedgerKeys,
		m.CycleDuration,
		m.BarsFetched,
		m.LastCycleUnix,
	)

	return m
}

// HealthStatus represents the engine health.
type HealthStatus struct {
	mu sync.RWMutex

	LastCycleTime  time.Time `json:"last_cycle_time"`
	LastCycleOK    bool      `json:"last_cycle_ok"`
	RedisConnected bool      `json:"redis_connected"`
	SQLiteOK       bool      `json:"sqlite_ok"`

	// Liveness probe results
	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
		// nothing has run or been probed yet; report healthy until proven otherwise
		LastCycleOK:    true,
		RedisConnected: true,
		SQLiteOK:       true,
	}
}

func (h *HealthStatus) SetCycleResult(ok bool) {
	h.mu.Lock()
	h.LastCycleTime = time.Now()
	h.LastCycleOK = ok
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks. Either dependency
// may be nil when the engine runs without that backend.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK

	if !h.RedisConnected || !h.SQLiteOK || !h.LastCycleOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	cycleAge := ""
	if !h.LastCycleTime.IsZero() {
		cycleAge = time.Since(h.LastCycleTime).Round(time.Second).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		LastCycleTime   string  `json:"last_cycle_time"`
		CycleAge        string  `json:"cycle_age"`
		LastCycleOK     bool    `json:"last_cycle_ok"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		LastCycleTime:   h.LastCycleTime.Format(time.RFC3339),
		CycleAge:        cycleAge,
		LastCycleOK:     h.LastCycleOK,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
