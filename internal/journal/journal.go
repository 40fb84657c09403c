// Package journal persists dispatched signals to SQLite for audit: every
// alert the engine attempts to deliver gets a row, including failed sends.
package journal

import (
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"signal-sentinel/internal/strategy"
)

// Journal records signal dispatch attempts in a SQLite database.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (or creates) the signal journal database.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS signals (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		signal_key  TEXT NOT NULL,
		action      TEXT NOT NULL,
		price       REAL NOT NULL,
		rsi         REAL,
		atr         REAL,
		bar_ts      DATETIME NOT NULL,
		delivered   INTEGER NOT NULL,
		error       TEXT,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_signals_key ON signals(signal_key);
	CREATE INDEX IF NOT EXISTS idx_signals_bar_ts ON signals(bar_ts);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[journal] opened signal journal at %s", dbPath)
	return &Journal{db: db}, nil
}

// RecordDispatch persists one delivery attempt. sendErr may be nil.
func (j *Journal) RecordDispatch(event strategy.SignalEvent, sendErr error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	errText := ""
	if sendErr != nil {
		errText = sendErr.Error()
	}
	delivered := 0
	if sendErr == nil {
		delivered = 1
	}

	_, err := j.db.Exec(
		`INSERT INTO signals (signal_key, action, price, rsi, atr, bar_ts, delivered, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Key(),
		string(event.Action),
		event.Close,
		event.RSI,
		event.ATR,
		event.TS.UTC().Format(time.RFC3339),
		delivered,
		errText,
	)
	return err
}

// Record represents a row from the signals table.
type Record struct {
	ID        int64   `json:"id"`
	SignalKey string  `json:"signal_key"`
	Action    string  `json:"action"`
	Price     float64 `json:"price"`
	RSI       float64 `json:"rsi"`
	ATR       float64 `json:"atr"`
	BarTS     string  `json:"bar_ts"`
	Delivered bool    `json:"delivered"`
	Error     string  `json:"error"`
}

// GetRecent returns the last N dispatch records, newest first.
func (j *Journal) GetRecent(limit int) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, signal_key, action, price, rsi, atr, bar_ts, delivered, error
		 FROM signals ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var r Record
		var delivered int
		if err := rows.Scan(&r.ID, &r.SignalKey, &r.Action, &r.Price, &r.RSI,
			&r.ATR, &r.BarTS, &delivered, &r.Error); err != nil {
			continue
		}
		r.Delivered = delivered == 1
		recs = append(recs, r)
	}
	return recs, nil
}

// DB exposes the underlying handle for health probes.
func (j *Journal) DB() *sql.DB {
	return j.db
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
