package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

// FileLedger is the default backend: an append-only newline-delimited text
// file of signal keys, wire-compatible with a plain sent-signals log.
type FileLedger struct {
	path    string
	seen    map[string]struct{}
	pending []string
}

// OpenFile loads the full key history from path. A missing file is a first
// run and yields an empty ledger; any other read failure is returned as-is.
func OpenFile(path string) (*FileLedger, error) {
	l := &FileLedger{
		path: path,
		seen: make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("[ledger] no store at %s, starting empty", path)
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key := strings.TrimSpace(sc.Text())
		if key == "" {
			continue
		}
		l.seen[key] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		// Refuse to run with partial history — an empty set here would
		// re-send everything ever recorded.
		return nil, fmt.Errorf("ledger: read %s: %w", path, err)
	}

	log.Printf("[ledger] loaded %d keys from %s", len(l.seen), path)
	return l, nil
}

func (l *FileLedger) Seen(key string) bool {
	_, ok := l.seen[key]
	return ok
}

func (l *FileLedger) Record(key string) {
	if _, ok := l.seen[key]; ok {
		return
	}
	l.seen[key] = struct{}{}
	l.pending = append(l.pending, key)
}

// Commit appends pending keys in one durable write.
func (l *FileLedger) Commit() error {
	if len(l.pending) == 0 {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("ledger: append %s: %w", l.path, err)
	}

	var sb strings.Builder
	for _, key := range l.pending {
		sb.WriteString(key)
		sb.WriteByte('\n')
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		return fmt.Errorf("ledger: write %s: %w", l.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("ledger: sync %s: %w", l.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("ledger: close %s: %w", l.path, err)
	}

	log.Printf("[ledger] committed %d new keys to %s", len(l.pending), l.path)
	l.pending = l.pending[:0]
	return nil
}

func (l *FileLedger) Len() int { return len(l.seen) }

func (l *FileLedger) Close() error { return nil }
