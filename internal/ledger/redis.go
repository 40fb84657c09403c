package ledger

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const redisOpTimeout = 5 * time.Second

// RedisConfig configures the redis ledger backend.
type RedisConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
	SetKey   string // redis SET holding all signal keys
}

// RedisLedger keeps the key set in a redis SET, loaded fully at startup via
// SMEMBERS and committed with a pipelined SADD. Same contract as the file
// backend: one ever-growing set, no eviction.
type RedisLedger struct {
	client  *goredis.Client
	setKey  string
	seen    map[string]struct{}
	pending []string
}

// OpenRedis connects, pings, and loads the full key set. A connection or load
// failure is fatal — the in-memory snapshot must reflect all history.
func OpenRedis(cfg RedisConfig) (*RedisLedger, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ledger: redis ping: %w", err)
	}

	members, err := client.SMembers(ctx, cfg.SetKey).Result()
	if err != nil && err != goredis.Nil {
		return nil, fmt.Errorf("ledger: redis SMEMBERS %s: %w", cfg.SetKey, err)
	}

	l := &RedisLedger{
		client: client,
		setKey: cfg.SetKey,
		seen:   make(map[string]struct{}, len(members)),
	}
	for _, m := range members {
		l.seen[m] = struct{}{}
	}

	log.Printf("[ledger] loaded %d keys from redis set %s", len(l.seen), cfg.SetKey)
	return l, nil
}

// Client returns the underlying redis client for health checks.
func (l *RedisLedger) Client() *goredis.Client { return l.client }

func (l *RedisLedger) Seen(key string) bool {
	_, ok := l.seen[key]
	return ok
}

func (l *RedisLedger) Record(key string) {
	if _, ok := l.seen[key]; ok {
		return
	}
	l.seen[key] = struct{}{}
	l.pending = append(l.pending, key)
}

// Commit appends pending keys with a single SADD.
func (l *RedisLedger) Commit() error {
	if len(l.pending) == 0 {
		return nil
	}

	members := make([]interface{}, len(l.pending))
	for i, key := range l.pending {
		members[i] = key
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := l.client.SAdd(ctx, l.setKey, members...).Err(); err != nil {
		return fmt.Errorf("ledger: redis SADD %s: %w", l.setKey, err)
	}

	log.Printf("[ledger] committed %d new keys to redis set %s", len(l.pending), l.setKey)
	l.pending = l.pending[:0]
	return nil
}

func (l *RedisLedger) Len() int { return len(l.seen) }

func (l *RedisLedger) Close() error { return l.client.Close() }
