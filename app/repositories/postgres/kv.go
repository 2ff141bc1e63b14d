package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bizdash/app/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure KV satisfies the repositories.KV interface at compile time.
var _ repositories.KV = (*KV)(nil)

// KV stores dashboard keys in a single PostgreSQL table.
type KV struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewKV connects to databaseURL and creates the table if needed. timeout
// bounds every individual Get/Set/Remove.
func NewKV(ctx context.Context, databaseURL string, timeout time.Duration) (*KV, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	kv := &KV{pool: pool, timeout: timeout}
	if err := kv.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return kv, nil
}

// Close releases database resources.
func (s *KV) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *KV) migrate(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS dashboard_kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`
	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *KV) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM dashboard_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *KV) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	const query = `
		INSERT INTO dashboard_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *KV) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `DELETE FROM dashboard_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
