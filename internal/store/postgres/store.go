// Package postgres provides a Postgres-backed posting store.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/scraper"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	Site            string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// dbPool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type dbPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store persists postings in a single JSONB-backed table:
//
//	CREATE TABLE postings (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    site TEXT NOT NULL,
//	    url TEXT NOT NULL,
//	    scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    record JSONB NOT NULL
//	);
type Store struct {
	pool   dbPool
	site   string
	logger *zap.Logger
}

// New connects to Postgres and verifies the connection.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	if cfg.Site == "" {
		return nil, fmt.Errorf("site is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, site: cfg.Site, logger: logger}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for tests).
func NewWithPool(pool dbPool, site string, logger *zap.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if site == "" {
		return nil, fmt.Errorf("site is required")
	}
	return &Store{pool: pool, site: site, logger: logger}, nil
}

// InsertPosting writes one posting row and returns its id. Any failure here
// is treated as fatal by the caller; the store does not soften it.
func (s *Store) InsertPosting(ctx context.Context, url string, p scraper.Posting) (string, error) {
	record, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal posting: %w", err)
	}

	var id string
	query := `
INSERT INTO postings (site, url, scraped_at, record)
VALUES ($1, $2, NOW(), $3)
RETURNING id`
	if err := s.pool.QueryRow(ctx, query, s.site, url, record).Scan(&id); err != nil {
		return "", fmt.Errorf("insert posting: %w", err)
	}
	return id, nil
}

// RecentURLs returns the URLs persisted within the lookback window. A query
// failure degrades to an empty seed rather than failing the run; the worst
// case is re-scraping postings the store already holds.
func (s *Store) RecentURLs(ctx context.Context, lookback time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-lookback)
	rows, err := s.pool.Query(ctx,
		`SELECT url FROM postings WHERE site = $1 AND scraped_at >= $2`,
		s.site, cutoff,
	)
	if err != nil {
		s.logger.Error("failed to query recent URLs", zap.Error(err))
		return nil, nil
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			s.logger.Error("failed to scan recent URL row", zap.Error(err))
			return nil, nil
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("recent URL query aborted", zap.Error(err))
		return nil, nil
	}
	return urls, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
