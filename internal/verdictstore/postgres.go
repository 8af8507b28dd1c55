package verdictstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS vidcheck_verdicts (
    key TEXT PRIMARY KEY,
    verdict TEXT NOT NULL,
    model TEXT,
    created_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps verdicts in a shared PostgreSQL database.
type PostgresStore struct {
	pool     *pgxpool.Pool
	location string
}

// OpenPostgres connects to dsn and creates the verdict table when missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("verdictstore: postgres dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create verdict table: %w", err)
	}
	location := fmt.Sprintf("%s:%d/%s", poolCfg.ConnConfig.Host, poolCfg.ConnConfig.Port, poolCfg.ConnConfig.Database)
	return &PostgresStore{pool: pool, location: location}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, key string) (Verdict, bool, error) {
	v := Verdict{Key: key}
	var model *string
	err := s.pool.QueryRow(ctx,
		"SELECT verdict, model, created_at FROM vidcheck_verdicts WHERE key = $1", key,
	).Scan(&v.Text, &model, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Verdict{}, false, nil
	}
	if err != nil {
		return Verdict{}, false, fmt.Errorf("get verdict: %w", err)
	}
	if model != nil {
		v.Model = *model
	}
	v.CreatedAt = v.CreatedAt.UTC()
	return v, true, nil
}

// Put implements Store.
func (s *PostgresStore) Put(ctx context.Context, v Verdict) error {
	if err := validate(v); err != nil {
		return err
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO vidcheck_verdicts (key, verdict, model, created_at) VALUES ($1, $2, $3, $4)
         ON CONFLICT (key) DO UPDATE SET verdict = EXCLUDED.verdict, model = EXCLUDED.model, created_at = EXCLUDED.created_at`,
		v.Key, v.Text, nullableString(v.Model), v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put verdict: %w", err)
	}
	return nil
}

// Stats implements Store.
func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Driver: DriverPostgres, Location: s.location}
	var oldest, newest *time.Time
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(1), MIN(created_at), MAX(created_at) FROM vidcheck_verdicts",
	).Scan(&stats.Entries, &oldest, &newest)
	if err != nil {
		return stats, fmt.Errorf("verdict stats: %w", err)
	}
	if oldest != nil {
		stats.Oldest = oldest.UTC()
	}
	if newest != nil {
		stats.Newest = newest.UTC()
	}
	return stats, nil
}

// Clear implements Store.
func (s *PostgresStore) Clear(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM vidcheck_verdicts")
	if err != nil {
		return 0, fmt.Errorf("clear verdicts: %w", err)
	}
	return tag.RowsAffected(), nil
}
