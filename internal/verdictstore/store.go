package verdictstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidcheck/internal/config"
)

// Verdict is one cached oracle answer.
type Verdict struct {
	Key       string    `json:"key"`
	Text      string    `json:"verdict"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats summarises the store contents.
type Stats struct {
	Driver   string    `json:"driver"`
	Location string    `json:"location"`
	Entries  int64     `json:"entries"`
	Oldest   time.Time `json:"oldest,omitzero"`
	Newest   time.Time `json:"newest,omitzero"`
}

// Store persists verdicts. Implementations are safe for concurrent use.
type Store interface {
	// Get returns the verdict for key; the boolean is false on a miss.
	Get(ctx context.Context, key string) (Verdict, bool, error)
	// Put inserts or replaces the verdict for v.Key.
	Put(ctx context.Context, v Verdict) error
	Stats(ctx context.Context) (Stats, error)
	// Clear removes every verdict and returns how many were deleted.
	Clear(ctx context.Context) (int64, error)
	Close() error
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Open connects the backend selected by cache.driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("verdictstore: config is nil")
	}
	switch cfg.Cache.Driver {
	case DriverSQLite, "":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return OpenSQLite(ctx, cfg.CacheDBPath())
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.Cache.DSN)
	default:
		return nil, fmt.Errorf("verdictstore: unknown driver %q", cfg.Cache.Driver)
	}
}

func validate(v Verdict) error {
	if v.Key == "" {
		return errors.New("verdict key is required")
	}
	return nil
}
