package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"vidcheck/internal/config"
	"vidcheck/internal/services/oracle"
	"vidcheck/internal/verdictstore"
)

// CheckOracle verifies that the oracle API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckOracle(ctx context.Context, cfg config.OracleConfig) Result {
	const name = "Oracle"
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := oracle.NewClient(oracle.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, oracle.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeOracleError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", cfg.Model)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckVerdictStore opens the configured verdict store and reads its stats.
func CheckVerdictStore(ctx context.Context, cfg *config.Config) Result {
	const name = "Verdict cache"
	if !cfg.Cache.Enabled {
		return Result{Name: name, Passed: true, Detail: "disabled"}
	}
	store, err := verdictstore.Open(ctx, cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	stats, err := store.Stats(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s %s (%d entries)", stats.Driver, stats.Location, stats.Entries)}
}

// summarizeOracleError produces a human-readable summary for oracle health check failures.
func summarizeOracleError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (oracle API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (oracle API unreachable)"
	}
	return err.Error()
}
