package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"vidcheck/internal/logging"
	"vidcheck/internal/verdictstore"
)

// DefaultLRUSize is the in-memory verdict capacity when none is configured.
const DefaultLRUSize = 256

// Oracle answers one verification prompt.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of one verification.
type Result struct {
	Key     string `json:"key"`
	Verdict string `json:"verdict"`
	// Confidence is always nil: the oracle returns free text and no score is
	// derived from it.
	Confidence *float64      `json:"confidence"`
	Cached     bool          `json:"cached"`
	Failed     bool          `json:"failed"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Client verifies prompts through an Oracle with two cache tiers.
type Client struct {
	oracle Oracle
	model  string
	cache  *lru.Cache[string, string]
	store  verdictstore.Store
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithStore adds a persistent verdict store behind the LRU.
func WithStore(store verdictstore.Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithLogger overrides the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "verify")
	}
}

// WithModel records the oracle model name on stored verdicts.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// NewClient constructs a Client whose LRU holds lruSize verdicts.
func NewClient(oracle Oracle, lruSize int, opts ...Option) (*Client, error) {
	if lruSize <= 0 {
		lruSize = DefaultLRUSize
	}
	cache, err := lru.New[string, string](lruSize)
	if err != nil {
		return nil, fmt.Errorf("verdict lru: %w", err)
	}
	c := &Client{
		oracle: oracle,
		cache:  cache,
		logger: logging.NewComponentLogger(nil, "verify"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Key returns the cache key for prompt.
func Key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Verify returns the verdict for prompt. It never returns an error: oracle
// failures are reported as a Failed result carrying the error text.
func (c *Client) Verify(ctx context.Context, prompt string) Result {
	start := c.now()
	key := Key(prompt)
	logger := logging.WithContext(ctx, c.logger).With(logging.String("verdict_key", key[:12]))

	if verdict, ok := c.lookup(ctx, logger, key); ok {
		logger.Debug("verdict cache hit")
		return Result{Key: key, Verdict: verdict, Cached: true, Elapsed: c.now().Sub(start)}
	}

	// The flight outlives any single caller so that one cancelled request does
	// not fail the others waiting on the same key.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if verdict, ok := c.cache.Get(key); ok {
			return flight{verdict: verdict, cached: true}, nil
		}
		verdict, err := c.oracle.Complete(flightCtx, prompt)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, verdict)
		c.persist(flightCtx, logger, key, verdict)
		return flight{verdict: verdict}, nil
	})

	select {
	case <-ctx.Done():
		return c.failure(logger, key, ctx.Err(), start)
	case res := <-ch:
		if res.Err != nil {
			return c.failure(logger, key, res.Err, start)
		}
		f := res.Val.(flight)
		logger.Info("verdict received",
			logging.Bool("shared", res.Shared),
			logging.Bool("cached", f.cached),
			logging.Duration("elapsed", c.now().Sub(start)),
		)
		return Result{Key: key, Verdict: f.verdict, Cached: f.cached, Elapsed: c.now().Sub(start)}
	}
}

type flight struct {
	verdict string
	cached  bool
}

func (c *Client) lookup(ctx context.Context, logger *slog.Logger, key string) (string, bool) {
	if verdict, ok := c.cache.Get(key); ok {
		return verdict, true
	}
	if c.store == nil {
		return "", false
	}
	stored, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(logger, "verdict store lookup failed", "verdict_store_read",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the oracle may be called for a prompt that was already verified"),
		)
		return "", false
	}
	if !ok {
		return "", false
	}
	c.cache.Add(key, stored.Text)
	return stored.Text, true
}

func (c *Client) persist(ctx context.Context, logger *slog.Logger, key, verdict string) {
	if c.store == nil {
		return
	}
	err := c.store.Put(ctx, verdictstore.Verdict{
		Key:       key,
		Text:      verdict,
		Model:     c.model,
		CreatedAt: c.now().UTC(),
	})
	if err != nil {
		logging.WarnWithContext(logger, "verdict store write failed", "verdict_store_write",
			logging.Error(err),
			logging.String(logging.FieldImpact, "verdict is cached in memory only"),
		)
	}
}

func (c *Client) failure(logger *slog.Logger, key string, err error, start time.Time) Result {
	logging.WarnWithContext(logger, "verification failed", "verification_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check oracle.api_key and network access"),
		logging.String(logging.FieldImpact, "verdict replaced by error text"),
	)
	return Result{
		Key:     key,
		Verdict: fmt.Sprintf("Verification error: %v", err),
		Failed:  true,
		Elapsed: c.now().Sub(start),
	}
}
