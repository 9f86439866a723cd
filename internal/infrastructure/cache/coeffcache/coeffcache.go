// Package coeffcache caches the normalized-coefficient array a GaussianBasis
// produces after normalization, keyed by its content fingerprint. Two bases
// with the same shell layout, primitives and MO matrix normalize to the
// identical NormCoeff array, so repeated loads of the same basis skip
// normalization entirely once the cache is warm.
package coeffcache

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/turtacn/gaussgrid/internal/infrastructure/database/redis"
	"github.com/turtacn/gaussgrid/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/gaussgrid/internal/infrastructure/monitoring/prometheus"
)

// lockTTL bounds how long a fingerprint's write lock survives a crashed
// writer; short because the guarded section is a single cache write.
const lockTTL = 5 * time.Second

// entry is the value shape stored in the cache; JSON-serialized by the
// underlying store's Serializer.
type entry struct {
	Coeffs []float64 `json:"coeffs"`
}

// store is the minimal slice of redis.Cache this package depends on. Kept
// local so coeffcache never imports the full Cache surface, and so tests can
// substitute a trivial in-memory fake.
type store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Cache wraps a key-value store to store and retrieve normalized-coefficient
// arrays by basis fingerprint.
type Cache struct {
	cache   store
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	ttl     time.Duration
	locks   redis.LockFactory
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithTTL overrides the default cache entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithMetrics attaches a metrics sink; cache hits and misses are recorded
// against the "coeffcache" label.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithLockFactory attaches a distributed lock factory so that concurrent
// writers across processes normalizing the same basis don't all pay the
// cost of writing the same coefficients to the store. Without one, Set
// always writes.
func WithLockFactory(lf redis.LockFactory) Option {
	return func(c *Cache) { c.locks = lf }
}

// New wraps an existing store, typically a *redis.Client-backed redis.Cache.
// logger must not be nil.
func New(cache store, logger logging.Logger, opts ...Option) *Cache {
	c := &Cache{
		cache:  cache,
		logger: logger,
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func keyFor(fingerprint [32]byte) string {
	return "coeff:" + hex.EncodeToString(fingerprint[:])
}

// Get returns the cached normalized-coefficient array for fingerprint, or
// found=false on a cache miss. A Redis error is logged and treated as a
// miss; the caller always has the option of renormalizing from scratch.
func (c *Cache) Get(ctx context.Context, fingerprint [32]byte) (coeffs []float64, found bool) {
	var e entry
	err := c.cache.Get(ctx, keyFor(fingerprint), &e)
	hit := err == nil
	if c.metrics != nil {
		prometheus.RecordCacheAccess(c.metrics, "coeffcache", hit)
	}
	if !hit {
		c.logger.Debug("coeffcache: miss, falling back to renormalization", logging.Err(err))
		return nil, false
	}
	return e.Coeffs, true
}

// Set stores coeffs under fingerprint's key. A failure to write is logged
// but never propagated: the cache is an optimization, not a dependency the
// evaluation path requires to be correct.
//
// When a lock factory is configured, Set first takes a short, non-blocking
// mutex named after fingerprint. Losing the race means another writer is
// already persisting the identical coefficients this process just
// normalized, so the write is skipped rather than duplicated; a lock
// acquisition error degrades to writing anyway, since the lock is an
// optimization on top of an optimization.
func (c *Cache) Set(ctx context.Context, fingerprint [32]byte, coeffs []float64) {
	if c.locks != nil {
		mu := c.locks.NewMutex(keyFor(fingerprint), redis.WithLockTTL(lockTTL))
		ok, err := mu.TryLock(ctx)
		if err != nil {
			c.logger.Warn("coeffcache: lock attempt failed, writing anyway", logging.Err(err))
		} else if !ok {
			c.logger.Debug("coeffcache: set skipped, fingerprint already being written")
			return
		} else {
			defer func() { _ = mu.Unlock(ctx) }()
		}
	}

	if err := c.cache.Set(ctx, keyFor(fingerprint), entry{Coeffs: coeffs}, c.ttl); err != nil {
		c.logger.Warn("coeffcache: set failed", logging.Err(err))
	}
}
