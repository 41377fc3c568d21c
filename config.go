package redisess

import (
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPrefix is the key prefix used when none is configured.
	DefaultPrefix = "sess:"
	// DefaultTTL is the static time-to-live applied to records that carry no
	// cookie expiry, when no TTL function is configured.
	DefaultTTL = 86400 * time.Second
	// DefaultScanBatchSize bounds how many keys a single SCAN round trip asks
	// the store for.
	DefaultScanBatchSize = 100
)

// Option configures a [Store] at construction.
type Option func(*config)

type config struct {
	prefix        string
	ttl           time.Duration
	ttlFunc       func(*Record) time.Duration
	scanBatchSize int64
	codec         Codec
	logger        *zap.Logger
	disableTTL    bool
	disableTouch  bool
}

func defaultConfig() config {
	return config{
		prefix:        DefaultPrefix,
		ttl:           DefaultTTL,
		scanBatchSize: DefaultScanBatchSize,
		codec:         JSONCodec{},
		logger:        zap.NewNop(),
	}
}

// WithPrefix sets the key prefix. A ":" separator is appended when the
// prefix does not already end in a non-word character.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

// WithTTL sets the static TTL applied to records without a cookie expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithTTLFunc derives the TTL per record, overriding both the static TTL and
// cookie-expiry derivation. The function may return a value <= 0 to signal
// that the record must not be persisted.
func WithTTLFunc(fn func(*Record) time.Duration) Option {
	return func(c *config) {
		c.ttlFunc = fn
	}
}

// WithScanBatchSize bounds the per-round-trip key count of scan-based
// operations (Clear, ClearForUser, Count, IDs, All).
func WithScanBatchSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.scanBatchSize = int64(n)
		}
	}
}

// WithCodec replaces the default JSON record codec.
func WithCodec(codec Codec) Option {
	return func(c *config) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithLogger sets the logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithoutTTL writes keys without expiry and turns Touch into a no-op.
func WithoutTTL() Option {
	return func(c *config) {
		c.disableTTL = true
	}
}

// WithoutTouch turns Touch into a no-op while Save keeps setting TTLs.
func WithoutTouch() Option {
	return func(c *config) {
		c.disableTouch = true
	}
}
