package redisess

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store persists session records in a Redis-style key-value store and keeps
// a per-user secondary index in lockstep with every write, refresh, and
// delete. It holds no state beyond configuration and is safe for concurrent
// use; consistency under concurrency is delegated to the store's per-command
// atomicity.
type Store struct {
	client kvClient
	keys   keySchema
	codec  Codec
	log    *zap.Logger

	ttl           time.Duration
	ttlFunc       func(*Record) time.Duration
	scanBatchSize int64
	disableTTL    bool
	disableTouch  bool
}

// New creates a [Store] on top of client, which must be either a typed
// go-redis client (redis.Cmdable) or a [Doer]. The dialect is detected here,
// once; it is the only configuration error surface — every operation after
// construction reports failures through its own error return.
func New(client any, opts ...Option) (*Store, error) {
	kv, err := newKVClient(client)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store{
		client:        kv,
		keys:          newKeySchema(cfg.prefix),
		codec:         cfg.codec,
		log:           cfg.logger,
		ttl:           cfg.ttl,
		ttlFunc:       cfg.ttlFunc,
		scanBatchSize: cfg.scanBatchSize,
		disableTTL:    cfg.disableTTL,
		disableTouch:  cfg.disableTouch,
	}, nil
}

// Load fetches and decodes the record stored under sid. A missing session is
// not an error: Load returns (nil, nil).
func (s *Store) Load(ctx context.Context, sid string) (*Record, error) {
	val, ok, err := s.client.get(ctx, s.keys.session(sid))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return nil, nil
	}
	rec, err := s.codec.Decode(val)
	if err != nil {
		return nil, err
	}
	rec.ID = sid
	return rec, nil
}

// Save writes the record under its primary key and writes the user-index key
// pointing back at it, both with the record's effective TTL (or without
// expiry when TTL tracking is disabled). A TTL <= 0 means the record is
// already expired, so Save delegates to Destroy instead of writing.
//
// The two writes are separate commands. When the index write fails after the
// primary write succeeded, Save returns the failure and leaves the primary
// key in place; the divergence is logged and heals when the keys expire.
func (s *Store) Save(ctx context.Context, sid string, rec *Record) error {
	if rec == nil {
		return ErrNilRecord
	}

	ttl := s.effectiveTTL(rec)
	if ttl <= 0 {
		return s.Destroy(ctx, sid)
	}
	if s.disableTTL {
		ttl = 0
	}

	payload, err := s.codec.Encode(rec)
	if err != nil {
		return err
	}

	primary := s.keys.session(sid)
	index := s.keys.userIndex(rec.UserID, sid)

	if err := s.client.set(ctx, primary, payload, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := s.client.set(ctx, index, primary, ttl); err != nil {
		s.log.Warn("user index write failed after session write; index diverged",
			zap.String("session_id", sid),
			zap.String("user_id", rec.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Touch refreshes the TTL of the primary and index keys without rewriting
// the payload. It is a no-op when touch or TTL tracking is disabled. A
// recomputed TTL <= 0 delegates to Destroy, mirroring Save.
func (s *Store) Touch(ctx context.Context, sid string, rec *Record) error {
	if s.disableTouch || s.disableTTL {
		return nil
	}
	if rec == nil {
		return ErrNilRecord
	}

	ttl := s.effectiveTTL(rec)
	if ttl <= 0 {
		return s.Destroy(ctx, sid)
	}

	// A false result means the key is already gone; the store's expiry won
	// the race and there is nothing to refresh.
	if _, err := s.client.expire(ctx, s.keys.session(sid), ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if _, err := s.client.expire(ctx, s.keys.userIndex(rec.UserID, sid), ttl); err != nil {
		s.log.Warn("user index refresh failed after session refresh; TTLs diverged",
			zap.String("session_id", sid),
			zap.String("user_id", rec.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Destroy removes a session and its index entry. The stored record is read
// first to recover the user id the index key was written under; a missing
// session is a no-op, not an error. Both keys go in a single DEL, which the
// store applies atomically.
func (s *Store) Destroy(ctx context.Context, sid string) error {
	primary := s.keys.session(sid)

	val, ok, err := s.client.get(ctx, primary)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return nil
	}
	rec, err := s.codec.Decode(val)
	if err != nil {
		return err
	}

	keys := []string{primary, s.keys.userIndex(rec.UserID, sid)}
	if _, err := s.client.del(ctx, keys); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Clear removes every key under the namespace root, primary and index keys
// alike.
func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.client.scan(ctx, s.keys.allPattern(), s.scanBatchSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(keys) == 0 {
		return nil
	}
	removed, err := s.client.del(ctx, keys)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.log.Debug("cleared session namespace",
		zap.String("pattern", s.keys.allPattern()),
		zap.Int64("removed", removed),
	)
	return nil
}

// ClearForUser removes every session owned by userID. It enumerates the
// user's index keys and derives each primary key from the index-key suffix
// (the suffix after the user prefix is the session id), so no per-session
// read is needed; the whole union goes in one DEL.
func (s *Store) ClearForUser(ctx context.Context, userID string) error {
	indexKeys, err := s.client.scan(ctx, s.keys.userPattern(userID), s.scanBatchSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(indexKeys) == 0 {
		return nil
	}

	userPrefix := s.keys.userIndexPrefix(userID)
	keys := make([]string, 0, 2*len(indexKeys))
	for _, idx := range indexKeys {
		keys = append(keys, idx, s.keys.session(strings.TrimPrefix(idx, userPrefix)))
	}
	removed, err := s.client.del(ctx, keys)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.log.Debug("cleared user sessions",
		zap.String("user_id", userID),
		zap.Int64("removed", removed),
	)
	return nil
}

// Count returns the number of live sessions. Index keys match the namespace
// scan too and are filtered out.
func (s *Store) Count(ctx context.Context) (int, error) {
	keys, err := s.client.scan(ctx, s.keys.allPattern(), s.scanBatchSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	n := 0
	for _, key := range keys {
		if s.keys.isSessionKey(key) {
			n++
		}
	}
	return n, nil
}

// IDs returns the ids of all live sessions.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	keys, err := s.client.scan(ctx, s.keys.allPattern(), s.scanBatchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if s.keys.isSessionKey(key) {
			ids = append(ids, s.keys.sessionID(key))
		}
	}
	return ids, nil
}

// All returns every live session record with its id attached. Keys that
// expire between the scan and the fetch come back as nil from the multi-get
// and are skipped.
func (s *Store) All(ctx context.Context) ([]*Record, error) {
	keys, err := s.client.scan(ctx, s.keys.allPattern(), s.scanBatchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	primaries := make([]string, 0, len(keys))
	for _, key := range keys {
		if s.keys.isSessionKey(key) {
			primaries = append(primaries, key)
		}
	}
	if len(primaries) == 0 {
		return []*Record{}, nil
	}

	vals, err := s.client.mget(ctx, primaries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	records := make([]*Record, 0, len(vals))
	for i, val := range vals {
		if val == nil {
			continue
		}
		rec, err := s.codec.Decode(*val)
		if err != nil {
			return nil, err
		}
		rec.ID = s.keys.sessionID(primaries[i])
		records = append(records, rec)
	}
	return records, nil
}

// IDsForUser returns the ids of every live session owned by userID, straight
// from the index scan.
func (s *Store) IDsForUser(ctx context.Context, userID string) ([]string, error) {
	indexKeys, err := s.client.scan(ctx, s.keys.userPattern(userID), s.scanBatchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	userPrefix := s.keys.userIndexPrefix(userID)
	ids := make([]string, 0, len(indexKeys))
	for _, idx := range indexKeys {
		ids = append(ids, strings.TrimPrefix(idx, userPrefix))
	}
	return ids, nil
}

// CountForUser returns how many live sessions userID owns.
func (s *Store) CountForUser(ctx context.Context, userID string) (int, error) {
	indexKeys, err := s.client.scan(ctx, s.keys.userPattern(userID), s.scanBatchSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return len(indexKeys), nil
}

// Ping returns a point-in-time availability check and its latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.client.ping(ctx); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
