package redisess

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// doOnly hides everything but Do, forcing the raw dialect.
type doOnly struct {
	c *redis.Client
}

func (d doOnly) Do(ctx context.Context, args ...interface{}) *redis.Cmd {
	return d.c.Do(ctx, args...)
}

// clientMode wraps a typed client into one of the two supported dialects.
type clientMode struct {
	name string
	wrap func(*redis.Client) any
}

func clientModes() []clientMode {
	return []clientMode{
		{name: "command", wrap: func(c *redis.Client) any { return c }},
		{name: "raw", wrap: func(c *redis.Client) any { return doOnly{c: c} }},
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, rdb := newTestRedis(t)
	s, err := New(rdb, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, mr, rdb
}

func mustSave(t *testing.T, s *Store, sid string, rec *Record) {
	t.Helper()
	if err := s.Save(context.Background(), sid, rec); err != nil {
		t.Fatalf("Save(%q): %v", sid, err)
	}
}
