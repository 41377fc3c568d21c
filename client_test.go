package redisess

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"
)

func TestNewDialectDetection(t *testing.T) {
	_, rdb := newTestRedis(t)

	if _, err := New(rdb); err != nil {
		t.Fatalf("New(typed client): %v", err)
	}
	if _, err := New(doOnly{c: rdb}); err != nil {
		t.Fatalf("New(Doer): %v", err)
	}
	if _, err := New(nil); !errors.Is(err, ErrClientRequired) {
		t.Fatalf("New(nil) = %v, want ErrClientRequired", err)
	}
	if _, err := New(struct{}{}); !errors.Is(err, ErrUnsupportedClient) {
		t.Fatalf("New(struct{}{}) = %v, want ErrUnsupportedClient", err)
	}
}

func TestClientAdapterPrimitives(t *testing.T) {
	ctx := context.Background()

	for _, mode := range clientModes() {
		t.Run(mode.name, func(t *testing.T) {
			mr, rdb := newTestRedis(t)
			kv, err := newKVClient(mode.wrap(rdb))
			if err != nil {
				t.Fatalf("newKVClient: %v", err)
			}

			// set without expiry
			if err := kv.set(ctx, "k1", "v1", 0); err != nil {
				t.Fatalf("set: %v", err)
			}
			if mr.TTL("k1") != 0 {
				t.Fatalf("k1 TTL = %v, want none", mr.TTL("k1"))
			}

			// set with expiry
			if err := kv.set(ctx, "k2", "v2", 60*time.Second); err != nil {
				t.Fatalf("set with ttl: %v", err)
			}
			if got := mr.TTL("k2"); got != 60*time.Second {
				t.Fatalf("k2 TTL = %v, want 60s", got)
			}

			// get present and absent
			val, ok, err := kv.get(ctx, "k1")
			if err != nil || !ok || val != "v1" {
				t.Fatalf("get(k1) = (%q, %v, %v), want (v1, true, nil)", val, ok, err)
			}
			if _, ok, err := kv.get(ctx, "nope"); err != nil || ok {
				t.Fatalf("get(nope) = (_, %v, %v), want (false, nil)", ok, err)
			}

			// expire
			renewed, err := kv.expire(ctx, "k1", 30*time.Second)
			if err != nil || !renewed {
				t.Fatalf("expire(k1) = (%v, %v), want (true, nil)", renewed, err)
			}
			if got := mr.TTL("k1"); got != 30*time.Second {
				t.Fatalf("k1 TTL = %v, want 30s", got)
			}
			if renewed, err := kv.expire(ctx, "nope", 30*time.Second); err != nil || renewed {
				t.Fatalf("expire(nope) = (%v, %v), want (false, nil)", renewed, err)
			}

			// mget keeps alignment, absent entries are nil
			vals, err := kv.mget(ctx, []string{"k1", "nope", "k2"})
			if err != nil {
				t.Fatalf("mget: %v", err)
			}
			if len(vals) != 3 || vals[0] == nil || vals[1] != nil || vals[2] == nil {
				t.Fatalf("mget alignment broken: %v", vals)
			}
			if *vals[0] != "v1" || *vals[2] != "v2" {
				t.Fatalf("mget values = (%q, %q), want (v1, v2)", *vals[0], *vals[2])
			}

			// del returns the number of keys that existed
			n, err := kv.del(ctx, []string{"k1", "k2", "nope"})
			if err != nil || n != 2 {
				t.Fatalf("del = (%d, %v), want (2, nil)", n, err)
			}
		})
	}
}

func TestClientAdapterScan(t *testing.T) {
	ctx := context.Background()

	for _, mode := range clientModes() {
		t.Run(mode.name, func(t *testing.T) {
			mr, rdb := newTestRedis(t)
			kv, err := newKVClient(mode.wrap(rdb))
			if err != nil {
				t.Fatalf("newKVClient: %v", err)
			}

			want := make([]string, 0, 250)
			for i := 0; i < 250; i++ {
				key := fmt.Sprintf("sess:%03d", i)
				if err := mr.Set(key, "v"); err != nil {
					t.Fatalf("seed %q: %v", key, err)
				}
				want = append(want, key)
			}
			if err := mr.Set("other:1", "v"); err != nil {
				t.Fatalf("seed other:1: %v", err)
			}

			// A batch size far below the key count forces multiple cursor
			// round trips.
			got, err := kv.scan(ctx, "sess:*", 10)
			if err != nil {
				t.Fatalf("scan: %v", err)
			}
			sort.Strings(got)
			if len(got) != len(want) {
				t.Fatalf("scan returned %d keys, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("scan[%d] = %q, want %q", i, got[i], want[i])
				}
			}

			// Each call starts a fresh cursor.
			again, err := kv.scan(ctx, "sess:*", 10)
			if err != nil {
				t.Fatalf("second scan: %v", err)
			}
			if len(again) != len(want) {
				t.Fatalf("second scan returned %d keys, want %d", len(again), len(want))
			}

			empty, err := kv.scan(ctx, "missing:*", 10)
			if err != nil {
				t.Fatalf("empty scan: %v", err)
			}
			if len(empty) != 0 {
				t.Fatalf("empty scan returned %d keys", len(empty))
			}
		})
	}
}

func TestClientAdapterPing(t *testing.T) {
	ctx := context.Background()

	for _, mode := range clientModes() {
		t.Run(mode.name, func(t *testing.T) {
			mr, rdb := newTestRedis(t)
			kv, err := newKVClient(mode.wrap(rdb))
			if err != nil {
				t.Fatalf("newKVClient: %v", err)
			}
			if err := kv.ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}

			mr.Close()
			if err := kv.ping(ctx); err == nil {
				t.Fatal("ping succeeded against a closed store")
			}
		})
	}
}
