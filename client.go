package redisess

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Doer is the raw client dialect: a client that exposes only positional
// command execution. Wrap any connection-like value in a Doer to use it with
// [New] when it does not satisfy redis.Cmdable.
type Doer interface {
	Do(ctx context.Context, args ...interface{}) *redis.Cmd
}

// kvClient is the capability interface every store operation is written
// against. Both dialects normalize to it; nothing above this interface knows
// which dialect is in play.
type kvClient interface {
	// get returns the value and whether the key exists.
	get(ctx context.Context, key string) (string, bool, error)
	// set writes value under key, with expiry when ttl > 0.
	set(ctx context.Context, key, value string, ttl time.Duration) error
	// expire resets a key's TTL; false when the key does not exist.
	expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// mget returns values aligned with keys; nil entries mark absent keys.
	mget(ctx context.Context, keys []string) ([]*string, error)
	// del removes keys and returns how many existed.
	del(ctx context.Context, keys []string) (int64, error)
	// scan drains a fresh cursor over keys matching match, count keys per
	// round trip, and returns the materialized list.
	scan(ctx context.Context, match string, count int64) ([]string, error)
	ping(ctx context.Context) error
}

// newKVClient probes the supplied client for its dialect. The typed dialect
// is checked first: every go-redis client satisfies redis.Cmdable, while a
// bare Doer wrapper does not.
func newKVClient(client any) (kvClient, error) {
	switch c := client.(type) {
	case nil:
		return nil, ErrClientRequired
	case redis.Cmdable:
		return &commandClient{c: c}, nil
	case Doer:
		return &rawClient{c: c}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedClient, client)
	}
}

// commandClient drives a typed go-redis client. SCAN cursors are uint64 and
// zero signals exhaustion.
type commandClient struct {
	c redis.Cmdable
}

func (c *commandClient) get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *commandClient) set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0
	}
	return c.c.Set(ctx, key, value, ttl).Err()
}

func (c *commandClient) expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.c.Expire(ctx, key, ttl).Result()
}

func (c *commandClient) mget(ctx context.Context, keys []string) ([]*string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := c.c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*string, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected MGET reply type %T", v)
		}
		out[i] = &s
	}
	return out, nil
}

func (c *commandClient) del(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return c.c.Del(ctx, keys...).Result()
}

func (c *commandClient) scan(ctx context.Context, match string, count int64) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := c.c.Scan(ctx, cursor, match, count).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (c *commandClient) ping(ctx context.Context) error {
	return c.c.Ping(ctx).Err()
}

// rawClient drives a positional-command client. SCAN cursors are plain
// strings and "0" signals exhaustion.
type rawClient struct {
	c Doer
}

func (r *rawClient) get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.c.Do(ctx, "GET", key).Text()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *rawClient) set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl > 0 {
		return r.c.Do(ctx, "SET", key, value, "EX", ttlSeconds(ttl)).Err()
	}
	return r.c.Do(ctx, "SET", key, value).Err()
}

func (r *rawClient) expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	n, err := r.c.Do(ctx, "EXPIRE", key, ttlSeconds(ttl)).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *rawClient) mget(ctx context.Context, keys []string) ([]*string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	args := make([]interface{}, 0, len(keys)+1)
	args = append(args, "MGET")
	for _, k := range keys {
		args = append(args, k)
	}
	vals, err := r.c.Do(ctx, args...).Slice()
	if err != nil {
		return nil, err
	}
	out := make([]*string, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		s, err := replyString(v)
		if err != nil {
			return nil, err
		}
		out[i] = &s
	}
	return out, nil
}

func (r *rawClient) del(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	args := make([]interface{}, 0, len(keys)+1)
	args = append(args, "DEL")
	for _, k := range keys {
		args = append(args, k)
	}
	return r.c.Do(ctx, args...).Int64()
}

func (r *rawClient) scan(ctx context.Context, match string, count int64) ([]string, error) {
	cursor := "0"
	var keys []string
	for {
		reply, err := r.c.Do(ctx, "SCAN", cursor, "MATCH", match, "COUNT", count).Slice()
		if err != nil {
			return nil, err
		}
		if len(reply) != 2 {
			return nil, fmt.Errorf("malformed SCAN reply: %d elements", len(reply))
		}
		next, err := replyString(reply[0])
		if err != nil {
			return nil, err
		}
		batch, ok := reply[1].([]interface{})
		if !ok {
			return nil, fmt.Errorf("malformed SCAN key batch: %T", reply[1])
		}
		for _, k := range batch {
			s, err := replyString(k)
			if err != nil {
				return nil, err
			}
			keys = append(keys, s)
		}
		cursor = next
		if cursor == "0" {
			return keys, nil
		}
	}
}

func (r *rawClient) ping(ctx context.Context) error {
	return r.c.Do(ctx, "PING").Err()
}

// ttlSeconds rounds a positive TTL up to whole seconds for EX/EXPIRE
// arguments.
func ttlSeconds(ttl time.Duration) int64 {
	return int64((ttl + time.Second - 1) / time.Second)
}

func replyString(v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	default:
		return "", fmt.Errorf("unexpected reply type %T", v)
	}
}
