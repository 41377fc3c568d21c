// Package redisess provides session persistence on top of Redis-style
// key-value stores, with a secondary per-user index so that every session
// belonging to a user can be enumerated or invalidated together.
//
// # Key layout
//
// Each session is stored under two keys derived from a configurable prefix
// (default "sess:"):
//
//	sess:<sid>            the serialized session record
//	sess:<userID>:<sid>   the user index entry; its value is the primary key
//
// If the configured prefix does not already end in a non-word character, a
// ":" separator is appended so that every key decomposes unambiguously into
// root + separator + suffix. This layout is a wire-compatibility contract:
// a store pointed at an existing namespace must read and write the exact
// same keys.
//
// # Client dialects
//
// The store accepts two client shapes and detects which one it was given
// once, at construction:
//
//   - any go-redis typed client (anything satisfying redis.Cmdable);
//   - any value implementing [Doer], driven through raw positional commands.
//
// Higher-level operations never branch on the dialect.
//
// # Consistency
//
// The primary key and its index entry are written and deleted as separate
// commands; they are kept in lockstep best-effort, not transactionally. A
// failure between the two writes leaves the pair divergent until the keys
// expire. Such failures are returned to the caller and logged, never masked.
//
// # What this package must NOT do
//
//   - Own the client lifecycle (construction, pooling, auth, Close).
//   - Implement the session-middleware contract, cookies, or auth policy.
//   - Retry failed store calls; retry policy belongs to the client layer.
package redisess
