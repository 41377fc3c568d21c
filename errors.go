package redisess

import "errors"

var (
	// ErrClientRequired is returned by New when no client is supplied.
	ErrClientRequired = errors.New("redisess: client is required")
	// ErrUnsupportedClient is returned by New when the supplied client speaks
	// neither the typed go-redis dialect nor the raw Doer dialect.
	ErrUnsupportedClient = errors.New("redisess: unsupported client type")
	// ErrStoreUnavailable wraps network, protocol, and command errors from the
	// underlying client.
	ErrStoreUnavailable = errors.New("redisess: store unavailable")
	// ErrNilRecord is returned by Save and Touch when called without a record.
	ErrNilRecord = errors.New("redisess: nil session record")
)
