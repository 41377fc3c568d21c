package redisess

import "time"

// Record is the unit of persistence. The store reads only UserID (for the
// user index) and Cookie.Expires (for TTL derivation); everything else is
// opaque middleware payload carried through the codec untouched.
type Record struct {
	// ID is the session id. It is not serialized; the store attaches it on
	// Load and All from the key the record was found under.
	ID string `json:"-"`

	// UserID owns the session. It determines the user-index key written
	// alongside the primary key.
	UserID string `json:"userId"`

	// Cookie carries expiry metadata in the shape session middlewares embed it.
	Cookie Cookie `json:"cookie"`

	// Values is the opaque session payload.
	Values map[string]any `json:"values,omitempty"`
}

// Cookie holds the expiry metadata of a session record.
type Cookie struct {
	// Expires is the absolute expiry time. When set, the record's TTL is
	// derived from it; when nil, the store's configured TTL applies.
	Expires *time.Time `json:"expires,omitempty"`
}
