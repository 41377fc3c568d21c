package redisess

import "github.com/google/uuid"

// GenerateID returns a new random session id. The store itself never
// generates ids — middleware callers do — but a UUIDv4 is a safe default for
// callers that have no scheme of their own.
func GenerateID() string {
	return uuid.NewString()
}
