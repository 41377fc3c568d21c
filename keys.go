package redisess

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// keySchema derives every key form used on the wire from the configured
// prefix. All three derived values are computed once at construction and
// never change for the lifetime of a store.
type keySchema struct {
	prefix string // "sess:"  — primary keys are prefix+sid
	root   string // "sess"   — namespace root, prefix minus the separator
	sep    string // ":"      — the single separator character
}

func newKeySchema(prefix string) keySchema {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	last, _ := utf8.DecodeLastRuneInString(prefix)
	if isWordRune(last) {
		prefix += ":"
		last = ':'
	}
	sep := string(last)
	return keySchema{
		prefix: prefix,
		root:   strings.TrimSuffix(prefix, sep),
		sep:    sep,
	}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// session returns the primary key for a session id.
func (k keySchema) session(sid string) string {
	return k.prefix + sid
}

// userIndex returns the secondary index key for a (user, session) pair.
func (k keySchema) userIndex(userID, sid string) string {
	return k.userIndexPrefix(userID) + sid
}

func (k keySchema) userIndexPrefix(userID string) string {
	return k.root + k.sep + userID + k.sep
}

// allPattern matches every key in the namespace, primary and index alike.
func (k keySchema) allPattern() string {
	return k.prefix + "*"
}

// userPattern matches the index keys of a single user.
func (k keySchema) userPattern(userID string) string {
	return k.userIndexPrefix(userID) + "*"
}

// sessionID strips the prefix from a primary key.
func (k keySchema) sessionID(key string) string {
	return strings.TrimPrefix(key, k.prefix)
}

// isSessionKey reports whether a key from an allPattern scan is a primary
// key. Index keys carry a second separator in their suffix; primary keys
// never do.
func (k keySchema) isSessionKey(key string) bool {
	return !strings.Contains(k.sessionID(key), k.sep)
}
