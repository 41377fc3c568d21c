package redisess

import "time"

// effectiveTTL computes the time-to-live for a record. Precedence: the
// configured TTL function, then the record's own cookie expiry, then the
// static default. A result <= 0 means "do not persist": callers delegate to
// Destroy instead of writing.
func (s *Store) effectiveTTL(rec *Record) time.Duration {
	if s.ttlFunc != nil {
		return s.ttlFunc(rec)
	}
	if rec != nil && rec.Cookie.Expires != nil {
		return ceilSeconds(time.Until(*rec.Cookie.Expires))
	}
	return s.ttl
}

// ceilSeconds rounds a duration up to whole seconds at millisecond
// resolution, matching the expiry granularity of cookie timestamps. Negative
// durations round toward zero, so an expiry 5s in the past yields -5s.
func ceilSeconds(d time.Duration) time.Duration {
	ms := d.Milliseconds()
	secs := ms / 1000
	if ms%1000 > 0 {
		secs++
	}
	return time.Duration(secs) * time.Second
}
