package redisess

import (
	"encoding/json"
	"fmt"
)

// Codec serializes session records to and from the string representation
// stored under the primary key. Implementations must round-trip UserID and
// Cookie.Expires; the rest of the record is theirs to encode however they
// like (e.g. with compression).
type Codec interface {
	Encode(rec *Record) (string, error)
	Decode(data string) (*Record, error)
}

// JSONCodec is the default [Codec]. It stores records as plain JSON.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(rec *Record) (string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("redisess: encode record: %w", err)
	}
	return string(b), nil
}

// Decode implements Codec.
func (JSONCodec) Decode(data string) (*Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("redisess: decode record: %w", err)
	}
	return &rec, nil
}
