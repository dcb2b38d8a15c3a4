// Package cache stores rendered responses in Redis keyed by endpoint and the
// canonical form of the request body.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "response:"

// Connect parses a redis:// URL and returns a client. No connection is made
// until first use.
func Connect(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// Responses is a read-through response cache. A nil *Responses, a nil client
// or a zero TTL disables caching. Redis failures count as misses.
type Responses struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Responses {
	return &Responses{rdb: rdb, ttl: ttl}
}

func (r *Responses) enabled() bool {
	return r != nil && r.rdb != nil && r.ttl > 0
}

// Key derives the cache key for a request. Bodies that differ only in key
// order or whitespace share a key.
func Key(endpoint string, body []byte) (string, error) {
	canonical, err := Canonical(body)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return keyPrefix + endpoint + ":" + hex.EncodeToString(sum[:]), nil
}

// Canonical re-encodes a JSON document with sorted object keys.
func Canonical(body []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Get returns the cached value for key.
func (r *Responses) Get(ctx context.Context, key string) ([]byte, bool) {
	if !r.enabled() {
		return nil, false
	}
	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("response cache read failed")
		}
		return nil, false
	}
	return b, true
}

// Set stores value under key for the configured TTL.
func (r *Responses) Set(ctx context.Context, key string, value []byte) {
	if !r.enabled() {
		return
	}
	if err := r.rdb.Set(ctx, key, value, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("response cache write failed")
	}
}
