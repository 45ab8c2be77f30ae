// Package store persists per-user wizard state in Redis as named JSON slots.
// Reads never fail: a missing, corrupt, or unreachable entry yields the
// caller's default so the wizard always has usable state to render from.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/direct-boost/internal/pkg/logger"
)

// Slot names for the durable wizard state, one per state slot.
const (
	SlotEmail           = "email"
	SlotStep            = "step"
	SlotFiles           = "files"
	SlotDiscountConfig  = "discountConfig"
	SlotDiscountSummary = "discountSummary"
	SlotSegmentProfile  = "segmentProfile"
	SlotSegmentCounts   = "segmentCounts"
	SlotBookingRecord   = "booking_record"
)

// Store wraps a Redis client with JSON (de)serialization per named slot.
type Store struct {
	rdb *redis.Client
}

// New creates a wizard state store backed by the given Redis client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func key(email, slot string) string {
	return fmt.Sprintf("wizard:%s:%s", email, slot)
}

// Read loads the JSON value stored under the user's slot. Absence, corrupt
// data, or a Redis failure logs a warning and returns def. Read never
// surfaces an error to the caller.
func Read[T any](ctx context.Context, s *Store, email, slot string, def T) T {
	data, err := s.rdb.Get(ctx, key(email, slot)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("store: read failed, using default", "slot", slot, "email", email, "error", err)
		}
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("store: invalid JSON, using default", "slot", slot, "email", email, "error", err)
		return def
	}
	return v
}

// Write serializes v and persists it under the user's slot. Failures are
// logged and swallowed: wizard state is overwritten on the next successful
// mutation, so a dropped write degrades to stale state, never to an error
// surfaced mid-flow.
func (s *Store) Write(ctx context.Context, email, slot string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("store: marshal failed", "slot", slot, "email", email, "error", err)
		return
	}
	if err := s.rdb.Set(ctx, key(email, slot), data, 0).Err(); err != nil {
		logger.Error("store: write failed", "slot", slot, "email", email, "error", err)
	}
}

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
