// Package kv defines the persistence port: a key/value store holding JSON
// payloads, wrapped by a typed load/save adapter that tolerates read and
// write failures. One logical key holds the whole expense collection.
package kv

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Store is the outbound port for durable bytes. Implementations own the
// backing storage for their keys; a single process is the only reader and
// writer, so no cross-process coordination is attempted.
type Store interface {
	// Get returns the bytes under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Set writes the bytes under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error
	Close() error
}

// Load reads and decodes the value under key into T. A missing key, a
// store failure or a malformed payload all degrade to initial: reads never
// fail the caller, the worst case is starting from the default.
func Load[T any](ctx context.Context, s Store, key string, initial T) T {
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "Store read failed, using initial value",
			"key", key, "error", err)
		return initial
	}
	if !ok {
		return initial
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		slog.WarnContext(ctx, "Malformed persisted payload, using initial value",
			"key", key, "error", err)
		return initial
	}
	return v
}

// Save encodes value and writes it under key. The write is best-effort:
// callers log the returned error and keep their in-memory state.
func Save[T any](ctx context.Context, s Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}
