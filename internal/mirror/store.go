// Package mirror provides the durable key-value port behind the answer
// mirror: the reload-surviving copy of in-progress answers plus the stored
// test duration. Backends are interchangeable; the player only needs
// get/set/delete semantics with single-writer usage.
package mirror

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("mirror: key not found")

// Store is the durable mirror port. Implementations must tolerate concurrent
// reads but may assume a single writer per key (the active attempt).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
