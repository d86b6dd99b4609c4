// Package lock provides per-key mutual exclusion for notice mutations.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when a lock could not be obtained before the deadline.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker serialises work on a key. The returned release func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}
