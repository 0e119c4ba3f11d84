package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by a DistributedLocker. Releasing a lock that
// already expired is not an error.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes flatten calls for one session across server
// replicas sharing the same grammar backend.
//
// The in-process manager already orders calls within one replica; a locker is
// only needed when several replicas serve the same sessions.
type DistributedLocker interface {
	// Lock waits until the session key is free or ctx is done. The lock
	// lapses after ttl even if the returned UnlockFunc is never called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
