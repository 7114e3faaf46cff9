package ports

import "context"

// Locker serialises work on a key across concurrent requests. The returned
// release func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}
