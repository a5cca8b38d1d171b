package lockout

import (
	"context"
	"time"
)

type State struct {
	FailedCount int
	LockedUntil *time.Time
}

func (s State) Locked(now time.Time) bool {
	return s.LockedUntil != nil && now.Before(*s.LockedUntil)
}

// Store lleva la cuenta de intentos fallidos de login por key (IP).
type Store interface {
	Get(ctx context.Context, key string) (State, error)
	RecordFailure(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (State, error)
	Clear(ctx context.Context, key string) error
}
