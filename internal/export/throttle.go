package export

import (
	"context"
	"time"
)

// Throttle paces row emission. Wait blocks before each row and returns early
// with the context error if ctx ends.
type Throttle interface {
	Wait(ctx context.Context) error
}

// ThrottleFunc adapts a function to Throttle.
type ThrottleFunc func(ctx context.Context) error

func (f ThrottleFunc) Wait(ctx context.Context) error { return f(ctx) }

// NoDelay never blocks.
var NoDelay Throttle = ThrottleFunc(func(context.Context) error { return nil })

// FixedDelay sleeps d before every row. A non-positive d yields NoDelay.
func FixedDelay(d time.Duration) Throttle {
	if d <= 0 {
		return NoDelay
	}
	return ThrottleFunc(func(ctx context.Context) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	})
}
