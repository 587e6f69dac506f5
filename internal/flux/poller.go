package flux

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultMaxAttempts = 20
	DefaultInterval    = 1500 * time.Millisecond
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real-clock SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Poller runs a check at a fixed interval up to MaxAttempts times.
type Poller struct {
	MaxAttempts int
	Interval    time.Duration
	Sleep       SleepFunc
}

func NewPoller(maxAttempts int, interval time.Duration) Poller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Poller{MaxAttempts: maxAttempts, Interval: interval, Sleep: Sleep}
}

// CheckFunc inspects one attempt. It returns done once a final state is
// reached; a non-nil error aborts polling immediately.
type CheckFunc func(ctx context.Context, attempt int) (done bool, err error)

// Poll waits Interval before every attempt and stops at the first final
// state, the first error, or when attempts run out.
func (p Poller) Poll(ctx context.Context, check CheckFunc) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := sleep(ctx, p.Interval); err != nil {
			return err
		}
		done, err := check(ctx, attempt)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrPollingExhausted, p.MaxAttempts)
}
