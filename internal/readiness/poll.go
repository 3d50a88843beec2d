package readiness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryankumar/stackup/internal/util"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
)

// DefaultInterval is the delay between checks when none is configured
const DefaultInterval = 2 * time.Second

// Waiter polls cluster state through a typed client
type Waiter struct {
	Client   kubernetes.Interface
	Interval time.Duration
	Logger   *slog.Logger
}

// NewWaiter creates a waiter polling every interval
func NewWaiter(client kubernetes.Interface, interval time.Duration, logger *slog.Logger) *Waiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Waiter{
		Client:   client,
		Interval: interval,
		Logger:   logger,
	}
}

// ConditionFunc reports whether the awaited state holds. A non-empty reason
// explains why it does not yet; a non-nil error aborts the wait.
type ConditionFunc func(ctx context.Context) (done bool, reason string, err error)

// Poll checks cond immediately and then every interval until it holds,
// the timeout expires or ctx is cancelled
func Poll(ctx context.Context, logger *slog.Logger, interval, timeout time.Duration, what string, cond ConditionFunc) error {
	if logger == nil {
		logger = slog.Default()
	}

	startTime := time.Now()
	attempts := 0
	lastReason := ""

	logger.Debug("waiting", "for", what, "timeout", timeout)

	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		attempts++
		done, reason, err := cond(ctx)
		if err != nil {
			return false, err
		}
		if !done && reason != lastReason {
			logger.Debug("not ready yet", "for", what, "reason", reason, "attempt", attempts)
			lastReason = reason
		}
		return done, nil
	})

	elapsed := time.Since(startTime)

	if err == nil {
		logger.Info("ready", "for", what, "attempts", attempts, "duration", elapsed.Round(time.Millisecond))
		return nil
	}

	if ctx.Err() != nil {
		return fmt.Errorf("%w while waiting for %s: %v", util.ErrCancelled, what, ctx.Err())
	}

	if wait.Interrupted(err) {
		logger.Error("wait timed out", "for", what, "last_reason", lastReason, "attempts", attempts)
		timeoutErr := &util.TimeoutError{What: what, After: timeout}
		if lastReason != "" {
			return fmt.Errorf("%w (%s)", timeoutErr, lastReason)
		}
		return timeoutErr
	}

	return err
}

// WaitFor polls cond with the waiter's interval and logger
func (w *Waiter) WaitFor(ctx context.Context, what string, timeout time.Duration, cond ConditionFunc) error {
	return Poll(ctx, w.Logger, w.Interval, timeout, what, cond)
}
