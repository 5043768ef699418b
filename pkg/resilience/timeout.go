package resilience

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
)

// WithTimeout bounds fn, typically one report-store write, to timeout. An
// overrun returns an error matching both apperrors.ErrTimeout and
// context.DeadlineExceeded; fn keeps running in the background with a
// cancelled context. Cancellation of ctx itself is returned as is.
func WithTimeout(ctx context.Context, timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- fn(opCtx) }()

	select {
	case err := <-result:
		return err
	case <-opCtx.Done():
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s exceeded %v: %w: %w", op, timeout, apperrors.ErrTimeout, context.DeadlineExceeded)
	}
}
