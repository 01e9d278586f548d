// Package backoffutil wraps github.com/cenkalti/backoff/v4 with the
// fixed-interval retry policy spec.md §3 requires for Initialize:
// retry_count attempts, 500ms between attempts, no jitter or growth.
package backoffutil

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry runs op up to attempts times with a constant interval between
// attempts, stopping early on success. It returns the last error if every
// attempt failed, or ctx.Err() if ctx is done first.
func Retry(ctx context.Context, interval time.Duration, attempts int, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(interval),
			uint64(attempts-1),
		),
		ctx,
	)
	return backoff.Retry(op, policy)
}
