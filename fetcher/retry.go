package fetcher

import (
	"context"
	"time"
)

const retryDelay = 500 * time.Millisecond

// withRetry runs op once plus up to retries more times on failure, pausing
// briefly between attempts. Returns the last error when all attempts fail.
// Retries are local to one query; callers treat exhaustion as "no result",
// not a hard failure.
func withRetry(ctx context.Context, retries int, op func() error) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = op(); err == nil {
			return nil
		}
	}
	return err
}
