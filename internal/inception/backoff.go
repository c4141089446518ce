package inception

import (
	"context"
	"time"
)

// Review backoff parameters.
const (
	backoffBase        = 5 * time.Second
	backoffCap         = 300 * time.Second
	genericErrorDelay  = 60 * time.Second
	maxBackoffExponent = 16
)

// BackoffDelay returns the sleep before retry n (n >= 1):
// min(5s * 2^(n-1), 300s). Values of n below 1 are treated as 1.
func BackoffDelay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	exp := n - 1
	if exp > maxBackoffExponent {
		return backoffCap
	}
	d := backoffBase << exp
	if d > backoffCap {
		return backoffCap
	}
	return d
}

// sleepContext waits for d or until ctx is done, returning ctx.Err() in
// the latter case.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
