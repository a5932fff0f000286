package mdns

import (
	"context"
	"math/rand"
	"time"
)

// startupDelayMax is the upper bound of the random delay observed before the
// service begins answering queries.
//
// See https://tools.ietf.org/html/rfc6762#section-8.1.
const startupDelayMax = 250 * time.Millisecond

// randT returns a random duration between 0 and d, inclusive.
func randT(d time.Duration) time.Duration {
	return time.Duration(rand.Int63n(int64(d) + 1))
}

// sleep sleeps for a duration of d, or until ctx is canceled.
// It returns nil if the sleep duration passes before ctx is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
