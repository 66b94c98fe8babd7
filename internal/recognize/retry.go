package recognize

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultRetryDelay is the pause before the single retry of a failed
// recognition call.
const DefaultRetryDelay = 2 * time.Second

// retryService retries a failed Recognize call exactly once after a short
// fixed delay. Transient engine hiccups are the common failure mode; anything
// persistent surfaces as the second error.
type retryService struct {
	inner   Service
	clock   clockwork.Clock
	delay   time.Duration
	onRetry func()
}

// WithRetry wraps a Service with one-shot retry behavior. A nil clock uses
// the real clock; onRetry (optional) is invoked before each retry attempt.
func WithRetry(inner Service, clock clockwork.Clock, delay time.Duration, onRetry func()) Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return &retryService{inner: inner, clock: clock, delay: delay, onRetry: onRetry}
}

func (r *retryService) Recognize(ctx context.Context, img image.Image, opts Options) ([]Token, error) {
	tokens, err := r.inner.Recognize(ctx, img, opts)
	if err == nil || ctx.Err() != nil {
		return tokens, err
	}

	slog.Warn("recognition failed, retrying once", "error", err, "delay", r.delay)
	if r.onRetry != nil {
		r.onRetry()
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.clock.After(r.delay):
	}
	return r.inner.Recognize(ctx, img, opts)
}

func (r *retryService) Close() error { return r.inner.Close() }
