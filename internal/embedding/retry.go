package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/reviewcheck/pkg/utils"
	"go.uber.org/zap"
)

// RetryingEmbedder retries transient provider failures (see ProviderError.Retryable)
// with exponential backoff. Permanent failures are returned immediately.
type RetryingEmbedder struct {
	next       Embedder
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

// RetryOption configures a RetryingEmbedder.
type RetryOption func(*RetryingEmbedder)

// WithRetryLogger logs each retried attempt at warn level.
func WithRetryLogger(logger *zap.Logger) RetryOption {
	return func(r *RetryingEmbedder) {
		r.logger = utils.OrNop(logger)
	}
}

// NewRetryingEmbedder wraps next. With maxRetries <= 0 it makes a single attempt.
func NewRetryingEmbedder(next Embedder, maxRetries int, baseDelay time.Duration, opts ...RetryOption) *RetryingEmbedder {
	r := &RetryingEmbedder{
		next:       next,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Embed calls the wrapped Embedder, retrying while the error is retryable.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			delay := utils.CalculateBackoff(r.baseDelay, attempt)
			r.logger.Warn("retrying embedding request",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
		v, err := r.next.Embed(ctx, text)
		if err == nil {
			return v, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	if r.maxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", r.maxRetries+1, lastErr)
}
