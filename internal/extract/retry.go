package extract

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/joseph-ayodele/layout-verifier/internal/common"
)

// RetryingExtractor retries transient failures. Missing text layers and unsupported formats fail at once.
type RetryingExtractor struct {
	next     TextExtractor
	attempts uint
	delay    time.Duration
	logger   *slog.Logger
}

func NewRetryingExtractor(next TextExtractor, retries int, delay time.Duration, logger *slog.Logger) *RetryingExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if retries < 0 {
		retries = 0
	}
	return &RetryingExtractor{next: next, attempts: uint(retries) + 1, delay: delay, logger: logger}
}

func (r *RetryingExtractor) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	var res TextExtractionResult
	err := retry.Do(
		func() error {
			var err error
			res, err = r.next.Extract(ctx, path)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return Retryable(ctx, err) }),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("extract.retry", "path", path, "attempt", n+1, "err", err)
		}),
	)
	return res, err
}

// Retryable reports whether another attempt could succeed.
func Retryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	switch {
	case errors.Is(err, common.ErrNoTextLayer),
		errors.Is(err, common.ErrUnsupportedFormat),
		errors.Is(err, common.ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
