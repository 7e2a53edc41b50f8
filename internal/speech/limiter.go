package speech

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ivlev/shapes2video/internal/shape"
)

// Limited throttles a Synthesizer and retries temporary failures.
type Limited struct {
	next    Synthesizer
	limiter *rate.Limiter
	retries int
	backoff time.Duration
}

// NewLimited allows rps requests per second (unlimited when <= 0) and up to
// retries extra attempts with linear backoff.
func NewLimited(next Synthesizer, rps float64, retries int, backoff time.Duration) *Limited {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Limited{next: next, limiter: rate.NewLimiter(limit, 1), retries: retries, backoff: backoff}
}

func (l *Limited) Synthesize(ctx context.Context, text string, accent shape.Accent) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= l.retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * l.backoff
			log.Debug().Err(lastErr).Int("attempt", attempt).Dur("wait", wait).Msg("[*] retrying speech request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		data, err := l.next.Synthesize(ctx, text, accent)
		if err == nil {
			return data, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, shape.ErrConfig) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	// transport errors
	return true
}
