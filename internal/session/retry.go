package session

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"net"
	"time"
)

// retryPolicy decides which failures are worth another attempt and how long
// to back off. Only throttling (429), server errors (5xx), and timeout-class
// network faults retry; 4xx responses never do.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

func newRetryPolicy(attempts int, base, cap time.Duration) *retryPolicy {
	if attempts <= 0 {
		attempts = 2
	}
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	if cap <= 0 {
		cap = 5 * time.Second
	}
	return &retryPolicy{maxAttempts: attempts, baseDelay: base, maxDelay: cap}
}

// RetryStatus reports whether the HTTP status code warrants another attempt.
func (p *retryPolicy) RetryStatus(code int, attempt int) bool {
	if attempt >= p.maxAttempts {
		return false
	}
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// RetryError reports whether a transport error warrants another attempt.
func (p *retryPolicy) RetryError(err error, attempt int) bool {
	if err == nil || attempt >= p.maxAttempts {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// Backoff returns the jittered exponential wait before the next attempt.
func (p *retryPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	jitter := randomJitter(time.Duration(delay) / 2)
	return time.Duration(delay/2) + jitter
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
