// Package reliability classifies provider failures for the one-shot retry
// the HTTP providers perform before degrading.
package reliability

import "time"

// IsRetryableHTTPStatus reports whether a status is worth one more attempt.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// Backoff computes a deterministic capped backoff duration for an attempt.
func Backoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
