package usecase

import "time"

// Backoff returns the delay to wait after a failed generation attempt.
// Attempts are 1-based; the schedule is exponential from the base:
// base, 2*base, 4*base, ...
//
// Kept as a pure function so the retry policy is testable without sleeping.
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}
