package domain

import "time"

// NextAttempt returns now + base * 2^(retryCount-1). retryCount below 1 is
// treated as 1.
func NextAttempt(now time.Time, retryCount int, base time.Duration) time.Time {
	if retryCount < 1 {
		retryCount = 1
	}
	return now.Add(base << (retryCount - 1))
}
