package infra

import "time"

// backoffGrowth is the multiplier applied after each failed reconnect.
const backoffGrowth = 1.6

// CalculateBackoff returns the delay before reconnect attempt number
// `attempt` (1-based): initial * 1.6^(attempt-1), capped at max.
// A successful subscribe resets the caller's attempt counter to zero.
func CalculateBackoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt <= 1 {
		return initial
	}
	delay := float64(initial)
	for i := 1; i < attempt; i++ {
		delay *= backoffGrowth
		if time.Duration(delay) >= max {
			return max
		}
	}
	return time.Duration(delay)
}
