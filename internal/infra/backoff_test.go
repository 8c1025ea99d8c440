package infra

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	initial := 1500 * time.Millisecond
	max := 30 * time.Second

	if got := CalculateBackoff(1, initial, max); got != initial {
		t.Errorf("Attempt 1: expected %v, got %v", initial, got)
	}

	// 1.5s * 1.6 = 2.4s
	if got := CalculateBackoff(2, initial, max); got != 2400*time.Millisecond {
		t.Errorf("Attempt 2: expected 2.4s, got %v", got)
	}

	// Growth is monotonic until the cap
	prev := time.Duration(0)
	for attempt := 1; attempt <= 20; attempt++ {
		got := CalculateBackoff(attempt, initial, max)
		if got < prev {
			t.Errorf("Attempt %d: backoff decreased from %v to %v", attempt, prev, got)
		}
		if got > max {
			t.Errorf("Attempt %d: backoff %v exceeded cap %v", attempt, got, max)
		}
		prev = got
	}

	if got := CalculateBackoff(20, initial, max); got != max {
		t.Errorf("Large attempt should hit the cap %v, got %v", max, got)
	}

	// Zero and negative attempts behave like the first
	if got := CalculateBackoff(0, initial, max); got != initial {
		t.Errorf("Attempt 0: expected %v, got %v", initial, got)
	}
}
