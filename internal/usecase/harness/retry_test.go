package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRetryState_Disabled(t *testing.T) {
	r := NewRetryState(RetryPolicy{Enabled: false, MaxRetries: 5})
	assert.Equal(t, 1, r.Begin())
	assert.False(t, r.ShouldRetry())
	assert.Zero(t, r.Remaining())
}

func TestRetryState_NegativeMaxMeansNoRetry(t *testing.T) {
	r := NewRetryState(RetryPolicy{Enabled: true, MaxRetries: -1})
	r.Begin()
	assert.False(t, r.ShouldRetry())
}

func TestRetryState_BeforeFirstAttempt(t *testing.T) {
	r := NewRetryState(RetryPolicy{Enabled: true, MaxRetries: 2})
	assert.False(t, r.ShouldRetry())
	assert.Equal(t, 2, r.Remaining())
	assert.Zero(t, r.Retries())
}

func TestRetryState_BoundedAndMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		policy := RetryPolicy{
			Enabled:    rapid.Bool().Draw(t, "enabled"),
			MaxRetries: rapid.IntRange(0, 10).Draw(t, "max"),
		}
		r := NewRetryState(policy)

		executions, last := 0, 0
		for {
			attempt := r.Begin()
			executions++
			if attempt != last+1 {
				t.Fatalf("attempt jumped from %d to %d", last, attempt)
			}
			last = attempt
			if !r.ShouldRetry() {
				break
			}
			if executions > 100 {
				t.Fatalf("retry never stopped")
			}
		}

		want := 1
		if policy.Enabled {
			want += policy.MaxRetries
		}
		if executions != want {
			t.Fatalf("ran %d times, want %d", executions, want)
		}
		if r.Retries() != want-1 || r.Remaining() != 0 {
			t.Fatalf("retries=%d remaining=%d", r.Retries(), r.Remaining())
		}
	})
}
