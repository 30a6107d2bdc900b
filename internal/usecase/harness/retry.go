package harness

// RetryPolicy bounds re-runs of a failing case. MaxRetries counts extra
// executions, so a case runs at most MaxRetries+1 times.
type RetryPolicy struct {
	Enabled    bool
	MaxRetries int
}

func (p RetryPolicy) effectiveMax() int {
	if !p.Enabled || p.MaxRetries < 0 {
		return 0
	}
	return p.MaxRetries
}

// RetryState counts attempts for one case invocation. It is never shared
// between cases.
type RetryState struct {
	max      int
	attempts int
}

func NewRetryState(p RetryPolicy) *RetryState {
	return &RetryState{max: p.effectiveMax()}
}

// Begin records the start of an attempt and returns its 1-based number.
func (r *RetryState) Begin() int {
	r.attempts++
	return r.attempts
}

func (r *RetryState) Attempts() int {
	return r.attempts
}

func (r *RetryState) Retries() int {
	if r.attempts == 0 {
		return 0
	}
	return r.attempts - 1
}

// ShouldRetry reports whether another attempt is allowed after a failure.
func (r *RetryState) ShouldRetry() bool {
	return r.attempts > 0 && r.Retries() < r.max
}

func (r *RetryState) Remaining() int {
	if r.attempts == 0 {
		return r.max
	}
	return r.max - r.Retries()
}
