package engine

// DefaultMaxOps is the default maximum number of operations per circuit.
// It bounds the work a single job can queue behind it.
const DefaultMaxOps = 100_000

// WithMaxOps sets the maximum number of operations per circuit.
// Zero or negative disables the quota.
func WithMaxOps(maxOps int) EngineOption {
	return func(e *Engine) {
		e.maxOps = maxOps
	}
}

// checkQuota returns a QUOTA_EXCEEDED RuntimeError when ops exceeds the
// engine's limit.
func (e *Engine) checkQuota(runID string, ops int) error {
	if e.maxOps > 0 && ops > e.maxOps {
		return NewQuotaError(runID, ops, e.maxOps)
	}
	return nil
}
