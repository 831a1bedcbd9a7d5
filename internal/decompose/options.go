package decompose

import (
	"fmt"
	"log/slog"
)

// FailurePolicy decides what happens to operations that cannot be converted:
// opaque gates and unitaries on more than two qubits.
type FailurePolicy int

const (
	// Fail returns an *UnsupportedOperationError.
	Fail FailurePolicy = iota
	// PassThrough returns the operation unchanged.
	PassThrough
)

func (p FailurePolicy) String() string {
	switch p {
	case Fail:
		return "fail"
	case PassThrough:
		return "pass-through"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy is the inverse of FailurePolicy.String. "pass_through"
// and "ignore" are accepted as aliases of PassThrough.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "fail", "":
		return Fail, nil
	case "pass-through", "pass_through", "ignore":
		return PassThrough, nil
	default:
		return Fail, fmt.Errorf("unknown failure policy %q", s)
	}
}

const (
	// DefaultTolerance is the synthesis tolerance.
	DefaultTolerance = 1e-8

	// DefaultVerifyTolerance is the tolerance used by WithVerification(0).
	DefaultVerifyTolerance = 1e-7
)

// Option configures a Converter.
type Option func(*Converter)

// WithFailurePolicy sets the failure policy. Default is Fail.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(c *Converter) {
		c.policy = p
	}
}

// WithTolerance sets the synthesis tolerance. Non-positive values keep the
// default.
func WithTolerance(atol float64) Option {
	return func(c *Converter) {
		if atol > 0 {
			c.atol = atol
		}
	}
}

// WithUnitarityTolerance sets how far a custom matrix may drift from
// unitarity before the operation is treated as having no unitary. Accepted
// matrices are replaced by their nearest unitary before synthesis. Non-positive
// values keep gates.DefaultUnitarityTolerance.
func WithUnitarityTolerance(tol float64) Option {
	return func(c *Converter) {
		if tol > 0 {
			c.unitarityTol = tol
		}
	}
}

// WithVerification multiplies out every synthesized sequence and compares
// it with the source unitary. A non-positive atol selects
// DefaultVerifyTolerance.
func WithVerification(atol float64) Option {
	return func(c *Converter) {
		if atol <= 0 {
			atol = DefaultVerifyTolerance
		}
		c.verifyTol = atol
	}
}

// WithLogger sets the logger. By default a Converter logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}
