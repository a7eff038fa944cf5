// Package retry runs fallible operations under a bounded exponential backoff.
//
// A Policy is an immutable value and knows nothing about the operation it
// protects; a Retrier pairs a policy with the sleeping and randomness sources
// so both can be swapped in tests.
package retry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Policy encapsulates retry/backoff settings for transient failures.
type Policy struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`
	Multiplier float64       `json:"multiplier" yaml:"multiplier" mapstructure:"multiplier"`
	Jitter     bool          `json:"jitter" yaml:"jitter" mapstructure:"jitter"`
}

// DefaultPolicy returns 3 retries, 1s base delay doubling up to 30s, with jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2,
		Jitter:     true,
	}
}

// NoRetry returns a policy that runs the operation exactly once.
func NoRetry() Policy {
	return Policy{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

// Normalize fills zero or invalid fields from DefaultPolicy and clamps BaseDelay to MaxDelay.
func (p Policy) Normalize() Policy {
	d := DefaultPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = d.Multiplier
	}
	if p.BaseDelay > p.MaxDelay {
		p.BaseDelay = p.MaxDelay
	}
	return p
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	var errs []error
	if p.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max retries cannot be negative (got %d)", p.MaxRetries))
	}
	if p.BaseDelay <= 0 {
		errs = append(errs, errors.New("base delay must be > 0"))
	}
	if p.MaxDelay <= 0 {
		errs = append(errs, errors.New("max delay must be > 0"))
	}
	if p.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("multiplier must be >= 1 (got %g)", p.Multiplier))
	}
	return errors.Join(errs...)
}

// Backoff returns the un-jittered delay before retry number attempt (0-based):
// min(BaseDelay * Multiplier^attempt, MaxDelay).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt))
	if d >= float64(p.MaxDelay) || math.IsInf(d, 1) || math.IsNaN(d) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Delay applies jitter to Backoff. r must be in [0, 1); the resulting scale
// factor is in [0.5, 1.0]. Without jitter r is ignored.
func (p Policy) Delay(attempt int, r float64) time.Duration {
	d := p.Backoff(attempt)
	if !p.Jitter {
		return d
	}
	return time.Duration(float64(d) * (0.5 + 0.5*r))
}

// Attempts is the total number of calls a policy allows.
func (p Policy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}
