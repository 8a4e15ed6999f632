package test

import (
	"context"
	"sync/atomic"
)

// HealthCheckerStub reports a configurable readiness result.
type HealthCheckerStub struct {
	Err   error
	calls atomic.Int32
}

// HealthCheck returns the configured error.
func (s *HealthCheckerStub) HealthCheck(ctx context.Context) error {
	s.calls.Add(1)
	return s.Err
}

// Calls returns how many checks were performed.
func (s *HealthCheckerStub) Calls() int {
	return int(s.calls.Load())
}
