package testsupport

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// PendingValidation is one call to ManualValidator waiting for its result.
type PendingValidation struct {
	Values  map[string]any
	Options validation.Options
	result  chan error
}

// Resolve settles the call with err (nil accepts the values).
func (p *PendingValidation) Resolve(err error) {
	p.result <- err
}

// ManualValidator hands every call to the test and blocks until the test
// resolves it. It ignores context cancellation, like a validator that has no
// way to abort.
type ManualValidator struct {
	calls   chan *PendingValidation
	counter atomic.Int64
}

// NewManualValidator builds a ManualValidator.
func NewManualValidator() *ManualValidator {
	return &ManualValidator{calls: make(chan *PendingValidation, 64)}
}

// Validate implements validation.Validator.
func (m *ManualValidator) Validate(_ context.Context, values map[string]any, opts validation.Options) error {
	m.counter.Add(1)
	pending := &PendingValidation{Values: values, Options: opts, result: make(chan error, 1)}
	m.calls <- pending
	return <-pending.result
}

// Calls reports how many times Validate was invoked.
func (m *ManualValidator) Calls() int {
	return int(m.counter.Load())
}

// Next returns the oldest unresolved call, failing the test after a timeout.
func (m *ManualValidator) Next(t testing.TB) *PendingValidation {
	t.Helper()
	select {
	case pending := <-m.calls:
		return pending
	case <-time.After(2 * time.Second):
		t.Fatalf("testsupport: no validation call arrived")
		return nil
	}
}

// ResolveAll settles every queued call with err and returns how many there
// were. It does not wait for new calls.
func (m *ManualValidator) ResolveAll(err error) int {
	n := 0
	for {
		select {
		case pending := <-m.calls:
			pending.Resolve(err)
			n++
		default:
			return n
		}
	}
}

// CountingValidator wraps a validator and counts calls.
type CountingValidator struct {
	Inner validation.Validator

	mu    sync.Mutex
	calls []map[string]any
}

// Validate implements validation.Validator.
func (c *CountingValidator) Validate(ctx context.Context, values map[string]any, opts validation.Options) error {
	c.mu.Lock()
	c.calls = append(c.calls, values)
	c.mu.Unlock()
	if c.Inner == nil {
		return nil
	}
	return c.Inner.Validate(ctx, values, opts)
}

// Calls reports how many times Validate was invoked.
func (c *CountingValidator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// LastValues returns the values of the latest call.
func (c *CountingValidator) LastValues() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return nil
	}
	return c.calls[len(c.calls)-1]
}
