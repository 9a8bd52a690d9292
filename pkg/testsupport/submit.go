package testsupport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-formstate/pkg/form"
)

type submitResult struct {
	status *form.Status
	err    error
}

// SubmitRecorder is a submit handler that records its calls and blocks until
// the test releases it.
type SubmitRecorder struct {
	mu      sync.Mutex
	calls   []form.Values
	started chan form.Values
	release chan submitResult
}

// NewSubmitRecorder builds a SubmitRecorder.
func NewSubmitRecorder() *SubmitRecorder {
	return &SubmitRecorder{
		started: make(chan form.Values, 16),
		release: make(chan submitResult, 16),
	}
}

// Handle is the form.SubmitHandler.
func (s *SubmitRecorder) Handle(ctx context.Context, values form.Values) (*form.Status, error) {
	s.mu.Lock()
	s.calls = append(s.calls, values)
	s.mu.Unlock()
	s.started <- values

	select {
	case res := <-s.release:
		return res.status, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Started waits for the handler to be invoked and returns the values it got.
func (s *SubmitRecorder) Started(t testing.TB) form.Values {
	t.Helper()
	select {
	case values := <-s.started:
		return values
	case <-time.After(2 * time.Second):
		t.Fatalf("testsupport: submit handler was not called")
		return nil
	}
}

// Release lets the running handler return status and err.
func (s *SubmitRecorder) Release(status *form.Status, err error) {
	s.release <- submitResult{status: status, err: err}
}

// Calls reports how many times the handler ran.
func (s *SubmitRecorder) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// NoopSubmit accepts every submission without a status.
func NoopSubmit(context.Context, form.Values) (*form.Status, error) {
	return nil, nil
}
