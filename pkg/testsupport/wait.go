package testsupport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-formstate/pkg/form"
)

// DefaultTimeout bounds every wait helper.
const DefaultTimeout = 2 * time.Second

// WaitIdle waits until the form has no pending validation or submit handler.
func WaitIdle(t testing.TB, f *form.Form) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	if err := f.Wait(ctx); err != nil {
		t.Fatalf("testsupport: form did not settle: %v", err)
	}
}

// WaitFor waits until cond holds for the form state.
func WaitFor(t testing.TB, f *form.Form, cond func(form.State) bool) form.State {
	t.Helper()
	deadline := time.After(DefaultTimeout)
	for {
		changed := f.Changed()
		state := f.State()
		if cond(state) {
			return state
		}
		select {
		case <-changed:
		case <-deadline:
			t.Fatalf("testsupport: condition not met, last state: %+v", state)
			return state
		}
	}
}

// ManualTimers is a form.AfterFunc that only fires when told to.
type ManualTimers struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

// AfterFunc implements form.AfterFunc.
func (m *ManualTimers) AfterFunc(d time.Duration, fn func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	timer := &manualTimer{delay: d, fn: fn}
	m.pending = append(m.pending, timer)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if timer.stopped {
			return false
		}
		timer.stopped = true
		return true
	}
}

// Delays lists the delays of timers that have not fired or been stopped.
func (m *ManualTimers) Delays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Duration
	for _, timer := range m.pending {
		if !timer.stopped {
			out = append(out, timer.delay)
		}
	}
	return out
}

// FireAll runs every live timer.
func (m *ManualTimers) FireAll() {
	m.mu.Lock()
	var live []func()
	for _, timer := range m.pending {
		if !timer.stopped {
			timer.stopped = true
			live = append(live, timer.fn)
		}
	}
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range live {
		fn()
	}
}
