package form

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Option configures a Form.
type Option func(*Form)

// AfterFunc schedules fn after d and returns a function that cancels it.
// It mirrors time.AfterFunc so tests can fire timers by hand.
type AfterFunc func(d time.Duration, fn func()) (stop func() bool)

// ResetPolicy selects what Reset restores besides the values.
type ResetPolicy struct {
	// Touched clears every touched flag.
	Touched bool
	// Revalidate starts a validation run for the restored values.
	Revalidate bool
}

// WithLogger sets the logger used for diagnostics. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithResetPolicy configures Reset. The default restores values only.
func WithResetPolicy(policy ResetPolicy) Option {
	return func(f *Form) {
		f.resetPolicy = policy
	}
}

// WithStrictFields rejects mutations of fields whose root segment is not a
// key of the initial values.
func WithStrictFields(enabled bool) Option {
	return func(f *Form) {
		f.strict = enabled
	}
}

// WithAfterFunc overrides the timer used to auto-hide submit statuses.
func WithAfterFunc(fn AfterFunc) Option {
	return func(f *Form) {
		if fn != nil {
			f.afterFunc = fn
		}
	}
}

// WithValidationContext sets the parent context of validation runs and submit
// handlers. Cancelling it cancels in-flight runs and any running handler.
func WithValidationContext(ctx context.Context) Option {
	return func(f *Form) {
		if ctx != nil {
			f.baseCtx = ctx
		}
	}
}

func defaultAfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}
