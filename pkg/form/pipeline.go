package form

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// startValidationLocked tags a new run with the next generation and starts it
// on a private copy of the values. The previous run's context is cancelled;
// whatever it still delivers is dropped by the generation check in
// applyOutcome. Callers hold f.mu.
func (f *Form) startValidationLocked() {
	f.generation++
	generation := f.generation

	if f.cancelRun != nil {
		f.cancelRun()
	}
	ctx, cancel := context.WithCancel(f.baseCtx)
	f.cancelRun = cancel

	values := cloneValues(f.values)
	go func() {
		defer cancel()
		outcome := f.validate(ctx, values)
		f.applyOutcome(generation, outcome)
	}()
}

// validate never panics and never returns nil.
func (f *Form) validate(ctx context.Context, values Values) (outcome *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("form: validator panicked", zap.Any("panic", r))
			outcome = classifyFailure(panicError{value: r})
		}
	}()

	err := f.validator.Validate(ctx, values, validation.Options{Exhaustive: true})
	if err == nil {
		return validOutcome()
	}
	f.logger.Debug("form: validation failed", zap.Error(err))
	return classifyFailure(err)
}

// applyOutcome installs the outcome of run generation unless a newer run has
// started since. The pathless message of the outcome takes over the status
// slot.
func (f *Form) applyOutcome(generation uint64, outcome *Outcome) {
	f.mu.Lock()
	if f.closed || generation != f.generation {
		current := f.generation
		f.mu.Unlock()
		f.logger.Debug("form: dropping superseded validation",
			zap.Uint64("generation", generation),
			zap.Uint64("current", current),
		)
		return
	}
	f.outcome = outcome
	f.settled = generation
	f.status = outcome.Status.clone()
	f.commitLocked()
	f.mu.Unlock()

	f.notify()
}
