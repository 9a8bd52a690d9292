package form

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// SubmitHandler receives a plain copy of the values. A returned error is shown
// as a danger status; a returned Status is shown as is.
type SubmitHandler func(ctx context.Context, values Values) (*Status, error)

// Config describes a form session.
type Config struct {
	InitialValues Values
	Validator     validation.Validator
	OnSubmit      SubmitHandler
}

// Form holds the state of one form session: values, touched flags, the
// submission flag, the general status and the latest validation outcome.
//
// All state lives behind a single mutex; every mutation commits atomically
// and bumps the version. Validation and submit handlers run in their own
// goroutines and re-enter through locked apply steps.
type Form struct {
	mu sync.Mutex

	initial   Values
	values    Values
	touched   map[string]bool
	status    *Status
	outcome   *Outcome
	validator validation.Validator
	onSubmit  SubmitHandler

	submitting     bool
	handlerRunning bool
	stopHide       func() bool

	generation uint64
	settled    uint64
	cancelRun  context.CancelFunc

	version uint64
	changed chan struct{}

	subscribers []subscriber
	nextSubID   uint64

	fields map[string]*FieldView

	closed      bool
	baseCtx     context.Context
	baseCancel  context.CancelFunc
	logger      *zap.Logger
	resetPolicy ResetPolicy
	strict      bool
	afterFunc   AfterFunc
}

// New builds a Form and starts validating the initial values right away.
func New(cfg Config, options ...Option) (*Form, error) {
	if cfg.Validator == nil {
		return nil, ErrValidatorRequired
	}
	if cfg.OnSubmit == nil {
		return nil, ErrSubmitHandlerRequired
	}

	f := &Form{
		initial:   cloneValues(cfg.InitialValues),
		touched:   make(map[string]bool),
		outcome:   pendingOutcome,
		validator: cfg.Validator,
		onSubmit:  cfg.OnSubmit,
		changed:   make(chan struct{}),
		fields:    make(map[string]*FieldView),
		baseCtx:   context.Background(),
		logger:    zap.NewNop(),
		afterFunc: defaultAfterFunc,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	f.baseCtx, f.baseCancel = context.WithCancel(f.baseCtx)
	f.values = cloneValues(f.initial)

	f.mu.Lock()
	f.startValidationLocked()
	f.mu.Unlock()
	return f, nil
}

// SetField clears the field's error, stores the value and starts a validation
// run. Validation failures never surface here; the returned error only
// reports misuse (empty, unknown or unwritable field, closed form), in which
// case the form is left unchanged.
func (f *Form) SetField(name string, value any) error {
	if err := f.setField(name, value); err != nil {
		return err
	}
	f.notify()
	return nil
}

func (f *Form) setField(name string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkFieldLocked(name); err != nil {
		return err
	}
	if err := setPath(f.values, name, value); err != nil {
		return fmt.Errorf("form: set %q: %w", name, err)
	}
	f.outcome = f.outcome.withoutError(name)
	f.startValidationLocked()
	f.commitLocked()
	return nil
}

// SetTouched updates the touched flag of name. Repeating the current value is
// a no-op. Becoming touched clears the field's error and revalidates.
func (f *Form) SetTouched(name string, touched bool) error {
	f.mu.Lock()
	if err := f.checkFieldLocked(name); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.touched[name] == touched {
		f.mu.Unlock()
		return nil
	}
	f.touched[name] = touched
	if touched {
		f.outcome = f.outcome.withoutError(name)
		f.startValidationLocked()
	}
	f.commitLocked()
	f.mu.Unlock()

	f.notify()
	return nil
}

// Touch marks name as touched.
func (f *Form) Touch(name string) error {
	return f.SetTouched(name, true)
}

// Reset restores the initial values. Touched flags and the current outcome
// are kept unless the reset policy says otherwise.
func (f *Form) Reset() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.values = cloneValues(f.initial)
	if f.resetPolicy.Touched {
		f.touched = make(map[string]bool)
	}
	if f.resetPolicy.Revalidate {
		f.startValidationLocked()
	}
	f.commitLocked()
	f.mu.Unlock()

	f.notify()
}

// Close cancels the in-flight validation run and any pending auto-hide timer.
// Results arriving afterwards are dropped and mutations return ErrClosed.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	if f.stopHide != nil {
		f.stopHide()
		f.stopHide = nil
		f.submitting = false
	}
	f.baseCancel()
	f.commitLocked()
	f.mu.Unlock()

	f.notify()
}

// Values returns a copy of the current values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneValues(f.values)
}

// Value returns the value stored at name.
func (f *Form) Value(name string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := getPath(f.values, name)
	return deepCopy(value), ok
}

// Touched returns a copy of the touched flags.
func (f *Form) Touched() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneTouched(f.touched)
}

// IsTouched reports the touched flag of name.
func (f *Form) IsTouched(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched[name]
}

// Status returns a copy of the general status, or nil.
func (f *Form) Status() *Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status.clone()
}

// Outcome returns the current validation outcome. Callers must not modify it.
func (f *Form) Outcome() *Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

// Errors returns a copy of the field error map, or nil when there is none.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneErrors(f.outcome.Errors)
}

// Validity reports the tri-state validity of the latest outcome.
func (f *Form) Validity() Validity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome.Validity()
}

// IsValid reports whether the latest outcome accepted the values.
func (f *Form) IsValid() bool {
	return f.Validity() == ValidityValid
}

// IsValidating reports whether the run for the current values is pending.
func (f *Form) IsValidating() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled != f.generation
}

// IsSubmitting reports whether a submission is in progress, including the
// auto-hide delay of its status.
func (f *Form) IsSubmitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// IsDirty reports whether any field differs from its initial value.
func (f *Form) IsDirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !valuesEqual(f.values, f.initial)
}

// Version increments on every committed change.
func (f *Form) Version() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version
}

// State is a plain, consistent copy of the whole form.
type State struct {
	Values     Values            `json:"values" msgpack:"values"`
	Touched    map[string]bool   `json:"touched,omitempty" msgpack:"touched,omitempty"`
	Errors     map[string]string `json:"errors,omitempty" msgpack:"errors,omitempty"`
	Status     *Status           `json:"status,omitempty" msgpack:"status,omitempty"`
	Validity   Validity          `json:"validity" msgpack:"validity"`
	Validating bool              `json:"validating" msgpack:"validating"`
	Submitting bool              `json:"submitting" msgpack:"submitting"`
	Dirty      bool              `json:"dirty" msgpack:"dirty"`
	Version    uint64            `json:"version" msgpack:"version"`
}

// State captures every observable part of the form under one lock.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Values:     cloneValues(f.values),
		Touched:    cloneTouched(f.touched),
		Errors:     cloneErrors(f.outcome.Errors),
		Status:     f.status.clone(),
		Validity:   f.outcome.Validity(),
		Validating: f.settled != f.generation,
		Submitting: f.submitting,
		Dirty:      !valuesEqual(f.values, f.initial),
		Version:    f.version,
	}
}

func (f *Form) checkFieldLocked(name string) error {
	if f.closed {
		return ErrClosed
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyFieldName
	}
	if f.strict {
		if _, ok := f.initial[name]; ok {
			return nil
		}
		if _, ok := f.initial[rootSegment(name)]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	return nil
}

// commitLocked publishes a change: bumps the version and wakes everyone
// blocked on Changed.
func (f *Form) commitLocked() {
	f.version++
	close(f.changed)
	f.changed = make(chan struct{})
}
