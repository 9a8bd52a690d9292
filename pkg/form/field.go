package form

import (
	"reflect"

	"go.uber.org/zap"
)

// ValidationState is the display state of a field.
type ValidationState string

const (
	ValidationStateNone    ValidationState = ""
	ValidationStateWarning ValidationState = "warning"
	ValidationStateError   ValidationState = "error"
	ValidationStateSuccess ValidationState = "success"
)

// ValidationStateFor gates errors on touch: an untouched field with an
// error only warns.
func ValidationStateFor(touched, hasError bool) ValidationState {
	if !touched {
		if hasError {
			return ValidationStateWarning
		}
		return ValidationStateNone
	}
	if hasError {
		return ValidationStateError
	}
	return ValidationStateSuccess
}

// EventTarget carries the already-extracted parts of a UI input element.
type EventTarget struct {
	Value   string
	Checked bool
}

// ChangeEvent is the minimal shape of a UI change event.
type ChangeEvent struct {
	Target EventTarget
}

// FieldView is the per-field handle handed to UI code. There is exactly one
// per field name per form; every accessor reads through to the form.
type FieldView struct {
	form *Form
	name string

	// guarded by form.mu
	snapshot        FieldSnapshot
	snapshotVersion uint64
	snapshotValid   bool
}

// FieldSnapshot is an immutable projection of one field.
type FieldSnapshot struct {
	Name             string          `json:"name" msgpack:"name"`
	Value            any             `json:"value" msgpack:"value"`
	Error            string          `json:"error,omitempty" msgpack:"error,omitempty"`
	Touched          bool            `json:"touched" msgpack:"touched"`
	State            ValidationState `json:"state,omitempty" msgpack:"state,omitempty"`
	FormIsSubmitting bool            `json:"formIsSubmitting" msgpack:"formIsSubmitting"`
}

// Field returns the view for name, creating it on first use. Repeated calls
// return the same pointer.
func (f *Form) Field(name string) *FieldView {
	f.mu.Lock()
	defer f.mu.Unlock()
	if view, ok := f.fields[name]; ok {
		return view
	}
	view := &FieldView{form: f, name: name}
	f.fields[name] = view
	return view
}

// Name returns the field name.
func (v *FieldView) Name() string {
	return v.name
}

// Value returns the current value of the field.
func (v *FieldView) Value() any {
	value, _ := v.form.Value(v.name)
	return value
}

// Error returns the current error message of the field, if any.
func (v *FieldView) Error() string {
	f := v.form
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome.Error(v.name)
}

// IsTouched reports whether the field has been touched.
func (v *FieldView) IsTouched() bool {
	return v.form.IsTouched(v.name)
}

// ValidationState derives the display state from touched and error.
func (v *FieldView) ValidationState() ValidationState {
	f := v.form
	f.mu.Lock()
	defer f.mu.Unlock()
	return ValidationStateFor(f.touched[v.name], f.outcome.HasError(v.name))
}

// FormIsSubmitting mirrors Form.IsSubmitting for field-level consumers.
func (v *FieldView) FormIsSubmitting() bool {
	return v.form.IsSubmitting()
}

// Snapshot returns every projection at once. The result is computed at most
// once per form version.
func (v *FieldView) Snapshot() FieldSnapshot {
	snap, _ := v.versionedSnapshot()
	return snap
}

func (v *FieldView) versionedSnapshot() (FieldSnapshot, uint64) {
	f := v.form
	f.mu.Lock()
	defer f.mu.Unlock()
	return v.snapshotLocked(), f.version
}

func (v *FieldView) snapshotLocked() FieldSnapshot {
	f := v.form
	if v.snapshotValid && v.snapshotVersion == f.version {
		return v.snapshot
	}
	value, _ := getPath(f.values, v.name)
	touched := f.touched[v.name]
	v.snapshot = FieldSnapshot{
		Name:             v.name,
		Value:            deepCopy(value),
		Error:            f.outcome.Error(v.name),
		Touched:          touched,
		State:            ValidationStateFor(touched, f.outcome.HasError(v.name)),
		FormIsSubmitting: f.submitting,
	}
	v.snapshotVersion = f.version
	v.snapshotValid = true
	return v.snapshot
}

// Subscribe calls fn with the new snapshot whenever this field's projection
// changes. Changes to other fields do not reach fn. Calls to fn never overlap
// and a stale snapshot is never delivered after a newer one.
func (v *FieldView) Subscribe(fn func(FieldSnapshot)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	changes := &ordered[FieldSnapshot]{
		equal:   FieldSnapshot.equal,
		deliver: fn,
	}
	f := v.form
	f.mu.Lock()
	changes.seed(f.version, v.snapshotLocked())
	id := f.addSubscriberLocked(func() {
		snap, version := v.versionedSnapshot()
		changes.push(version, snap)
	})
	f.mu.Unlock()
	return f.unsubscriber(id)
}

func (s FieldSnapshot) equal(other FieldSnapshot) bool {
	return s.Name == other.Name &&
		s.Error == other.Error &&
		s.Touched == other.Touched &&
		s.State == other.State &&
		s.FormIsSubmitting == other.FormIsSubmitting &&
		reflect.DeepEqual(s.Value, other.Value)
}

// HandleFocus marks the field as touched.
func (v *FieldView) HandleFocus() {
	v.report("focus", v.form.SetTouched(v.name, true))
}

// HandleBlur marks the field as touched.
func (v *FieldView) HandleBlur() {
	v.report("blur", v.form.SetTouched(v.name, true))
}

// HandleChangeEvent stores the target's text value.
func (v *FieldView) HandleChangeEvent(e ChangeEvent) {
	v.report("change", v.form.SetField(v.name, e.Target.Value))
}

// HandleCheckboxChange stores the target's checked flag.
func (v *FieldView) HandleCheckboxChange(e ChangeEvent) {
	v.report("checkbox", v.form.SetField(v.name, e.Target.Checked))
}

// HandleValueChange stores value as is.
func (v *FieldView) HandleValueChange(value any) {
	v.report("value", v.form.SetField(v.name, value))
}

// report logs handler errors; event handlers never fail towards the UI.
func (v *FieldView) report(event string, err error) {
	if err == nil {
		return
	}
	v.form.logger.Warn("form: field handler rejected",
		zap.String("field", v.name),
		zap.String("event", event),
		zap.Error(err),
	)
}
