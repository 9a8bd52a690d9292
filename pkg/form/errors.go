package form

import "errors"

var (
	// ErrValidatorRequired is returned by New when Config.Validator is nil.
	ErrValidatorRequired = errors.New("form: validator is required")
	// ErrSubmitHandlerRequired is returned by New when Config.OnSubmit is nil.
	ErrSubmitHandlerRequired = errors.New("form: submit handler is required")
	// ErrSubmitInProgress reports a submit attempt while another is running.
	// The attempt is dropped without changing state.
	ErrSubmitInProgress = errors.New("form: submit already in progress")
	// ErrUnknownField is returned in strict mode for fields that are not part
	// of the initial values.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrEmptyFieldName is returned when a mutation names no field.
	ErrEmptyFieldName = errors.New("form: field name is empty")
	// ErrClosed is returned by mutations after Close.
	ErrClosed = errors.New("form: closed")
)
