package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C) or declined
	// to submit.
	ErrAborted = errors.New("tui: aborted")
	// ErrFormRequired is returned when a session is built without a form.
	ErrFormRequired = errors.New("tui: form is required")
	// ErrTooManyAttempts is returned when a field keeps failing validation.
	ErrTooManyAttempts = errors.New("tui: too many invalid attempts")
	// ErrInvalid is returned when the form stays invalid for reasons no
	// field prompt can fix.
	ErrInvalid = errors.New("tui: form is invalid")
	// ErrInvalidChoice is returned when a select prompt yields no option.
	ErrInvalidChoice = errors.New("tui: invalid choice")
	// ErrSubmitFailed is returned when the submit ends with a danger status.
	ErrSubmitFailed = errors.New("tui: submit failed")
)
