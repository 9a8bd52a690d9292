package form

import "time"

// Severity classifies a general status message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

// Status is a form-wide message such as "network error" or "saved". It shares
// one slot on the form between submit results and pathless validation
// messages.
type Status struct {
	Severity      Severity      `json:"severity,omitempty" msgpack:"severity,omitempty"`
	Message       string        `json:"message" msgpack:"message"`
	AutoHideAfter time.Duration `json:"autoHideAfter,omitempty" msgpack:"autoHideAfter,omitempty"`
}

func dangerStatus(message string) *Status {
	return &Status{Severity: SeverityDanger, Message: message}
}

func (s *Status) clone() *Status {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
