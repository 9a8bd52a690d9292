package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Violation is a single failed rule. An empty Path marks a form-level
// (pathless) violation.
type Violation struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// At builds a Violation for a field path.
func At(path, message string) Violation {
	return Violation{Path: path, Message: message}
}

// General builds a pathless Violation.
func General(message string) Violation {
	return Violation{Message: message}
}

// Violations is the structured failure returned by validators.
type Violations []Violation

// Error summarises the first few violations.
func (v Violations) Error() string {
	if len(v) == 0 {
		return "validation: no violations"
	}
	const maxShown = 3
	b := &strings.Builder{}
	limit := len(v)
	if limit > maxShown {
		limit = maxShown
	}
	for i := 0; i < limit; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		item := v[i]
		if item.Path == "" {
			b.WriteString(item.Message)
			continue
		}
		fmt.Fprintf(b, "%s: %s", item.Path, item.Message)
	}
	if len(v) > limit {
		fmt.Fprintf(b, "; ... (total %d)", len(v))
	}
	return b.String()
}

// Fields returns the violations that carry a field path.
func (v Violations) Fields() Violations {
	var out Violations
	for _, item := range v {
		if FieldPath(item.Path) != "" {
			out = append(out, item)
		}
	}
	return out
}

// AsViolations extracts Violations from err using errors.As.
func AsViolations(err error) (Violations, bool) {
	if err == nil {
		return nil, false
	}
	var violations Violations
	if errors.As(err, &violations) {
		return violations, true
	}
	var ptr *Violations
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return nil, false
}
