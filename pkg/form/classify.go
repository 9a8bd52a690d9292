package form

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// classifyFailure turns a validator failure into an invalid Outcome.
// Structured violations are split into field errors and a general status;
// anything else becomes a single danger status.
func classifyFailure(err error) *Outcome {
	invalid := false
	out := &Outcome{Valid: &invalid}

	violations, ok := validation.AsViolations(err)
	if !ok || len(violations) == 0 {
		out.Status = dangerStatus(failureText(err))
		return out
	}

	if len(violations) == 1 && validation.FieldPath(violations[0].Path) == "" {
		out.Status = dangerStatus(violations[0].Message)
		return out
	}

	// later messages overwrite earlier ones, for a path and for the status
	errs := make(map[string]string, len(violations))
	var general string
	for _, violation := range violations {
		path := validation.FieldPath(violation.Path)
		if path == "" {
			if msg := strings.TrimSpace(violation.Message); msg != "" {
				general = msg
			}
			continue
		}
		errs[path] = violation.Message
	}
	if len(errs) > 0 {
		out.Errors = errs
	}
	if general != "" {
		out.Status = dangerStatus(general)
	}
	return out
}

func failureText(err error) string {
	if err == nil {
		return "validation failed"
	}
	if _, ok := validation.AsViolations(err); ok {
		return "validation failed"
	}
	return err.Error()
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprint(p.value)
}
