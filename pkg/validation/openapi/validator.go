package openapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// MessageExtension names the schema extension that overrides the message of
// every violation raised by that schema.
const MessageExtension = "x-formstate-message"

// Validator checks value bags against an OpenAPI schema.
type Validator struct {
	schema     *openapi3.Schema
	asRequest  bool
	patterns   bool
	formats    bool
	messageFor func(*openapi3.SchemaError) string
}

var _ validation.Validator = (*Validator)(nil)

// Option configures a Validator.
type Option func(*Validator)

// WithRequestSemantics rejects readOnly properties, as a request body would.
func WithRequestSemantics(enabled bool) Option {
	return func(v *Validator) {
		v.asRequest = enabled
	}
}

// WithPatternValidation toggles the pattern keyword. Enabled by default.
func WithPatternValidation(enabled bool) Option {
	return func(v *Validator) {
		v.patterns = enabled
	}
}

// WithFormatValidation enables checks for known string formats (email, date,
// ...). Disabled by default.
func WithFormatValidation(enabled bool) Option {
	return func(v *Validator) {
		v.formats = enabled
	}
}

// WithMessages replaces the default message derivation. Returning an empty
// string falls back to the default.
func WithMessages(fn func(*openapi3.SchemaError) string) Option {
	return func(v *Validator) {
		v.messageFor = fn
	}
}

// New builds a Validator for schema.
func New(schema *openapi3.Schema, options ...Option) (*Validator, error) {
	if schema == nil {
		return nil, ErrSchemaRequired
	}
	v := &Validator{schema: schema, patterns: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v, nil
}

// Schema returns the schema the validator checks against.
func (v *Validator) Schema() *openapi3.Schema {
	return v.schema
}

// Validate implements validation.Validator. Schema failures come back as
// validation.Violations keyed by dotted field path; anything else (a value that
// cannot be converted to JSON, a cancelled context) is returned as is.
func (v *Validator) Validate(ctx context.Context, values map[string]any, opts validation.Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := normalize(values)
	if err != nil {
		return err
	}

	visitOpts := []openapi3.SchemaValidationOption{}
	if opts.Exhaustive {
		visitOpts = append(visitOpts, openapi3.MultiErrors())
	}
	if v.asRequest {
		visitOpts = append(visitOpts, openapi3.VisitAsRequest())
	}
	if !v.patterns {
		visitOpts = append(visitOpts, openapi3.DisablePatternValidation())
	}
	if v.formats {
		visitOpts = append(visitOpts, openapi3.EnableFormatValidation())
	}

	err = v.schema.VisitJSON(doc, visitOpts...)
	if err == nil {
		return nil
	}
	violations := v.flatten(err, nil)
	if len(violations) == 0 {
		return err
	}
	return violations
}

func (v *Validator) flatten(err error, out validation.Violations) validation.Violations {
	switch typed := err.(type) {
	case openapi3.MultiError:
		for _, item := range typed {
			out = v.flatten(item, out)
		}
		return out
	case *openapi3.SchemaError:
		return append(out, v.violation(typed))
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return append(out, v.violation(schemaErr))
	}
	return append(out, validation.General(strings.TrimSpace(err.Error())))
}

func (v *Validator) violation(err *openapi3.SchemaError) validation.Violation {
	return validation.Violation{
		Path:    strings.Join(err.JSONPointer(), "."),
		Message: v.message(err),
		Code:    err.SchemaField,
	}
}

func (v *Validator) message(err *openapi3.SchemaError) string {
	if v.messageFor != nil {
		if msg := strings.TrimSpace(v.messageFor(err)); msg != "" {
			return msg
		}
	}
	if err.Schema != nil {
		if msg, ok := err.Schema.Extensions[MessageExtension].(string); ok && strings.TrimSpace(msg) != "" {
			return strings.TrimSpace(msg)
		}
	}
	if err.Reason != "" {
		return err.Reason
	}
	if err.Origin != nil {
		return err.Origin.Error()
	}
	return "value does not match schema"
}

// normalize converts arbitrary Go values into the plain JSON shapes the schema
// visitor understands.
func normalize(values map[string]any) (map[string]any, error) {
	if values == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("openapi validation: encode values: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("openapi validation: decode values: %w", err)
	}
	return out, nil
}
