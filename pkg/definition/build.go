package definition

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/visibility"
	"github.com/goliatone/go-formstate/pkg/validation/openapi"
)

// ErrNoFileSystem is returned when an operation document has to be read from
// a definition that was parsed from memory.
var ErrNoFileSystem = errors.New("definition: no filesystem to resolve the operation document")

// WithFS returns a copy of d that resolves operation documents in fsys.
func (d Definition) WithFS(fsys fs.FS) Definition {
	d.fsys = fsys
	return d
}

// LoadSchema resolves the inline schema or the operation's request body.
func (d Definition) LoadSchema(ctx context.Context) (*openapi3.Schema, error) {
	if d.Operation == nil {
		schema, err := openapi.SchemaFromValue(ctx, d.Schema)
		if err != nil {
			return nil, fmt.Errorf("definition: %q schema: %w", d.ID, err)
		}
		return schema, nil
	}

	if d.fsys == nil {
		return nil, ErrNoFileSystem
	}
	name := path.Clean(path.Join(path.Dir(filepath.ToSlash(d.Source)), d.Operation.Document))
	raw, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("definition: %q read document %s: %w", d.ID, name, err)
	}
	schema, err := openapi.SchemaFromDocument(ctx, raw, d.Operation.OperationID)
	if err != nil {
		return nil, fmt.Errorf("definition: %q: %w", d.ID, err)
	}
	return schema, nil
}

// Config assembles a form.Config: the schema validator plus the initial values
// (schema defaults overlaid with the definition's own values).
func (d Definition) Config(ctx context.Context, onSubmit form.SubmitHandler, options ...openapi.Option) (form.Config, error) {
	schema, err := d.LoadSchema(ctx)
	if err != nil {
		return form.Config{}, err
	}
	validator, err := openapi.New(schema, options...)
	if err != nil {
		return form.Config{}, fmt.Errorf("definition: %q: %w", d.ID, err)
	}
	return form.Config{
		InitialValues: d.Values(schema),
		Validator:     validator,
		OnSubmit:      onSubmit,
	}, nil
}

// Values merges the schema defaults with InitialValues; explicit values win.
func (d Definition) Values(schema *openapi3.Schema) map[string]any {
	return mergeValues(openapi.InitialValues(schema), d.InitialValues)
}

// FormOptions translates the definition's behaviour switches.
func (d Definition) FormOptions() []form.Option {
	return []form.Option{
		form.WithStrictFields(d.StrictFields),
		form.WithResetPolicy(form.ResetPolicy{
			Touched:    d.Reset.Touched,
			Revalidate: d.Reset.Revalidate,
		}),
	}
}

// SubmitStatus is the status to show after a successful submit, or nil when
// the definition sets no message.
func (d Definition) SubmitStatus() *form.Status {
	if d.Submit.Message == "" {
		return nil
	}
	return &form.Status{
		Severity:      d.Submit.Severity,
		Message:       d.Submit.Message,
		AutoHideAfter: d.Submit.AutoHide,
	}
}

// Field returns the presentation hints for name.
func (d Definition) Field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldOrder lists the declared fields first, then any remaining top-level
// values in lexical order.
func (d Definition) FieldOrder(values map[string]any) []string {
	order := make([]string, 0, len(d.Fields)+len(values))
	seen := make(map[string]struct{}, len(d.Fields))
	for _, field := range d.Fields {
		order = append(order, field.Name)
		seen[field.Name] = struct{}{}
	}
	rest := make([]string, 0, len(values))
	for key := range values {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func mergeValues(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		nested, ok := value.(map[string]any)
		existing, baseOK := out[key].(map[string]any)
		if ok && baseOK {
			out[key] = mergeValues(existing, nested)
			continue
		}
		out[key] = value
	}
	return out
}

// Visible reports whether name is shown for values. Fields without a
// visibleWhen rule are always visible.
func (d Definition) Visible(name string, values map[string]any) bool {
	return d.rules[name].Visible(values)
}

// VisibilityRule returns the compiled rule of name, or nil.
func (d Definition) VisibilityRule(name string) *visibility.Rule {
	return d.rules[name]
}
