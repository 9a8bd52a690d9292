package formstate

import (
	"context"
	"io/fs"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/snapshot"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Form is the observable form-state object.
type Form = form.Form

// Config describes a form session: initial values, validator and submit
// handler.
type Config = form.Config

// Values is the value tree of a form.
type Values = form.Values

// Status is the general status shown above the fields.
type Status = form.Status

// SubmitHandler receives a copy of the values on submit.
type SubmitHandler = form.SubmitHandler

// Option configures a Form.
type Option = form.Option

// FieldView is the per-field reactive handle returned by Form.Field.
type FieldView = form.FieldView

// Validator is the schema validator contract.
type Validator = validation.Validator

// Definition is a form loaded from a YAML or JSON file.
type Definition = definition.Definition

// RenderOptions describes per-request rendering overrides.
type RenderOptions = render.RenderOptions

// New builds a Form and starts validating its initial values.
func New(cfg Config, options ...Option) (*Form, error) {
	return form.New(cfg, options...)
}

// WithLogger sets the logger used by the form.
func WithLogger(logger *zap.Logger) Option {
	return form.WithLogger(logger)
}

// WithStrictFields rejects field names missing from the initial values.
func WithStrictFields(enabled bool) Option {
	return form.WithStrictFields(enabled)
}

// WithResetPolicy controls what Reset clears besides the values.
func WithResetPolicy(policy form.ResetPolicy) Option {
	return form.WithResetPolicy(policy)
}

// LoadDefinition reads a definition file from disk.
func LoadDefinition(filename string) (Definition, error) {
	return definition.Load(filename)
}

// FromDefinition builds a Form from def: its schema validator, initial values
// and behaviour switches. A nil onSubmit accepts every submission and shows
// the definition's submit status. options are applied after the definition's
// own.
func FromDefinition(ctx context.Context, def Definition, onSubmit SubmitHandler, options ...Option) (*Form, error) {
	if onSubmit == nil {
		onSubmit = func(context.Context, Values) (*Status, error) {
			return def.SubmitStatus(), nil
		}
	}
	cfg, err := def.Config(ctx, onSubmit)
	if err != nil {
		return nil, err
	}
	return form.New(cfg, append(def.FormOptions(), options...)...)
}

// RenderHTML snapshots f and renders it with the built-in HTML templates. It
// is the simplest entry point for callers that just want markup; long-lived
// callers should keep a render.TemplateRenderer around instead.
func RenderHTML(ctx context.Context, f *Form, def Definition, opts RenderOptions) ([]byte, error) {
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		return nil, err
	}
	snap := snapshot.Take(f, snapshot.WithName(def.ID))
	return renderer.Render(ctx, render.BuildView(snap, def, opts))
}

// ResolveTheme resolves a go-theme selection into render class tokens, ready
// for RenderOptions.Theme.
func ResolveTheme(selector theme.ThemeSelector, name, variant string) (*render.Theme, error) {
	return render.ResolveTheme(selector, name, variant)
}

// EmbeddedTemplates exposes the built-in templates so callers can reuse or
// extend them without importing the render package directly.
func EmbeddedTemplates() fs.FS {
	return render.DefaultTemplates()
}
