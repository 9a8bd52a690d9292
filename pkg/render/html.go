package render

import (
	"bytes"
	"context"
	"io"
)

// Renderer names.
const (
	NameHTML = "html"
	NameText = "text"
)

// TemplateRenderer renders a View through one entry template.
type TemplateRenderer struct {
	name        string
	contentType string
	entry       string
	engine      *engine
}

var _ Renderer = (*TemplateRenderer)(nil)

// NewHTMLRenderer renders the whole form as HTML using form.tpl.
func NewHTMLRenderer(options ...EngineOption) (*TemplateRenderer, error) {
	e, err := newEngine("formstate-html", options...)
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{
		name:        NameHTML,
		contentType: "text/html; charset=utf-8",
		entry:       "form.tpl",
		engine:      e,
	}, nil
}

// NewTextRenderer renders a plain text summary using summary.tpl.
func NewTextRenderer(options ...EngineOption) (*TemplateRenderer, error) {
	e, err := newEngine("formstate-text", options...)
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{
		name:        NameText,
		contentType: "text/plain; charset=utf-8",
		entry:       "summary.tpl",
		engine:      e,
	}, nil
}

// Name implements Renderer.
func (r *TemplateRenderer) Name() string { return r.name }

// ContentType implements Renderer.
func (r *TemplateRenderer) ContentType() string { return r.contentType }

// Render implements Renderer.
func (r *TemplateRenderer) Render(ctx context.Context, view View) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderTo(ctx, view, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderTo streams the rendered view to w.
func (r *TemplateRenderer) RenderTo(ctx context.Context, view View, w io.Writer) error {
	return r.partial(ctx, r.entry, "form", view, w)
}

// RenderStatus renders only the status banner. A nil status writes nothing.
func (r *TemplateRenderer) RenderStatus(ctx context.Context, status *StatusView, w io.Writer) error {
	if status == nil {
		return ctx.Err()
	}
	return r.partial(ctx, "status.tpl", "status", status, w)
}

// RenderField renders a single control.
func (r *TemplateRenderer) RenderField(ctx context.Context, field FieldView, w io.Writer) error {
	return r.partial(ctx, "field.tpl", "field", field, w)
}

func (r *TemplateRenderer) partial(ctx context.Context, name, key string, data any, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := toContext(map[string]any{key: data})
	if err != nil {
		return err
	}
	return r.engine.execute(name, value, w)
}
