package render

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Component wraps a renderer so a view can be embedded in a templ page.
func Component(r Renderer, view View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if streaming, ok := r.(*TemplateRenderer); ok {
			return streaming.RenderTo(ctx, view, w)
		}
		out, err := r.Render(ctx, view)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	})
}

// StatusComponent renders only the status banner of view.
func StatusComponent(r *TemplateRenderer, view View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return r.RenderStatus(ctx, view.Status, w)
	})
}

// FieldComponent renders the named field of view, or nothing when the view
// has no such field.
func FieldComponent(r *TemplateRenderer, view View, name string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, field := range view.Fields {
			if field.Name == name {
				return r.RenderField(ctx, field, w)
			}
		}
		return nil
	})
}

// StatusBadge is a minimal, template-free badge for the status severity.
func StatusBadge(status *StatusView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if status == nil {
			return nil
		}
		_, err := io.WriteString(w, `<span class="`+templ.EscapeString(status.Class)+`">`+
			templ.EscapeString(status.Severity)+`</span>`)
		return err
	})
}
