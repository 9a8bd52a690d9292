package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/a-h/templ"
	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/snapshot"
)

const signupDefinition = `
id: signup
title: Signup
schema:
  type: object
fields:
  - name: name
    label: Name
    help: "  As printed on your card  "
  - name: age
    label: Age
    kind: number
  - name: plan
    label: Plan
    kind: select
    options: [free, pro]
    visibleWhen: newsletter
`

func mustDefinition(t *testing.T) definition.Definition {
	t.Helper()
	def, err := definition.Parse([]byte(signupDefinition), "signup.yaml")
	if err != nil {
		t.Fatalf("parse definition: %v", err)
	}
	return def
}

func sampleSnapshot() snapshot.Snapshot {
	valid := form.ValidityInvalid
	return snapshot.Snapshot{
		State: form.State{
			Values:   form.Values{"name": "Ada", "age": 17, "plan": "pro", "newsletter": true},
			Touched:  map[string]bool{"age": true},
			Errors:   map[string]string{"age": "number must be at least 18", "name": "<b>too</b> short"},
			Status:   &form.Status{Severity: form.SeverityDanger, Message: "Server said <script>x()</script>no"},
			Validity: valid,
			Dirty:    true,
			Version:  7,
		},
	}
}

func TestSanitizeMessage(t *testing.T) {
	cases := map[string]string{
		"":                                  "",
		"plain":                             "plain",
		"<script>alert(1)</script>Saved":    "Saved",
		"Saved <strong>ok</strong>":         "Saved <strong>ok</strong>",
		`<img src=x onerror="boom()">oops`:  "oops",
		"a < b":                             "a &lt; b",
	}
	for input, want := range cases {
		if got := render.SanitizeMessage(input); got != want {
			t.Errorf("SanitizeMessage(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBuildView(t *testing.T) {
	view := render.BuildView(sampleSnapshot(), mustDefinition(t), render.RenderOptions{
		Action:         "/signup",
		Hidden:         []render.HiddenField{render.CSRFToken("_csrf", "abc"), {Name: ""}},
		IncludeVersion: true,
	})

	if view.Method != "POST" || view.Action != "/signup" || view.Validity != "invalid" {
		t.Fatalf("unexpected header: %+v", view)
	}
	wantStatus := &render.StatusView{
		Severity: "danger",
		HTML:     "Server said no",
		Text:     "Server said <script>x()</script>no",
		Class:    "formstate-status formstate-status--danger",
	}
	if diff := cmp.Diff(wantStatus, view.Status); diff != "" {
		t.Fatalf("status mismatch (-want +got):\n%s", diff)
	}
	wantHidden := []render.HiddenField{{Name: "_csrf", Value: "abc"}, {Name: "_version", Value: "7"}}
	if diff := cmp.Diff(wantHidden, view.Hidden); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, field := range view.Fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"name", "age", "plan", "newsletter"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	name, age, newsletter := view.Fields[0], view.Fields[1], view.Fields[3]
	if name.State != "warning" || name.ErrorHTML != "<b>too</b> short" || name.Class != "formstate-field formstate-field--warning" {
		t.Fatalf("unexpected name field: %+v", name)
	}
	if age.State != "error" || age.Value != "17" || age.InputType != "number" {
		t.Fatalf("unexpected age field: %+v", age)
	}
	if newsletter.Kind != definition.KindCheckbox || !newsletter.Checked || newsletter.Label != "newsletter" {
		t.Fatalf("unexpected newsletter field: %+v", newsletter)
	}
}

func TestHTMLRenderer(t *testing.T) {
	r, err := render.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	view := render.BuildView(sampleSnapshot(), mustDefinition(t), render.RenderOptions{IncludeVersion: true})

	out, err := r.Render(context.Background(), view)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	for _, fragment := range []string{
		`<form id="signup" class="formstate" method="POST"`,
		`data-version="7"`,
		`role="alert" data-severity="danger">Server said no</div>`,
		`<input type="hidden" name="_version" value="7">`,
		`data-field="age" data-state="error"`,
		`aria-invalid="true"`,
		`<p class="formstate-hint formstate-hint--error">number must be at least 18</p>`,
		`<small>As printed on your card</small>`,
		`<option value="pro" selected>pro</option>`,
		`<input type="checkbox" id="field-newsletter" name="newsletter" checked>`,
	} {
		if !strings.Contains(html, fragment) {
			t.Errorf("expected %s in output:\n%s", fragment, html)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("unsanitised markup leaked:\n%s", html)
	}
}

func TestHTMLRenderer_DisablesControlsWhileSubmitting(t *testing.T) {
	r, err := render.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	snap := sampleSnapshot()
	snap.State.Submitting = true
	snap.State.Status = nil

	out, err := r.Render(context.Background(), render.BuildView(snap, mustDefinition(t), render.RenderOptions{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `aria-busy="true"`) || !strings.Contains(html, `<button type="submit" disabled>`) {
		t.Fatalf("expected busy form:\n%s", html)
	}
	if strings.Contains(html, "data-severity") {
		t.Fatalf("expected no status banner:\n%s", html)
	}
}

func TestRenderers_HiddenFields(t *testing.T) {
	snap := sampleSnapshot()
	snap.State.Values["newsletter"] = false
	view := render.BuildView(snap, mustDefinition(t), render.RenderOptions{})
	if !view.Fields[2].Hidden || view.Fields[0].Hidden {
		t.Fatalf("expected only plan to be hidden: %+v", view.Fields)
	}

	html, err := render.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("html renderer: %v", err)
	}
	out, err := html.Render(context.Background(), view)
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if !strings.Contains(string(out), `data-field="plan" hidden>`) {
		t.Fatalf("expected hidden plan field:\n%s", out)
	}

	text, err := render.NewTextRenderer()
	if err != nil {
		t.Fatalf("text renderer: %v", err)
	}
	out, err = text.Render(context.Background(), view)
	if err != nil {
		t.Fatalf("render text: %v", err)
	}
	if strings.Contains(string(out), "- Plan") || !strings.Contains(string(out), "- Name: Ada") {
		t.Fatalf("summary must skip hidden fields:\n%s", out)
	}
}

func TestTextRenderer(t *testing.T) {
	r, err := render.NewTextRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), render.BuildView(sampleSnapshot(), mustDefinition(t), render.RenderOptions{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	for _, line := range []string{
		"Signup",
		"validity: invalid",
		"[danger] Server said <script>x()</script>no",
		"- Age: 17 (error: number must be at least 18)",
		"- Name: Ada (warning: <b>too</b> short)",
	} {
		if !strings.Contains(text, line) {
			t.Errorf("expected %q in output:\n%s", line, text)
		}
	}
}

func TestCustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"summary.tpl": {Data: []byte(`{{ form.id }} v{{ form.version }} {{ form.title|shout }}`)},
	}
	if err := render.RegisterFilter("shout", func(input any, _ any) (any, error) {
		s, _ := input.(string)
		return strings.ToUpper(s), nil
	}); err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := render.RegisterFilter("shout", func(input any, _ any) (any, error) { return input, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}

	r, err := render.NewTextRenderer(render.WithTemplates(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), render.BuildView(sampleSnapshot(), mustDefinition(t), render.RenderOptions{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff("signup v7 SIGNUP", string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry(t *testing.T) {
	html, err := render.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("html renderer: %v", err)
	}
	text, err := render.NewTextRenderer()
	if err != nil {
		t.Fatalf("text renderer: %v", err)
	}
	registry, err := render.NewRegistry(html, text)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if diff := cmp.Diff([]string{"html", "text"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if err := registry.Register(text); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	_, contentType, err := registry.Render(context.Background(), "text", render.View{})
	if err != nil || contentType != "text/plain; charset=utf-8" {
		t.Fatalf("render via registry: %q, %v", contentType, err)
	}
	if _, _, err := registry.Render(context.Background(), "pdf", render.View{}); err == nil {
		t.Fatalf("expected missing renderer error")
	}
}

func TestComponents(t *testing.T) {
	r, err := render.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	view := render.BuildView(sampleSnapshot(), mustDefinition(t), render.RenderOptions{})
	ctx := context.Background()

	full, err := templ.ToGoHTML(ctx, render.Component(r, view))
	if err != nil {
		t.Fatalf("component: %v", err)
	}
	if !strings.HasPrefix(string(full), "<form") {
		t.Fatalf("unexpected component output: %s", full)
	}

	status, err := templ.ToGoHTML(ctx, render.StatusComponent(r, view))
	if err != nil || !strings.Contains(string(status), "Server said no") {
		t.Fatalf("status component: %q, %v", status, err)
	}

	field, err := templ.ToGoHTML(ctx, render.FieldComponent(r, view, "plan"))
	if err != nil || !strings.Contains(string(field), `data-field="plan"`) {
		t.Fatalf("field component: %q, %v", field, err)
	}
	missing, err := templ.ToGoHTML(ctx, render.FieldComponent(r, view, "nope"))
	if err != nil || missing != "" {
		t.Fatalf("missing field should render nothing: %q, %v", missing, err)
	}

	badge, err := templ.ToGoHTML(ctx, render.StatusBadge(view.Status))
	if err != nil {
		t.Fatalf("badge: %v", err)
	}
	if diff := cmp.Diff(`<span class="formstate-status formstate-status--danger">danger</span>`, string(badge)); diff != "" {
		t.Fatalf("badge mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveTheme(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":         "#123456",
			"status.danger": "alert alert-red",
			"form":          "acme-form",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"status.danger": "alert alert-red-dark",
				},
			},
		},
	}
	selector := &stubThemeSelector{selection: &theme.Selection{Theme: "acme", Variant: "dark", Manifest: manifest}}

	th, err := render.ResolveTheme(selector, "acme", "dark")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]selectorCall{{name: "acme", variant: "dark"}}, selector.calls, cmp.AllowUnexported(selectorCall{})); diff != "" {
		t.Fatalf("selector calls mismatch (-want +got):\n%s", diff)
	}
	if got := th.Class("status.danger"); got != "alert alert-red-dark" {
		t.Fatalf("variant token not applied: %q", got)
	}
	if got := th.Class("status.info"); got != "formstate-status formstate-status--info" {
		t.Fatalf("default token not kept: %q", got)
	}
	if got := th.Style(); got != "--brand: #123456" {
		t.Fatalf("unexpected style %q", got)
	}

	view := render.BuildView(sampleSnapshot(), mustDefinition(t), render.RenderOptions{Theme: th})
	if view.Class != "acme-form" || view.Style != "--brand: #123456" || view.Status.Class != "alert alert-red-dark" {
		t.Fatalf("theme not applied to view: %+v", view)
	}

	failing := &stubThemeSelector{err: errors.New("unknown theme")}
	if _, err := render.ResolveTheme(failing, "nope", ""); err == nil {
		t.Fatalf("expected selector error")
	}
	if _, err := render.ResolveTheme(&stubThemeSelector{}, "acme", ""); err == nil {
		t.Fatalf("expected missing manifest error")
	}
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}
