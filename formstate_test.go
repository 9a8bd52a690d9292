package formstate_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/pkg/definition"
)

const newsletterDefinition = `
id: newsletter
title: Newsletter
initialValues:
  email: ""
schema:
  type: object
  required: [email]
  properties:
    email:
      type: string
      minLength: 3
      x-formstate-message: Enter your email
    frequency:
      type: string
      enum: [daily, weekly]
      default: weekly
fields:
  - name: email
    label: Email
submit:
  message: Subscribed
strictFields: true
`

func TestFromDefinition_ValidatesSubmitsAndRenders(t *testing.T) {
	def, err := definition.Parse([]byte(newsletterDefinition), "newsletter.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ctx := context.Background()

	f, err := formstate.FromDefinition(ctx, def, nil)
	if err != nil {
		t.Fatalf("from definition: %v", err)
	}
	t.Cleanup(f.Close)

	if diff := cmp.Diff(formstate.Values{"email": "", "frequency": "weekly"}, f.Values()); diff != "" {
		t.Fatalf("initial values mismatch (-want +got):\n%s", diff)
	}
	if err := f.SetField("unknown", 1); err == nil {
		t.Fatalf("strict fields should reject unknown names")
	}

	waitIdle(t, f)
	if got := f.Errors()["email"]; got != "Enter your email" {
		t.Fatalf("expected schema message, got %q", got)
	}

	if err := f.Touch("email"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	waitIdle(t, f)

	out, err := formstate.RenderHTML(ctx, f, def, formstate.RenderOptions{Action: "/subscribe"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, fragment := range []string{`action="/subscribe"`, `data-field="email" data-state="error"`, "Enter your email"} {
		if !strings.Contains(string(out), fragment) {
			t.Fatalf("expected %s in:\n%s", fragment, out)
		}
	}

	if err := f.SetField("email", "ada@example.com"); err != nil {
		t.Fatalf("set: %v", err)
	}
	waitIdle(t, f)
	if !f.IsValid() {
		t.Fatalf("expected valid form, errors %v", f.Errors())
	}
	if err := f.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitIdle(t, f)
	if got := f.Status(); got == nil || got.Message != "Subscribed" {
		t.Fatalf("expected definition submit status, got %+v", got)
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{"form.tpl", "field.tpl", "status.tpl", "summary.tpl"} {
		if _, err := fs.Stat(formstate.EmbeddedTemplates(), name); err != nil {
			t.Errorf("expected embedded template %s: %v", name, err)
		}
	}
}

func waitIdle(t *testing.T, f *formstate.Form) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}
