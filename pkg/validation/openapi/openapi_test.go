package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/testsupport"
	"github.com/goliatone/go-formstate/pkg/validation"
	"github.com/goliatone/go-formstate/pkg/validation/openapi"
)

const signupSchema = `{
  "type": "object",
  "required": ["name", "email"],
  "properties": {
    "name": {"type": "string", "minLength": 1, "x-formstate-message": "Name is required"},
    "email": {"type": "string", "default": ""},
    "age": {"type": "integer", "minimum": 18},
    "address": {
      "type": "object",
      "properties": {
        "city": {"type": "string", "minLength": 2, "default": "NY"}
      }
    }
  }
}`

const petstore = `
openapi: 3.0.3
info:
  title: Accounts
  version: 1.0.0
paths:
  /accounts:
    post:
      operationId: createAccount
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Account'
      responses:
        "201":
          description: created
    get:
      responses:
        "200":
          description: list
components:
  schemas:
    Account:
      type: object
      required: [age]
      properties:
        age:
          type: integer
          minimum: 18
`

func mustValidator(t *testing.T, raw string, opts ...openapi.Option) *openapi.Validator {
	t.Helper()
	schema, err := openapi.SchemaFromJSON(context.Background(), []byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	v, err := openapi.New(schema, opts...)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return v
}

func TestValidator_Accepts(t *testing.T) {
	v := mustValidator(t, signupSchema)
	err := v.Validate(context.Background(), map[string]any{
		"name":  "Ada",
		"email": "ada@example.com",
		"age":   36,
	}, validation.Options{Exhaustive: true})
	if err != nil {
		t.Fatalf("expected values to pass, got %v", err)
	}
}

func TestValidator_ExhaustiveCollectsEveryField(t *testing.T) {
	v := mustValidator(t, signupSchema)

	err := v.Validate(context.Background(), map[string]any{}, validation.Options{Exhaustive: true})
	violations, ok := validation.AsViolations(err)
	if !ok {
		t.Fatalf("expected violations, got %v", err)
	}
	want := validation.Violations{
		{Path: "name", Message: `property "name" is missing`, Code: "required"},
		{Path: "email", Message: `property "email" is missing`, Code: "required"},
	}
	if diff := cmp.Diff(want, violations); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}

	err = v.Validate(context.Background(), map[string]any{}, validation.Options{})
	violations, _ = validation.AsViolations(err)
	if len(violations) != 1 {
		t.Fatalf("expected fail-fast to stop at one violation, got %v", violations)
	}
}

func TestValidator_MessageExtensionAndNestedPaths(t *testing.T) {
	v := mustValidator(t, signupSchema)

	err := v.Validate(context.Background(), map[string]any{
		"name":    "",
		"email":   "x",
		"address": map[string]string{"city": "A"},
	}, validation.Options{Exhaustive: true})
	violations, ok := validation.AsViolations(err)
	if !ok {
		t.Fatalf("expected violations, got %v", err)
	}
	got := map[string]string{}
	for _, item := range violations {
		got[item.Path] = item.Message
	}
	want := map[string]string{
		"name":         "Name is required",
		"address.city": "minimum string length is 2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_CustomMessages(t *testing.T) {
	v := mustValidator(t, signupSchema, openapi.WithMessages(func(err *openapi3.SchemaError) string {
		if err.SchemaField == "minimum" {
			return "You must be an adult"
		}
		return ""
	}))

	err := v.Validate(context.Background(), map[string]any{
		"name":  "Ada",
		"email": "a",
		"age":   10,
	}, validation.Options{Exhaustive: true})
	want := validation.Violations{{Path: "age", Message: "You must be an adult", Code: "minimum"}}
	violations, _ := validation.AsViolations(err)
	if diff := cmp.Diff(want, violations); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_UnencodableValues(t *testing.T) {
	v := mustValidator(t, signupSchema)
	err := v.Validate(context.Background(), map[string]any{"name": make(chan int)}, validation.Options{})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if _, ok := validation.AsViolations(err); ok {
		t.Fatalf("encoding failures must not look like violations: %v", err)
	}
}

func TestValidator_HonoursCancelledContext(t *testing.T) {
	v := mustValidator(t, signupSchema)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := v.Validate(ctx, nil, validation.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNew_RequiresSchema(t *testing.T) {
	if _, err := openapi.New(nil); !errors.Is(err, openapi.ErrSchemaRequired) {
		t.Fatalf("expected ErrSchemaRequired, got %v", err)
	}
}

func TestSchemaFromYAML(t *testing.T) {
	schema, err := openapi.SchemaFromYAML(context.Background(), []byte(`
type: object
required: [age]
properties:
  age:
    type: integer
    minimum: 18
`))
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	if diff := cmp.Diff([]string{"age"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	if _, err := openapi.SchemaFromYAML(context.Background(), nil); err == nil {
		t.Fatalf("expected empty yaml to fail")
	}
}

func TestSchemaFromDocument(t *testing.T) {
	ctx := context.Background()
	schema, err := openapi.SchemaFromDocument(ctx, []byte(petstore), "createAccount")
	if err != nil {
		t.Fatalf("schema from document: %v", err)
	}
	if _, ok := schema.Properties["age"]; !ok {
		t.Fatalf("expected resolved $ref with an age property")
	}

	if _, err := openapi.SchemaFromDocument(ctx, []byte(petstore), "deleteAccount"); !errors.Is(err, openapi.ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := openapi.SchemaFromDocument(ctx, []byte(petstore), "get:/accounts"); !errors.Is(err, openapi.ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}

	ids, err := openapi.Operations(ctx, []byte(petstore))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	if diff := cmp.Diff([]string{"createAccount", "get:/accounts"}, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialValues(t *testing.T) {
	schema, err := openapi.SchemaFromJSON(context.Background(), []byte(signupSchema))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	want := map[string]any{
		"email":   "",
		"address": map[string]any{"city": "NY"},
	}
	if diff := cmp.Diff(want, openapi.InitialValues(schema)); diff != "" {
		t.Fatalf("initial values mismatch (-want +got):\n%s", diff)
	}
}

func TestForm_AdultAgeEndToEnd(t *testing.T) {
	schema, err := openapi.SchemaFromDocument(context.Background(), []byte(petstore), "createAccount")
	if err != nil {
		t.Fatalf("schema from document: %v", err)
	}
	v, err := openapi.New(schema)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	f, err := form.New(form.Config{
		InitialValues: form.Values{"age": 0},
		Validator:     v,
		OnSubmit:      testsupport.NoopSubmit,
	})
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	defer f.Close()
	testsupport.WaitIdle(t, f)

	age := f.Field("age")
	if age.ValidationState() != form.ValidationStateWarning {
		t.Fatalf("expected warning before touch, got %q", age.ValidationState())
	}

	age.HandleFocus()
	age.HandleValueChange(17)
	testsupport.WaitIdle(t, f)
	if diff := cmp.Diff("number must be at least 18", age.Error()); diff != "" {
		t.Fatalf("error mismatch (-want +got):\n%s", diff)
	}
	if age.ValidationState() != form.ValidationStateError {
		t.Fatalf("expected error state, got %q", age.ValidationState())
	}

	age.HandleValueChange(21)
	testsupport.WaitIdle(t, f)
	if age.ValidationState() != form.ValidationStateSuccess || !f.IsValid() {
		t.Fatalf("expected success, got %q valid=%v", age.ValidationState(), f.IsValid())
	}
}
