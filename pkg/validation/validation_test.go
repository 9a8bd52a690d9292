package validation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/validation"
)

func TestFieldPath(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"#":                "",
		"/":                "",
		"__all__":          "",
		"non_field_errors": "",
		"age":              "age",
		"/age":             "age",
		"#/owner/email":    "owner.email",
		"/a~1b/c~0d":       "a/b.c~d",
		"$.owner.email":    "owner.email",
		"tags[0]":          "tags.0",
		" owner.email ":    "owner.email",
	}
	for input, want := range cases {
		if got := validation.FieldPath(input); got != want {
			t.Errorf("FieldPath(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestAsViolations_Wrapped(t *testing.T) {
	base := validation.Violations{validation.At("age", "too young")}
	wrapped := fmt.Errorf("schema: %w", base)

	got, ok := validation.AsViolations(wrapped)
	if !ok {
		t.Fatalf("expected violations to be extracted")
	}
	if diff := cmp.Diff(base, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}

	if _, ok := validation.AsViolations(errors.New("boom")); ok {
		t.Fatalf("plain errors must not be reported as violations")
	}
	if _, ok := validation.AsViolations(nil); ok {
		t.Fatalf("nil must not be reported as violations")
	}
}

func TestViolations_ErrorSummary(t *testing.T) {
	v := validation.Violations{
		validation.At("a", "one"),
		validation.General("form broken"),
		validation.At("b", "two"),
		validation.At("c", "three"),
	}
	want := "a: one; form broken; b: two; ... (total 4)"
	if got := v.Error(); got != want {
		t.Fatalf("unexpected summary: %q", got)
	}
	if diff := cmp.Diff(validation.Violations{v[0], v[2], v[3]}, v.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestChain_ExhaustiveMergesViolations(t *testing.T) {
	first := validation.ValidatorFunc(func(context.Context, map[string]any, validation.Options) error {
		return validation.Violations{validation.At("a", "bad a")}
	})
	second := validation.ValidatorFunc(func(context.Context, map[string]any, validation.Options) error {
		return validation.Violations{validation.At("b", "bad b")}
	})
	chain := validation.Chain(first, nil, second)

	err := chain.Validate(context.Background(), nil, validation.Options{Exhaustive: true})
	got, ok := validation.AsViolations(err)
	if !ok {
		t.Fatalf("expected violations, got %v", err)
	}
	want := validation.Violations{validation.At("a", "bad a"), validation.At("b", "bad b")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}

	err = chain.Validate(context.Background(), nil, validation.Options{})
	got, _ = validation.AsViolations(err)
	if diff := cmp.Diff(want[:1], got); diff != "" {
		t.Fatalf("fail-fast chain mismatch (-want +got):\n%s", diff)
	}
}

func TestChain_StopsOnUnstructuredError(t *testing.T) {
	boom := errors.New("network down")
	calls := 0
	chain := validation.Chain(
		validation.ValidatorFunc(func(context.Context, map[string]any, validation.Options) error {
			calls++
			return boom
		}),
		validation.ValidatorFunc(func(context.Context, map[string]any, validation.Options) error {
			calls++
			return nil
		}),
	)
	err := chain.Validate(context.Background(), nil, validation.Options{Exhaustive: true})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected chain to stop after first validator, got %d calls", calls)
	}
}
