package snapshot_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/snapshot"
	"github.com/goliatone/go-formstate/pkg/testsupport"
	"github.com/goliatone/go-formstate/pkg/validation"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTakenForm(t *testing.T) *form.Form {
	t.Helper()
	v := validation.ValidatorFunc(func(_ context.Context, values map[string]any, _ validation.Options) error {
		if values["email"] == "" {
			return validation.Violations{validation.At("email", "Email is required")}
		}
		return nil
	})
	f, err := form.New(form.Config{
		InitialValues: form.Values{"email": "", "name": "Ada"},
		Validator:     v,
		OnSubmit:      testsupport.NoopSubmit,
	})
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	t.Cleanup(f.Close)
	_ = f.Touch("email")
	testsupport.WaitIdle(t, f)
	return f
}

func TestTake(t *testing.T) {
	f := newTakenForm(t)

	snap := snapshot.Take(f,
		snapshot.WithName("signup"),
		snapshot.WithFields("email", "name"),
		snapshot.WithClock(func() time.Time { return fixedNow }),
	)

	if snap.Form != "signup" || !snap.TakenAt.Equal(fixedNow) {
		t.Fatalf("unexpected header: %+v", snap)
	}
	if snap.State.Version != f.Version() {
		t.Fatalf("state version %d does not match form %d", snap.State.Version, f.Version())
	}
	want := []form.FieldSnapshot{
		{Name: "email", Value: "", Error: "Email is required", Touched: true, State: form.ValidationStateError},
		{Name: "name", Value: "Ada", State: form.ValidationStateNone},
	}
	if diff := cmp.Diff(want, snap.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	f := newTakenForm(t)
	snap := snapshot.Take(f, snapshot.WithFields("email"), snapshot.WithClock(func() time.Time { return fixedNow }))

	for _, format := range []snapshot.Format{snapshot.FormatJSON, snapshot.FormatMsgpack} {
		t.Run(string(format), func(t *testing.T) {
			data, err := snapshot.Marshal(snap, format)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			got, err := snapshot.Unmarshal(data, format)
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if diff := cmp.Diff(snap, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_JSONShape(t *testing.T) {
	f := newTakenForm(t)
	data, err := snapshot.Marshal(snapshot.Take(f), snapshot.FormatJSON)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	for _, fragment := range []string{`"validity": "invalid"`, `"email": "Email is required"`, `"dirty": false`} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %s in output:\n%s", fragment, out)
		}
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]snapshot.Format{
		"":        snapshot.FormatJSON,
		"JSON":    snapshot.FormatJSON,
		"msgpack": snapshot.FormatMsgpack,
		" mp ":    snapshot.FormatMsgpack,
	}
	for input, want := range cases {
		got, err := snapshot.ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := snapshot.ParseFormat("xml"); !errors.Is(err, snapshot.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := snapshot.Marshal(snapshot.Snapshot{}, "xml"); !errors.Is(err, snapshot.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat from Marshal, got %v", err)
	}
}
