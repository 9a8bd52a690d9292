package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Token keys looked up on a theme. Status keys are suffixed with the severity
// and field keys with the validation state, e.g. "status.danger" or
// "field.error".
const (
	TokenForm         = "form"
	TokenStatusPrefix = "status."
	TokenFieldPrefix  = "field."
	TokenHintPrefix   = "hint."
)

var defaultTokens = map[string]string{
	TokenForm:        "formstate",
	"status.info":    "formstate-status formstate-status--info",
	"status.success": "formstate-status formstate-status--success",
	"status.warning": "formstate-status formstate-status--warning",
	"status.danger":  "formstate-status formstate-status--danger",
	"field.":         "formstate-field",
	"field.success":  "formstate-field formstate-field--success",
	"field.warning":  "formstate-field formstate-field--warning",
	"field.error":    "formstate-field formstate-field--error",
	"hint.warning":   "formstate-hint formstate-hint--warning",
	"hint.error":     "formstate-hint formstate-hint--error",
}

// Theme is a resolved set of class tokens.
type Theme struct {
	Name    string
	Variant string
	Tokens  map[string]string
}

// DefaultTheme returns the built-in tokens.
func DefaultTheme() *Theme {
	return &Theme{Name: "default", Tokens: cloneTokens(defaultTokens)}
}

// ResolveTheme asks selector for name/variant and merges the manifest tokens,
// then the variant's tokens, over the defaults.
func ResolveTheme(selector theme.ThemeSelector, name, variant string) (*Theme, error) {
	if selector == nil {
		return nil, errors.New("render: theme selector is required")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %q: %w", name, err)
	}
	if selection == nil || selection.Manifest == nil {
		return nil, fmt.Errorf("render: theme %q has no manifest", name)
	}
	return FromManifest(selection.Manifest, selection.Variant), nil
}

// FromManifest builds a Theme from a manifest and an optional variant name.
func FromManifest(manifest *theme.Manifest, variant string) *Theme {
	out := DefaultTheme()
	if manifest == nil {
		return out
	}
	out.Name = manifest.Name
	out.Variant = variant
	for key, value := range manifest.Tokens {
		out.Tokens[key] = value
	}
	if v, ok := manifest.Variants[variant]; ok {
		for key, value := range v.Tokens {
			out.Tokens[key] = value
		}
	}
	return out
}

// Class returns the token for key, or "" when the theme has none.
func (t *Theme) Class(key string) string {
	if t == nil {
		return defaultTokens[key]
	}
	if value, ok := t.Tokens[key]; ok {
		return value
	}
	return defaultTokens[key]
}

// Style renders the tokens without a dot in their key as CSS custom
// properties, sorted by name.
func (t *Theme) Style() string {
	if t == nil || len(t.Tokens) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t.Tokens))
	for key := range t.Tokens {
		if key == TokenForm || strings.Contains(key, ".") {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("--%s: %s", key, t.Tokens[key]))
	}
	return strings.Join(parts, "; ")
}

func cloneTokens(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
