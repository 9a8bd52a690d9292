package render

import (
	"fmt"
	"strings"
)

// VersionFieldName is the hidden input carrying the form version.
const VersionFieldName = "_version"

// HiddenField is a hidden input emitted alongside the visible controls.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// mergeHidden drops unnamed fields; later fields win on name collisions while
// keeping the position of the first occurrence.
func mergeHidden(fields ...HiddenField) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(fields))
	index := make(map[string]int, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		if idx, ok := index[field.Name]; ok {
			out[idx] = field
			continue
		}
		index[field.Name] = len(out)
		out = append(out, field)
	}
	return out
}
