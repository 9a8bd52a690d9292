package validation

import "strings"

// FieldPath normalises the path reported by a validator into the dotted field
// name forms use as error keys. JSON pointers ("/owner/email", "#/owner/email"),
// JSONPath-ish prefixes ("$.owner.email") and bracket indexes ("tags[0]") are
// accepted. Form-level keys ("", "/", "#", "__all__", "non_field_errors", ...)
// yield an empty string.
func FieldPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if isFormLevelKey(trimmed) {
		return ""
	}

	pointer := strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "#/")
	for strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "$") ||
		strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, ".") {
		trimmed = trimmed[1:]
	}

	var parts []string
	if pointer {
		parts = strings.Split(trimmed, "/")
	} else {
		replacer := strings.NewReplacer("[", ".", "]", "")
		parts = strings.Split(replacer.Replace(trimmed), ".")
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		if pointer {
			segment = strings.ReplaceAll(segment, "~1", "/")
			segment = strings.ReplaceAll(segment, "~0", "~")
		}
		out = append(out, segment)
	}
	return strings.Join(out, ".")
}

// JoinPath joins dotted path segments, skipping empty ones.
func JoinPath(parent, child string) string {
	parent = strings.TrimSpace(parent)
	child = strings.TrimSpace(child)
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "#/", "$", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
