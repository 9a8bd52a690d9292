package form

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Values is the bag of field values keyed by field name. Nested maps and
// slices are addressed with dotted paths ("owner.email", "tags.0").
type Values = map[string]any

func cloneValues(src Values) Values {
	out := make(Values, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func cloneTouched(src map[string]bool) map[string]bool {
	out := make(map[string]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}

// valuesEqual compares two bags field by field.
func valuesEqual(a, b Values) bool {
	if len(a) != len(b) {
		return false
	}
	for key, left := range a {
		right, ok := b[key]
		if !ok || !reflect.DeepEqual(left, right) {
			return false
		}
	}
	return true
}

func rootSegment(path string) string {
	if idx := strings.IndexByte(path, '.'); idx >= 0 {
		return path[:idx]
	}
	return path
}

func getPath(root Values, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	if value, ok := root[path]; ok {
		return value, true
	}
	current := any(root)
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// maxPathIndex caps numeric path segments.
const maxPathIndex = 4096

// setPath writes value at a dotted path, creating intermediate maps and
// growing slices as needed. A key that already exists verbatim at the root
// (including keys that contain dots) is written directly. Nested writes go to
// a copy of the root entry, which replaces the original only on success.
func setPath(root Values, path string, value any) error {
	if root == nil {
		return fmt.Errorf("form: values map is nil")
	}
	if _, ok := root[path]; ok || !strings.Contains(path, ".") {
		root[path] = value
		return nil
	}

	key := rootSegment(path)
	scratch := make(Values, 1)
	if existing, ok := root[key]; ok {
		scratch[key] = deepCopy(existing)
	}
	if err := writePath(scratch, path, value); err != nil {
		return err
	}
	root[key] = scratch[key]
	return nil
}

func writePath(root Values, path string, value any) error {
	segments := strings.Split(path, ".")
	var (
		current     any = root
		parentMap   map[string]any
		parentSlice []any
		parentKey   string
		parentIndex = -1
	)

	// reattach writes a grown slice back into whichever container holds it.
	reattach := func(node []any) {
		if parentMap != nil {
			parentMap[parentKey] = node
		} else if parentSlice != nil && parentIndex >= 0 {
			parentSlice[parentIndex] = node
		}
	}

	for i, segment := range segments {
		last := i == len(segments)-1
		switch node := current.(type) {
		case map[string]any:
			if last {
				node[segment] = value
				return nil
			}
			if _, err := strconv.Atoi(segments[i+1]); err == nil {
				child, ok := node[segment].([]any)
				if !ok {
					child = []any{}
					node[segment] = child
				}
				parentMap, parentSlice, parentKey, parentIndex = node, nil, segment, -1
				current = child
				continue
			}
			child, ok := node[segment].(map[string]any)
			if !ok || child == nil {
				child = make(map[string]any)
				node[segment] = child
			}
			parentMap, parentSlice, parentKey, parentIndex = node, nil, segment, -1
			current = child

		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return fmt.Errorf("form: expected numeric segment, got %q", segment)
			}
			if idx < 0 {
				return fmt.Errorf("form: negative index in path %q", path)
			}
			if idx > maxPathIndex {
				return fmt.Errorf("form: index %d out of range in path %q", idx, path)
			}
			if len(node) <= idx {
				node = append(node, make([]any, idx+1-len(node))...)
				reattach(node)
			}
			if last {
				node[idx] = value
				return nil
			}
			if _, err := strconv.Atoi(segments[i+1]); err == nil {
				child, ok := node[idx].([]any)
				if !ok {
					child = []any{}
					node[idx] = child
				}
				parentMap, parentSlice, parentKey, parentIndex = nil, node, "", idx
				current = child
				continue
			}
			child, ok := node[idx].(map[string]any)
			if !ok || child == nil {
				child = make(map[string]any)
				node[idx] = child
			}
			parentMap, parentSlice, parentKey, parentIndex = nil, node, "", idx
			current = child

		default:
			return fmt.Errorf("form: unexpected container for segment %q in %q", segment, path)
		}
	}
	return nil
}
