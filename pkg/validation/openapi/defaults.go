package openapi

import "github.com/getkin/kin-openapi/openapi3"

// InitialValues builds a value bag from the defaults declared on the schema's
// properties. Nested objects become nested maps; properties without a default
// are left out so required checks still fire.
func InitialValues(schema *openapi3.Schema) map[string]any {
	out := map[string]any{}
	if schema == nil {
		return out
	}
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		if value, ok := defaultFor(ref.Value); ok {
			out[name] = value
		}
	}
	return out
}

func defaultFor(schema *openapi3.Schema) (any, bool) {
	if schema.Default != nil {
		return schema.Default, true
	}
	if schema.Type == nil || !schema.Type.Is(openapi3.TypeObject) || len(schema.Properties) == 0 {
		return nil, false
	}
	nested := InitialValues(schema)
	if len(nested) == 0 {
		return nil, false
	}
	return nested, true
}
