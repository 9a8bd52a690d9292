package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// requestMediaTypes lists the request body media types tried in order before
// falling back to any declared one.
var requestMediaTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// SchemaFromJSON parses a standalone schema document.
func SchemaFromJSON(ctx context.Context, raw []byte) (*openapi3.Schema, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi validation: schema payload is empty")
	}
	schema := openapi3.NewSchema()
	if err := schema.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("openapi validation: parse schema: %w", err)
	}
	if err := schema.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi validation: invalid schema: %w", err)
	}
	return schema, nil
}

// SchemaFromYAML parses a standalone schema written in YAML.
func SchemaFromYAML(ctx context.Context, raw []byte) (*openapi3.Schema, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("openapi validation: parse yaml schema: %w", err)
	}
	if doc == nil {
		return nil, errors.New("openapi validation: schema payload is empty")
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi validation: convert yaml schema: %w", err)
	}
	return SchemaFromJSON(ctx, encoded)
}

// SchemaFromValue converts an already decoded schema (for example the schema
// block of a YAML definition file).
func SchemaFromValue(ctx context.Context, value any) (*openapi3.Schema, error) {
	if value == nil {
		return nil, ErrSchemaRequired
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("openapi validation: encode schema: %w", err)
	}
	return SchemaFromJSON(ctx, encoded)
}

// SchemaFromDocument loads a full OpenAPI document (JSON or YAML) and returns
// the request body schema of operationID. Local references are resolved.
func SchemaFromDocument(ctx context.Context, raw []byte, operationID string) (*openapi3.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi validation: document payload is empty")
	}
	operationID = strings.TrimSpace(operationID)
	if operationID == "" {
		return nil, fmt.Errorf("%w: empty operation id", ErrOperationNotFound)
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi validation: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi validation: validate document: %w", err)
	}

	operation := findOperation(doc, operationID)
	if operation == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	schema := requestSchema(operation.RequestBody)
	if schema == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}
	return schema, nil
}

// Operations lists the operation ids of a document, sorted.
func Operations(ctx context.Context, raw []byte) ([]string, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi validation: load document: %w", err)
	}
	var ids []string
	if doc.Paths != nil {
		for path, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for method, op := range item.Operations() {
				ids = append(ids, operationKey(method, path, op))
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if operationKey(method, path, op) == operationID {
				return op
			}
		}
	}
	return nil
}

// operationKey falls back to "method:path" for operations without an id.
func operationKey(method, path string, op *openapi3.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	return strings.ToLower(method) + ":" + path
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}
