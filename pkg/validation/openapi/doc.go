// Package openapi validates form values against OpenAPI 3 schemas using
// kin-openapi. Schemas can come from a raw JSON or YAML schema document or from
// the request body of an operation inside a full OpenAPI document.
package openapi
