package openapi

import "errors"

var (
	// ErrSchemaRequired is returned when New receives a nil schema.
	ErrSchemaRequired = errors.New("openapi validation: schema is required")
	// ErrOperationNotFound is returned when no operation matches the requested id.
	ErrOperationNotFound = errors.New("openapi validation: operation not found")
	// ErrNoRequestBody is returned when the operation has no usable request schema.
	ErrNoRequestBody = errors.New("openapi validation: operation has no request body schema")
)
