package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")

	ErrNotConfigured       = errors.New("not configured")
	ErrNoDocument          = errors.New("no document provided")
	ErrNoDestination       = errors.New("no destination identified")
	ErrUnsupportedDocument = errors.New("unsupported document format")
	ErrEmptyDocument       = errors.New("document is empty")
)
