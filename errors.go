package dowse

import (
	"errors"
	"fmt"
	"reflect"
)

// Setup errors, reported when loaders or factories are built rather than
// during resolution.
var (
	ErrEmptyNamespace        = errors.New("dowse: namespace must have at least one element")
	ErrBlankNamespaceElement = errors.New("dowse: namespace elements must be non-blank")
	ErrBadTemplate           = errors.New("dowse: file name template must contain exactly one {name} slot")
	ErrNoLoaders             = errors.New("dowse: at least one loader is required")
)

// StructureError reports a config file whose shape does not match the
// namespace: a path segment exists but holds something other than a table.
type StructureError struct {
	Path string // Dotted path of the offending segment (e.g., "tool.mytool")
	Type string // Go type actually found there
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("dowse: %s must be a table, got %s", e.Path, e.Type)
}

// ConversionError reports a raw value that could not be converted to a
// field's declared type. Malformed values are never silently defaulted.
type ConversionError struct {
	Field string       // Resolved field name, set by loaders that know it
	Value string       // Raw input
	Type  reflect.Type // Declared target type
	Err   error        // Underlying cause, may be nil
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("dowse: cannot convert %q to %s", e.Value, e.Type)
	if e.Field != "" {
		msg = fmt.Sprintf("dowse: field %s: cannot convert %q to %s", e.Field, e.Value, e.Type)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
