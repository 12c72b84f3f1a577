// Package modelgen turns a declarative YAML schema into SQLAlchemy model
// source. The generator itself lives in compiler/gen; this package holds the
// error taxonomy shared by the loader, the generator and the collaborator
// glue (session, migrate).
package modelgen

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common failure cases.
var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("modelgen: not found")

	// ErrParse is returned when the schema document cannot be parsed.
	ErrParse = errors.New("modelgen: parse error")

	// ErrSchema is returned when the schema document violates a shape rule.
	ErrSchema = errors.New("modelgen: invalid schema")
)

// NotFoundError reports a missing resource: a schema file for the loader, or
// a row for the session layer.
type NotFoundError struct {
	label string
	ref   any // Optional: the path or key that was looked up
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.ref != nil {
		return fmt.Sprintf("modelgen: %s not found (%v)", e.label, e.ref)
	}
	return fmt.Sprintf("modelgen: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the resource label.
func (e *NotFoundError) Label() string {
	return e.label
}

// Ref returns the path or key that was looked up, if available.
func (e *NotFoundError) Ref() any {
	return e.ref
}

// NewNotFoundError returns a new NotFoundError for the given resource.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithRef returns a new NotFoundError carrying the path or
// key that was looked up.
func NewNotFoundErrorWithRef(label string, ref any) *NotFoundError {
	return &NotFoundError{label: label, ref: ref}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ParseError reports a malformed schema document. It wraps the underlying
// parser diagnostic and, for file-based invocations, carries the file path.
type ParseError struct {
	Path string // Source file path ("" for raw-text invocations)
	Err  error  // Underlying parser error
}

// Error returns the error string.
func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("modelgen: parsing %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("modelgen: parsing schema: %v", e.Err)
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ParseError.
func (e *ParseError) Is(err error) bool {
	return err == ErrParse
}

// NewParseError returns a new ParseError wrapping the parser diagnostic.
func NewParseError(path string, err error) *ParseError {
	return &ParseError{Path: path, Err: err}
}

// IsParseError returns true if the error is a ParseError.
func IsParseError(err error) bool {
	if err == nil {
		return false
	}
	var e *ParseError
	return errors.As(err, &e) || errors.Is(err, ErrParse)
}

// SchemaError reports a shape or validation violation in the schema document.
// It names the table and/or column at fault and the rule that was violated.
type SchemaError struct {
	Table   string // Table key at fault ("" for document-level violations)
	Column  string // Column name at fault (if applicable)
	Message string
}

// Error returns the error string.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("modelgen: schema error")
	if e.Table != "" {
		b.WriteString(" on table ")
		b.WriteString(e.Table)
	}
	if e.Column != "" {
		b.WriteString(" column ")
		b.WriteString(e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(err error) bool {
	return err == ErrSchema
}

// NewSchemaError returns a new SchemaError for the given table and column.
func NewSchemaError(table, column, message string) *SchemaError {
	return &SchemaError{Table: table, Column: column, Message: message}
}

// IsSchemaError returns true if the error is a SchemaError.
func IsSchemaError(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaError
	return errors.As(err, &e) || errors.Is(err, ErrSchema)
}
