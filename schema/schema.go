// Package schema loads and validates the declarative YAML schema that drives
// model generation. Loading (Parse, ParseFile) and validation (Decode) are
// separate steps: the loader only turns text into a yaml.Node tree, and
// Decode walks that tree enforcing the shape rules and building the typed,
// document-ordered representation the generator consumes.
package schema

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// Column type tags accepted in a column's "type" field.
const (
	TypeInteger  = "Integer"
	TypeString   = "String"
	TypeDateTime = "DateTime"
	TypeBoolean  = "Boolean"
	TypeFloat    = "Float"
	TypeText     = "Text"
)

// validTypes is the closed set of accepted type tags.
var validTypes = map[string]bool{
	TypeInteger:  true,
	TypeString:   true,
	TypeDateTime: true,
	TypeBoolean:  true,
	TypeFloat:    true,
	TypeText:     true,
}

// ValidType reports whether t is one of the supported column type tags.
func ValidType(t string) bool {
	return validTypes[t]
}

// Schema is the validated root of a schema document. Tables preserve the
// order they appear in the document.
type Schema struct {
	Tables []*TableSpec
}

// TableSpec is one validated entry under "tables". ClassName and TableName
// are already resolved: defaults derived from the table key are applied
// during Decode.
type TableSpec struct {
	Key         string        // Raw table key from the document
	ClassName   string        // Generated class name
	TableName   string        // Database table name
	Description string        // Optional multi-line description
	Columns     []*ColumnSpec // Columns in document order
}

// ColumnSpec is one validated entry under a table's "columns". Pointer
// fields distinguish "absent" from a zero value: Nullable is tri-state
// because only an explicit false is ever rendered, and Comment is rendered
// even when empty as long as the key is present.
type ColumnSpec struct {
	Name          string
	Type          string
	Length        *int64
	PrimaryKey    bool
	AutoIncrement bool
	Nullable      *bool
	Unique        bool
	Default       *Value
	Index         bool
	Comment       *string
}

// Value wraps a scalar default value of any primitive type. The wrapper
// exists so a present-but-null default ({default: null}) is distinguishable
// from an absent one.
type Value struct {
	V any
}

// DefaultClassName derives a class name from a table key written in the
// lowercase-with-underscores convention: "user_profile" -> "UserProfile".
func DefaultClassName(key string) string {
	return inflect.Camelize(key)
}

// DefaultTableName derives a database table name from a table key: the raw
// key lowercased verbatim, with no underscore transformation.
func DefaultTableName(key string) string {
	return strings.ToLower(key)
}
