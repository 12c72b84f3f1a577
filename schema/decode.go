package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/syssam/modelgen"
)

// Decode walks a parsed schema tree, enforcing the shape rules and building
// the typed representation. Validation is fail-fast in document order: the
// first violation aborts with a SchemaError naming the table and column at
// fault. Unknown keys in table and column mappings are ignored.
func Decode(root *yaml.Node) (*Schema, error) {
	node := unwrap(root)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, modelgen.NewSchemaError("", "", "missing or malformed 'tables' section")
	}
	tables := mapValue(node, "tables")
	if tables == nil || tables.Kind != yaml.MappingNode {
		return nil, modelgen.NewSchemaError("", "", "missing or malformed 'tables' section")
	}
	s := &Schema{}
	for key, value := range mapEntries(tables) {
		t, err := decodeTable(key, value)
		if err != nil {
			return nil, err
		}
		s.Tables = append(s.Tables, t)
	}
	return s, nil
}

func decodeTable(key string, node *yaml.Node) (*TableSpec, error) {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, modelgen.NewSchemaError(key, "", "table definition is not a mapping")
	}
	t := &TableSpec{
		Key:       key,
		ClassName: DefaultClassName(key),
		TableName: DefaultTableName(key),
	}
	for field, value := range mapEntries(node) {
		var err error
		switch field {
		case "class_name":
			err = scalar(value, &t.ClassName)
		case "table_name":
			err = scalar(value, &t.TableName)
		case "description":
			err = scalar(value, &t.Description)
		}
		if err != nil {
			return nil, modelgen.NewSchemaError(key, "", fmt.Sprintf("invalid %q value: %v", field, err))
		}
	}
	columns := mapValue(node, "columns")
	if columns == nil || columns.Kind != yaml.MappingNode {
		return nil, modelgen.NewSchemaError(key, "", "missing or malformed 'columns' section")
	}
	for name, value := range mapEntries(columns) {
		c, err := decodeColumn(key, name, value)
		if err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, c)
	}
	return t, nil
}

func decodeColumn(table, name string, node *yaml.Node) (*ColumnSpec, error) {
	if node == nil || node.Kind != yaml.MappingNode || mapValue(node, "type") == nil {
		return nil, modelgen.NewSchemaError(table, name, "malformed definition or missing 'type'")
	}
	c := &ColumnSpec{Name: name}
	if err := scalar(mapValue(node, "type"), &c.Type); err != nil {
		return nil, modelgen.NewSchemaError(table, name, "malformed definition or missing 'type'")
	}
	if !ValidType(c.Type) {
		return nil, modelgen.NewSchemaError(table, name, fmt.Sprintf("unsupported column type %q", c.Type))
	}
	for field, value := range mapEntries(node) {
		var err error
		switch field {
		case "length":
			var n int64
			if err = scalar(value, &n); err == nil {
				c.Length = &n
			}
		case "primary_key":
			err = scalar(value, &c.PrimaryKey)
		case "autoincrement":
			err = scalar(value, &c.AutoIncrement)
		case "nullable":
			var b bool
			if err = scalar(value, &b); err == nil {
				c.Nullable = &b
			}
		case "unique":
			err = scalar(value, &c.Unique)
		case "index":
			err = scalar(value, &c.Index)
		case "default":
			var v any
			if err = scalar(value, &v); err == nil {
				c.Default = &Value{V: v}
			}
		case "comment":
			var s string
			if err = scalar(value, &s); err == nil {
				c.Comment = &s
			}
		}
		if err != nil {
			return nil, modelgen.NewSchemaError(table, name, fmt.Sprintf("invalid %q value: %v", field, err))
		}
	}
	return c, nil
}

// unwrap strips document and alias indirection off a node.
func unwrap(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch {
		case node.Kind == yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		case node.Kind == yaml.AliasNode:
			node = node.Alias
		default:
			return node
		}
	}
	return nil
}

// mapValue returns the value node for the given key of a mapping node, or
// nil when the key is absent.
func mapValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return unwrap(node.Content[i+1])
		}
	}
	return nil
}

// mapEntries iterates a mapping node's key/value pairs in document order.
func mapEntries(node *yaml.Node) func(yield func(string, *yaml.Node) bool) {
	return func(yield func(string, *yaml.Node) bool) {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if !yield(node.Content[i].Value, unwrap(node.Content[i+1])) {
				return
			}
		}
	}
}

func scalar[T any](node *yaml.Node, out *T) error {
	if node == nil {
		return fmt.Errorf("missing value")
	}
	return node.Decode(out)
}
