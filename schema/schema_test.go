package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgen"
	"github.com/syssam/modelgen/schema"
)

func TestParse(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		node, err := schema.Parse([]byte("tables:\n  users:\n    columns:\n      id: {type: Integer}\n"))
		require.NoError(t, err)
		require.NotNil(t, node)
	})

	t.Run("syntax_error", func(t *testing.T) {
		_, err := schema.Parse([]byte("tables:\n\t- bad tab indent"))
		require.Error(t, err)
		assert.True(t, modelgen.IsParseError(err))
	})
}

func TestParseFile(t *testing.T) {
	t.Run("missing_file", func(t *testing.T) {
		_, err := schema.ParseFile(filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
		assert.True(t, modelgen.IsNotFound(err))
	})

	t.Run("syntax_error_names_path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yml")
		require.NoError(t, os.WriteFile(path, []byte("tables:\n\t- bad"), 0o644))
		_, err := schema.ParseFile(path)
		require.Error(t, err)
		assert.True(t, modelgen.IsParseError(err))
		assert.Contains(t, err.Error(), path)
	})

	t.Run("valid_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yml")
		require.NoError(t, os.WriteFile(path, []byte("tables:\n  users:\n    columns:\n      id: {type: Integer}\n"), 0o644))
		s, err := schema.LoadFile(path)
		require.NoError(t, err)
		require.Len(t, s.Tables, 1)
	})
}

func TestDecode(t *testing.T) {
	load := func(t *testing.T, src string) (*schema.Schema, error) {
		t.Helper()
		return schema.Load([]byte(src))
	}

	t.Run("resolves_default_names", func(t *testing.T) {
		s, err := load(t, `
tables:
  user_profile:
    columns:
      id: {type: Integer}
`)
		require.NoError(t, err)
		require.Len(t, s.Tables, 1)
		assert.Equal(t, "user_profile", s.Tables[0].Key)
		assert.Equal(t, "UserProfile", s.Tables[0].ClassName)
		assert.Equal(t, "user_profile", s.Tables[0].TableName)
	})

	t.Run("lowercases_table_name_verbatim", func(t *testing.T) {
		s, err := load(t, `
tables:
  Order:
    columns:
      id: {type: Integer}
`)
		require.NoError(t, err)
		assert.Equal(t, "Order", s.Tables[0].ClassName)
		assert.Equal(t, "order", s.Tables[0].TableName)
	})

	t.Run("explicit_names_win", func(t *testing.T) {
		s, err := load(t, `
tables:
  user:
    class_name: Account
    table_name: accounts
    columns:
      id: {type: Integer}
`)
		require.NoError(t, err)
		assert.Equal(t, "Account", s.Tables[0].ClassName)
		assert.Equal(t, "accounts", s.Tables[0].TableName)
	})

	t.Run("preserves_document_order", func(t *testing.T) {
		s, err := load(t, `
tables:
  zebra:
    columns:
      z: {type: Integer}
      a: {type: Integer}
      m: {type: Integer}
  apple:
    columns:
      id: {type: Integer}
`)
		require.NoError(t, err)
		require.Len(t, s.Tables, 2)
		assert.Equal(t, "zebra", s.Tables[0].Key)
		assert.Equal(t, "apple", s.Tables[1].Key)
		names := make([]string, 0, 3)
		for _, c := range s.Tables[0].Columns {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"z", "a", "m"}, names)
	})

	t.Run("nullable_is_tristate", func(t *testing.T) {
		s, err := load(t, `
tables:
  t:
    columns:
      a: {type: Integer, nullable: false}
      b: {type: Integer, nullable: true}
      c: {type: Integer}
`)
		require.NoError(t, err)
		cols := s.Tables[0].Columns
		require.NotNil(t, cols[0].Nullable)
		assert.False(t, *cols[0].Nullable)
		require.NotNil(t, cols[1].Nullable)
		assert.True(t, *cols[1].Nullable)
		assert.Nil(t, cols[2].Nullable)
	})

	t.Run("default_null_is_present", func(t *testing.T) {
		s, err := load(t, `
tables:
  t:
    columns:
      a: {type: Integer, default: null}
      b: {type: Integer}
`)
		require.NoError(t, err)
		cols := s.Tables[0].Columns
		require.NotNil(t, cols[0].Default)
		assert.Nil(t, cols[0].Default.V)
		assert.Nil(t, cols[1].Default)
	})

	t.Run("missing_tables", func(t *testing.T) {
		_, err := load(t, "foo: bar\n")
		require.Error(t, err)
		assert.True(t, modelgen.IsSchemaError(err))
	})

	t.Run("tables_not_a_mapping", func(t *testing.T) {
		_, err := load(t, "tables: nope\n")
		require.Error(t, err)
		assert.True(t, modelgen.IsSchemaError(err))
		assert.Contains(t, err.Error(), "'tables'")
	})

	t.Run("empty_document", func(t *testing.T) {
		_, err := load(t, "")
		require.Error(t, err)
		assert.True(t, modelgen.IsSchemaError(err))
	})

	t.Run("table_not_a_mapping", func(t *testing.T) {
		_, err := load(t, "tables:\n  users: 42\n")
		require.Error(t, err)
		assert.True(t, modelgen.IsSchemaError(err))
		assert.Contains(t, err.Error(), "users")
	})

	t.Run("missing_columns", func(t *testing.T) {
		_, err := load(t, "tables:\n  users:\n    table_name: users\n")
		require.Error(t, err)
		assert.True(t, modelgen.IsSchemaError(err))
		assert.Contains(t, err.Error(), "users")
		assert.Contains(t, err.Error(), "'columns'")
	})

	t.Run("column_missing_type", func(t *testing.T) {
		_, err := load(t, "tables:\n  users:\n    columns:\n      id: {primary_key: true}\n")
		require.Error(t, err)
		assert.True(t, modelgen.IsSchemaError(err))
		assert.Contains(t, err.Error(), "users")
		assert.Contains(t, err.Error(), "id")
	})

	t.Run("unsupported_type", func(t *testing.T) {
		_, err := load(t, "tables:\n  users:\n    columns:\n      payload: {type: JSON}\n")
		require.Error(t, err)
		assert.True(t, modelgen.IsSchemaError(err))
		assert.Contains(t, err.Error(), "payload")
		assert.Contains(t, err.Error(), "JSON")
		assert.Contains(t, err.Error(), "users")
	})

	t.Run("fail_fast_first_error_wins", func(t *testing.T) {
		_, err := load(t, `
tables:
  first:
    columns:
      bad: {type: JSON}
  second:
    columns:
      worse: {type: BLOB}
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "first")
		assert.NotContains(t, err.Error(), "second")
	})
}

func TestValidType(t *testing.T) {
	for _, tag := range []string{"Integer", "String", "DateTime", "Boolean", "Float", "Text"} {
		assert.True(t, schema.ValidType(tag), tag)
	}
	assert.False(t, schema.ValidType("JSON"))
	assert.False(t, schema.ValidType("integer"))
}
