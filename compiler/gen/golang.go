package gen

import (
	"bytes"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"

	"github.com/syssam/modelgen/schema"
)

// GenerateGo emits Go struct bindings for the schema tables: one db-tagged
// struct per table plus a table-name constant, for programs that read the
// generated tables directly over database/sql. The SQLAlchemy output stays
// the source of truth; these bindings are a convenience for the Go side.
func GenerateGo(s *schema.Schema, pkg string) ([]byte, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by modelgen. DO NOT EDIT.")
	for _, t := range s.Tables {
		if t.Description != "" {
			f.Comment(t.ClassName + " maps the " + t.TableName + " table.")
		}
		f.Const().Id("Table" + t.ClassName).Op("=").Lit(t.TableName)
		fields := make([]jen.Code, 0, len(t.Columns))
		for _, c := range t.Columns {
			fields = append(fields, jen.Id(goFieldName(c.Name)).Add(goType(c)).Tag(map[string]string{"db": c.Name}))
		}
		f.Type().Id(t.ClassName).Struct(fields...)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func goFieldName(column string) string {
	return inflect.Camelize(column)
}

// goType maps a column to its Go binding type. Nullable columns (anything
// not declared nullable: false and not a primary key) bind to pointers so a
// SQL NULL scans cleanly.
func goType(c *schema.ColumnSpec) jen.Code {
	var base *jen.Statement
	switch c.Type {
	case schema.TypeInteger:
		base = jen.Int64()
	case schema.TypeString, schema.TypeText:
		base = jen.String()
	case schema.TypeDateTime:
		base = jen.Qual("time", "Time")
	case schema.TypeBoolean:
		base = jen.Bool()
	case schema.TypeFloat:
		base = jen.Float64()
	default:
		base = jen.Id("any")
	}
	nullable := c.Nullable == nil || *c.Nullable
	if nullable && !c.PrimaryKey {
		return jen.Op("*").Add(base)
	}
	return base
}
