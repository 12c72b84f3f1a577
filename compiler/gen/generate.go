// Package gen generates SQLAlchemy model source from a validated schema.
// Generation is a pure, single-pass transform: identical input always
// produces byte-identical output. Table and column order follow the schema
// document; only the import block is sorted.
package gen

import (
	"bytes"
	"slices"
	"strings"

	"github.com/syssam/modelgen/schema"
)

// Generate renders model source from raw schema text.
func Generate(src []byte, opts ...Option) ([]byte, error) {
	s, err := schema.Load(src)
	if err != nil {
		return nil, err
	}
	return FromSchema(s, opts...)
}

// GenerateFile renders model source from a schema file on disk.
func GenerateFile(path string, opts ...Option) ([]byte, error) {
	s, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return FromSchema(s, opts...)
}

// FromSchema renders model source from an already-loaded schema. Generate
// and GenerateFile both funnel into this.
func FromSchema(s *schema.Schema, opts ...Option) ([]byte, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	imp := newImports()
	var blocks []string
	for _, t := range s.Tables {
		blocks = append(blocks, renderTable(t, cfg, imp)...)
	}
	return assemble(cfg, imp, blocks), nil
}

// assemble concatenates the import block, the declarative base binding and
// the table blocks into the final output text.
func assemble(cfg *Config, imp *imports, blocks []string) []byte {
	tokens := append([]string{"Column"}, imp.sortedTypes()...)
	slices.Sort(tokens)
	lines := []string{"from sqlalchemy import " + strings.Join(tokens, ", ")}
	if imp.funcDefault {
		lines = append(lines, "from sqlalchemy.sql import func")
	}
	lines = append(lines, "from sqlalchemy.ext.declarative import declarative_base")
	slices.Sort(lines)
	lines = slices.Compact(lines)

	var b bytes.Buffer
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString(cfg.BaseName)
	b.WriteString(" = declarative_base()\n\n")
	b.WriteString(strings.Join(blocks, "\n"))
	return b.Bytes()
}
