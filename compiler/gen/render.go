package gen

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/modelgen/schema"
)

// typeTokens maps schema type tags to the SQLAlchemy type names emitted in
// column declarations and imports.
var typeTokens = map[string]string{
	schema.TypeInteger:  "Integer",
	schema.TypeString:   "String",
	schema.TypeDateTime: "DateTime",
	schema.TypeBoolean:  "Boolean",
	schema.TypeFloat:    "Float",
	schema.TypeText:     "Text",
}

// imports accumulates what the rendered code actually references: the set of
// type tokens in use and whether any column needs the sqlalchemy.sql.func
// import. One value is threaded through a single generation call; nothing is
// shared across calls.
type imports struct {
	types       map[string]struct{}
	funcDefault bool
}

func newImports() *imports {
	return &imports{types: make(map[string]struct{})}
}

// sortedTypes returns the used type tokens in alphabetical order.
func (i *imports) sortedTypes() []string {
	out := make([]string, 0, len(i.types))
	for t := range i.types {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// renderTable emits the source lines for one table: class header, optional
// docstring, table-name binding, a blank separator, one line per column in
// document order, and a trailing blank line closing the block.
func renderTable(t *schema.TableSpec, cfg *Config, imp *imports) []string {
	lines := []string{fmt.Sprintf("class %s(%s):", t.ClassName, cfg.BaseName)}
	if t.Description != "" {
		lines = append(lines, `    """`)
		for _, l := range strings.Split(strings.TrimSpace(t.Description), "\n") {
			lines = append(lines, "    "+strings.TrimSpace(l))
		}
		lines = append(lines, `    """`)
	}
	lines = append(lines, fmt.Sprintf("    __tablename__ = '%s'", t.TableName), "")
	for _, c := range t.Columns {
		lines = append(lines, renderColumn(c, cfg, imp))
	}
	return append(lines, "")
}

// renderColumn emits one column declaration line. Argument order is fixed:
// primary_key, autoincrement, nullable, unique, default/server_default,
// index, comment. Only an explicit nullable: false is rendered; true or
// absent emits nothing.
func renderColumn(c *schema.ColumnSpec, cfg *Config, imp *imports) string {
	token := typeTokens[c.Type]
	imp.types[token] = struct{}{}
	typeExpr := token
	if c.Type == schema.TypeString && c.Length != nil {
		typeExpr = fmt.Sprintf("String(length=%d)", *c.Length)
	}
	var args []string
	if c.PrimaryKey {
		args = append(args, "primary_key=True")
	}
	if c.AutoIncrement {
		args = append(args, "autoincrement=True")
	}
	if c.Nullable != nil && !*c.Nullable {
		args = append(args, "nullable=False")
	}
	if c.Unique {
		args = append(args, "unique=True")
	}
	if c.Default != nil {
		if s, ok := c.Default.V.(string); ok && cfg.ServerDefault(s) {
			imp.funcDefault = true
			args = append(args, "server_default="+s)
		} else {
			args = append(args, "default="+pyLiteral(c.Default.V))
		}
	}
	if c.Index {
		args = append(args, "index=True")
	}
	if c.Comment != nil {
		args = append(args, "comment="+pyRepr(*c.Comment))
	}
	if len(args) > 0 {
		return fmt.Sprintf("    %s = Column(%s, %s)", c.Name, typeExpr, strings.Join(args, ", "))
	}
	return fmt.Sprintf("    %s = Column(%s)", c.Name, typeExpr)
}

// pyLiteral renders a scalar as a Python literal: strings become quoted
// string literals, everything else uses its plain textual form.
func pyLiteral(v any) string {
	switch v := v.(type) {
	case string:
		return pyRepr(v)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case nil:
		return "None"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// pyRepr renders a string the way Python's repr does: single-quoted unless
// the value contains a single quote and no double quote, with backslash,
// quote and control-character escapes. Reading the literal back yields the
// identical string.
func pyRepr(s string) string {
	quote := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		quote = '"'
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
