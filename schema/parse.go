package schema

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/modelgen"
)

// Parse turns schema source text into a yaml.Node tree. No shape validation
// happens here; malformed YAML is reported as a ParseError carrying the
// parser's diagnostic.
func Parse(src []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, modelgen.NewParseError("", err)
	}
	return &doc, nil
}

// ParseFile reads and parses a schema document from disk. A missing file is
// reported as a NotFoundError; syntax failures as a ParseError carrying the
// file path.
func ParseFile(path string) (*yaml.Node, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, modelgen.NewNotFoundErrorWithRef("schema file", path)
		}
		return nil, err
	}
	node, err := Parse(src)
	if err != nil {
		var pe *modelgen.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return node, nil
}

// Load is a convenience that parses and decodes raw schema text in one call.
func Load(src []byte) (*Schema, error) {
	node, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return Decode(node)
}

// LoadFile is a convenience that parses and decodes a schema file in one call.
func LoadFile(path string) (*Schema, error) {
	node, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(node)
}
