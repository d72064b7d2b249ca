// Package codec reads and writes doc trees in serialized form.
//
// The wire shape is the same for every format: a string is text, an array
// is a concatenation and an object carries a "type" tag plus the fields of
// that kind. Decoding goes through one generic JSON value so that schema
// validation and jq queries see the same data whatever the input format.
package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a serialization format.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgPack Format = "msgpack"
)

var (
	// ErrUnknownFormat is returned for formats and extensions codec does
	// not handle.
	ErrUnknownFormat = errors.New("unknown doc format")
	// ErrSchema is matched by every *SchemaError.
	ErrSchema = errors.New("doc does not match schema")
)

var extensions = map[string]Format{
	".json":    FormatJSON,
	".yaml":    FormatYAML,
	".yml":     FormatYAML,
	".msgpack": FormatMsgPack,
	".mpk":     FormatMsgPack,
}

// ParseFormat accepts json, yaml (or yml) and msgpack.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatMsgPack:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (expected json|yaml|msgpack)", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: extension %q of %s", ErrUnknownFormat, ext, path)
}

// IsDocFile reports whether path has an extension FormatFromPath accepts.
func IsDocFile(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
