package codec

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const docSchemaURL = "https://docprint.dev/schemas/doc.json"

const docSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://docprint.dev/schemas/doc.json",
  "$ref": "#/$defs/doc",
  "$defs": {
    "doc": {
      "anyOf": [
        {"type": "string"},
        {"type": "array", "items": {"$ref": "#/$defs/doc"}},
        {"$ref": "#/$defs/node"}
      ]
    },
    "groupId": {"type": "string", "minLength": 1},
    "node": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {
          "enum": ["cursor", "indent", "align", "trim", "group", "fill", "if-break",
                   "indent-if-break", "line-suffix", "line-suffix-boundary", "line",
                   "label", "break-parent"]
        },
        "contents": {"$ref": "#/$defs/doc"},
        "breakContents": {"$ref": "#/$defs/doc"},
        "flatContents": {"$ref": "#/$defs/doc"},
        "parts": {"type": "array", "items": {"$ref": "#/$defs/doc"}},
        "expandedStates": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/doc"}},
        "break": {"anyOf": [{"type": "boolean"}, {"const": "propagated"}]},
        "id": {"$ref": "#/$defs/groupId"},
        "groupId": {"$ref": "#/$defs/groupId"},
        "negate": {"type": "boolean"},
        "soft": {"type": "boolean"},
        "hard": {"type": "boolean"},
        "literal": {"type": "boolean"},
        "label": {"type": "string"},
        "n": {
          "anyOf": [
            {"type": "integer"},
            {"type": "string"},
            {
              "type": "object",
              "required": ["type"],
              "properties": {"type": {"enum": ["root", "dedent-to-root"]}}
            }
          ]
        }
      },
      "allOf": [
        {
          "if": {"properties": {"type": {"enum": ["indent", "line-suffix", "label", "indent-if-break"]}}},
          "then": {"required": ["contents"]}
        },
        {
          "if": {"properties": {"type": {"const": "align"}}},
          "then": {"required": ["contents", "n"]}
        },
        {
          "if": {"properties": {"type": {"const": "group"}}},
          "then": {"anyOf": [{"required": ["contents"]}, {"required": ["expandedStates"]}]}
        },
        {
          "if": {"properties": {"type": {"const": "fill"}}},
          "then": {"required": ["parts"]}
        },
        {
          "if": {"properties": {"type": {"const": "indent-if-break"}}},
          "then": {"required": ["groupId"]}
        },
        {
          "if": {"properties": {"type": {"const": "label"}}},
          "then": {"required": ["label"]}
        }
      ]
    }
  }
}`

// SchemaError lists every schema violation found in a decoded document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	if len(e.Violations) == 1 {
		return "schema: " + e.Violations[0]
	}
	return fmt.Sprintf("schema: %d violations: %s", len(e.Violations), strings.Join(e.Violations, "; "))
}

// Is makes errors.Is(err, ErrSchema) hold.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

var docSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(docSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal doc schema: %w", err)
	}
	if err := c.AddResource(docSchemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("add doc schema resource: %w", err)
	}
	s, err := c.Compile(docSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile doc schema: %w", err)
	}
	return s, nil
})

// Validate checks a generic JSON value against the doc schema. v must come
// from the JSON value model (numbers as json.Number).
func Validate(v any) error {
	s, err := docSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(v); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		violations := collectViolations(verr)
		if len(violations) == 0 {
			violations = []string{verr.Error()}
		}
		return &SchemaError{Violations: violations}
	}
	return nil
}

func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		return []string{fmt.Sprintf("/%s: %s", strings.Join(verr.InstanceLocation, "/"), verr.Error())}
	}
	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
