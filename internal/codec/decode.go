package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"docprint/internal/doc"
)

// DecodeOptions controls Decode.
type DecodeOptions struct {
	// Validate checks the document against the doc schema before building.
	Validate bool
	// Query is a jq expression selecting the doc inside a larger document.
	Query string
	// NormalizeText converts every text node to Unicode NFC.
	NormalizeText bool
}

// Decode parses data in format f into a doc tree.
func Decode(data []byte, f Format, opts DecodeOptions) (doc.Doc, error) {
	return DecodeContext(context.Background(), data, f, opts)
}

// DecodeContext is Decode with a context bounding the jq query.
func DecodeContext(ctx context.Context, data []byte, f Format, opts DecodeOptions) (doc.Doc, error) {
	v, err := DecodeValue(data, f)
	if err != nil {
		return nil, err
	}
	if opts.Query != "" {
		selected, err := Query(ctx, v, opts.Query)
		if err != nil {
			return nil, err
		}
		if v, err = toJSONValue(selected); err != nil {
			return nil, fmt.Errorf("query result: %w", err)
		}
	}
	if opts.Validate {
		if err := Validate(v); err != nil {
			return nil, err
		}
	}
	b := builder{normalize: opts.NormalizeText}
	return b.build(v, "")
}

// DecodeValue parses data in format f into the generic JSON value model:
// map[string]any, []any, string, json.Number, bool and nil.
func DecodeValue(data []byte, f Format) (any, error) {
	var raw any
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return raw, nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatMsgPack:
		if err := msgpack.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	v, err := toJSONValue(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	return v, nil
}

// toJSONValue round-trips v through JSON so that every format ends up in
// the same value model, numbers as json.Number.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}

type builder struct {
	normalize bool
}

func (b builder) build(v any, ptr string) (doc.Doc, error) {
	switch val := v.(type) {
	case string:
		if b.normalize {
			val = norm.NFC.String(val)
		}
		return doc.Text(val), nil
	case []any:
		parts, err := b.buildList(val, ptr)
		if err != nil {
			return nil, err
		}
		return doc.Concat(parts), nil
	case map[string]any:
		return b.buildNode(val, ptr)
	default:
		return nil, at(ptr, &doc.InvalidDocError{Value: val})
	}
}

func (b builder) buildList(items []any, ptr string) ([]doc.Doc, error) {
	out := make([]doc.Doc, len(items))
	for i, item := range items {
		d, err := b.build(item, ptr+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func (b builder) buildNode(obj map[string]any, ptr string) (doc.Doc, error) {
	tag, ok := obj["type"].(string)
	if !ok {
		return nil, at(ptr, &doc.InvalidDocError{Value: obj})
	}
	kind, ok := doc.ParseKind(tag)
	if !ok || kind == doc.KindString || kind == doc.KindArray {
		return nil, at(ptr, &doc.InvalidDocError{Type: tag})
	}
	n := node{b: b, obj: obj, ptr: ptr}

	switch kind {
	case doc.KindCursor:
		return doc.Cursor, nil
	case doc.KindTrim:
		return doc.Trim, nil
	case doc.KindBreakParent:
		return doc.BreakParent, nil
	case doc.KindLineSuffixBoundary:
		return doc.LineSuffixBoundary, nil

	case doc.KindLine:
		soft, err := n.boolean("soft")
		if err != nil {
			return nil, err
		}
		hard, err := n.boolean("hard")
		if err != nil {
			return nil, err
		}
		literal, err := n.boolean("literal")
		if err != nil {
			return nil, err
		}
		return doc.LineDoc{Soft: soft && !hard && !literal, Hard: hard || literal, Literal: literal}, nil

	case doc.KindIndent:
		contents, err := n.child("contents")
		if err != nil {
			return nil, err
		}
		return doc.Indent(contents), nil

	case doc.KindLineSuffix:
		contents, err := n.child("contents")
		if err != nil {
			return nil, err
		}
		return doc.LineSuffix(contents), nil

	case doc.KindLabel:
		label, err := n.str("label")
		if err != nil {
			return nil, err
		}
		contents, err := n.child("contents")
		if err != nil {
			return nil, err
		}
		return &doc.LabelDoc{Label: label, Contents: contents}, nil

	case doc.KindAlign:
		return n.align()

	case doc.KindGroup:
		return n.group()

	case doc.KindFill:
		parts, err := n.list("parts")
		if err != nil {
			return nil, err
		}
		return doc.Fill(parts...), nil

	case doc.KindIfBreak:
		breakContents, err := n.optionalChild("breakContents")
		if err != nil {
			return nil, err
		}
		flatContents, err := n.optionalChild("flatContents")
		if err != nil {
			return nil, err
		}
		id, err := n.str("groupId")
		if err != nil {
			return nil, err
		}
		return doc.IfBreakFor(doc.GroupID(id), breakContents, flatContents), nil

	case doc.KindIndentIfBreak:
		contents, err := n.child("contents")
		if err != nil {
			return nil, err
		}
		id, err := n.str("groupId")
		if err != nil {
			return nil, err
		}
		negate, err := n.boolean("negate")
		if err != nil {
			return nil, err
		}
		return doc.IndentIfBreak(doc.GroupID(id), contents, negate), nil
	}
	return nil, at(ptr, &doc.InvalidDocError{Type: tag})
}

// node reads the fields of one decoded object.
type node struct {
	b   builder
	obj map[string]any
	ptr string
}

func (n node) fieldErr(name, want string, got any) error {
	return fmt.Errorf("%w: %s/%s: expected %s, got %T", doc.ErrInvalidDoc, n.ptr, name, want, got)
}

func (n node) child(name string) (doc.Doc, error) {
	v, ok := n.obj[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s: %s node is missing %q", doc.ErrInvalidDoc, n.ptr, n.obj["type"], name)
	}
	return n.b.build(v, n.ptr+"/"+name)
}

func (n node) optionalChild(name string) (doc.Doc, error) {
	v, ok := n.obj[name]
	if !ok || v == nil {
		return nil, nil
	}
	return n.b.build(v, n.ptr+"/"+name)
}

func (n node) list(name string) ([]doc.Doc, error) {
	v, ok := n.obj[name]
	if !ok {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, n.fieldErr(name, "array", v)
	}
	return n.b.buildList(items, n.ptr+"/"+name)
}

func (n node) boolean(name string) (bool, error) {
	v, ok := n.obj[name]
	if !ok || v == nil {
		return false, nil
	}
	bv, ok := v.(bool)
	if !ok {
		return false, n.fieldErr(name, "boolean", v)
	}
	return bv, nil
}

func (n node) str(name string) (string, error) {
	v, ok := n.obj[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", n.fieldErr(name, "string", v)
	}
	return s, nil
}

func (n node) align() (doc.Doc, error) {
	contents, err := n.child("contents")
	if err != nil {
		return nil, err
	}
	switch v := n.obj["n"].(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, n.fieldErr("n", "integer", v)
		}
		width, err := safecast.Conv[int](i)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/n: %w", doc.ErrInvalidDoc, n.ptr, err)
		}
		return doc.Align(width, contents), nil
	case string:
		return doc.AlignString(v, contents), nil
	case map[string]any:
		switch v["type"] {
		case "root":
			return doc.MarkAsRoot(contents), nil
		case "dedent-to-root":
			return doc.DedentToRoot(contents), nil
		}
		return nil, fmt.Errorf("%w: %s/n: unknown alignment type %v", doc.ErrInvalidDoc, n.ptr, v["type"])
	default:
		return nil, n.fieldErr("n", "integer, string or alignment object", v)
	}
}

func (n node) group() (doc.Doc, error) {
	var opts []doc.GroupOption
	switch v := n.obj["break"].(type) {
	case nil:
	case bool:
		opts = append(opts, doc.ShouldBreak(v))
	case string:
		// Written by a printer that had already propagated breaks; the
		// flag is recomputed on every print.
		if v != "propagated" {
			return nil, n.fieldErr("break", `boolean or "propagated"`, v)
		}
	default:
		return nil, n.fieldErr("break", `boolean or "propagated"`, v)
	}

	id, err := n.str("id")
	if err != nil {
		return nil, err
	}
	if id != "" {
		opts = append(opts, doc.WithID(doc.GroupID(id)))
	}

	states, err := n.list("expandedStates")
	if err != nil {
		return nil, err
	}
	if len(states) > 0 {
		g := doc.ConditionalGroup(states, opts...)
		if _, ok := n.obj["contents"]; ok {
			contents, err := n.child("contents")
			if err != nil {
				return nil, err
			}
			if !sameShape(contents, states[0]) {
				return nil, fmt.Errorf("%w: %s: group contents differ from its first expanded state", doc.ErrInvalidDoc, n.ptr)
			}
		}
		return g, nil
	}

	contents, err := n.child("contents")
	if err != nil {
		return nil, err
	}
	return doc.Group(contents, opts...), nil
}

// sameShape compares two decoded trees by their debug rendering.
func sameShape(a, b doc.Doc) bool {
	da, errA := doc.Debug(a)
	db, errB := doc.Debug(b)
	return errA == nil && errB == nil && da == db
}

func at(ptr string, err error) error {
	if ptr == "" {
		return err
	}
	return fmt.Errorf("%s: %w", strings.TrimSuffix(ptr, "/"), err)
}
