package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"docprint/internal/doc"
)

// Encode serializes d in format f. Groups are written with their authored
// break flag only; conditional groups are written with their expanded
// states and no separate contents.
func Encode(d doc.Doc, f Format) ([]byte, error) {
	v, err := EncodeValue(d)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatMsgPack:
		data, err := msgpack.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode msgpack: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// EncodeValue converts d into the generic value model used on the wire.
func EncodeValue(d doc.Doc) (any, error) {
	switch n := d.(type) {
	case doc.Text:
		return string(n), nil
	case doc.Concat:
		return encodeList(n)
	case doc.CursorDoc, doc.TrimDoc, doc.BreakParentDoc, doc.LineSuffixBoundaryDoc:
		k, _ := doc.KindOf(n)
		return map[string]any{"type": k.String()}, nil

	case doc.LineDoc:
		obj := map[string]any{"type": "line"}
		if n.Soft {
			obj["soft"] = true
		}
		if n.Hard {
			obj["hard"] = true
		}
		if n.Literal {
			obj["literal"] = true
		}
		return obj, nil

	case *doc.IndentDoc:
		return withContents("indent", n.Contents, nil)

	case *doc.LineSuffixDoc:
		return withContents("line-suffix", n.Contents, nil)

	case *doc.LabelDoc:
		return withContents("label", n.Contents, map[string]any{"label": n.Label})

	case *doc.AlignDoc:
		var align any
		switch n.Type {
		case doc.AlignPrefix:
			align = n.S
		case doc.AlignDedent:
			align = -1
		case doc.AlignDedentToRoot:
			align = map[string]any{"type": "dedent-to-root"}
		case doc.AlignMarkRoot:
			align = map[string]any{"type": "root"}
		default:
			align = n.N
		}
		return withContents("align", n.Contents, map[string]any{"n": align})

	case *doc.GroupDoc:
		obj := map[string]any{"type": "group"}
		if n.Break {
			obj["break"] = true
		}
		if n.ID != "" {
			obj["id"] = string(n.ID)
		}
		if len(n.ExpandedStates) > 0 {
			states, err := encodeList(n.ExpandedStates)
			if err != nil {
				return nil, err
			}
			obj["expandedStates"] = states
			return obj, nil
		}
		return withContents("group", n.Contents, obj)

	case *doc.FillDoc:
		parts, err := encodeList(n.Parts)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "fill", "parts": parts}, nil

	case *doc.IfBreakDoc:
		obj := map[string]any{"type": "if-break"}
		if n.GroupID != "" {
			obj["groupId"] = string(n.GroupID)
		}
		for name, child := range map[string]doc.Doc{"breakContents": n.BreakContents, "flatContents": n.FlatContents} {
			if child == nil {
				continue
			}
			v, err := EncodeValue(child)
			if err != nil {
				return nil, err
			}
			obj[name] = v
		}
		return obj, nil

	case *doc.IndentIfBreakDoc:
		extra := map[string]any{"groupId": string(n.GroupID)}
		if n.Negate {
			extra["negate"] = true
		}
		return withContents("indent-if-break", n.Contents, extra)

	default:
		return nil, &doc.InvalidDocError{Doc: d}
	}
}

func withContents(tag string, contents doc.Doc, obj map[string]any) (any, error) {
	if obj == nil {
		obj = make(map[string]any, 2)
	}
	obj["type"] = tag
	v, err := EncodeValue(contents)
	if err != nil {
		return nil, err
	}
	obj["contents"] = v
	return obj, nil
}

func encodeList(docs []doc.Doc) ([]any, error) {
	out := make([]any, len(docs))
	for i, d := range docs {
		v, err := EncodeValue(d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
