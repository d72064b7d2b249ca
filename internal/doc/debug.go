package doc

import (
	"strconv"
	"strings"
)

// Debug renders d as the builder calls that would construct it. Nested
// concatenations are flattened, empty strings are dropped and the
// break-parent half of HardLine and LiteralLine is folded into the line.
// Breaks added by propagation are not shown.
func Debug(d Doc) (string, error) {
	if err := Traverse(d, nil, nil, true); err != nil {
		return "", err
	}
	var b strings.Builder
	writeDebug(&b, flattenDebug(d), nil, 0)
	return b.String(), nil
}

func flattenDebug(d Doc) Doc {
	switch d := d.(type) {
	case nil:
		return Text("")
	case Concat:
		var out Concat
		for _, p := range d {
			if nested, ok := p.(Concat); ok {
				if flat, ok := flattenDebug(nested).(Concat); ok {
					out = append(out, flat...)
				}
				continue
			}
			if f := flattenDebug(p); !isEmpty(f) {
				out = append(out, f)
			}
		}
		return out
	case *IfBreakDoc:
		return &IfBreakDoc{BreakContents: flattenDebug(d.BreakContents), FlatContents: flattenDebug(d.FlatContents), GroupID: d.GroupID}
	case *GroupDoc:
		g := &GroupDoc{Contents: flattenDebug(d.Contents), Break: d.Break, ID: d.ID}
		for _, s := range d.ExpandedStates {
			g.ExpandedStates = append(g.ExpandedStates, flattenDebug(s))
		}
		return g
	case *FillDoc:
		parts := make([]Doc, len(d.Parts))
		for i, p := range d.Parts {
			parts[i] = flattenDebug(p)
		}
		return &FillDoc{Parts: parts}
	case *IndentDoc:
		return &IndentDoc{Contents: flattenDebug(d.Contents)}
	case *AlignDoc:
		return &AlignDoc{Type: d.Type, N: d.N, S: d.S, Contents: flattenDebug(d.Contents)}
	case *IndentIfBreakDoc:
		return &IndentIfBreakDoc{Contents: flattenDebug(d.Contents), GroupID: d.GroupID, Negate: d.Negate}
	case *LineSuffixDoc:
		return &LineSuffixDoc{Contents: flattenDebug(d.Contents)}
	case *LabelDoc:
		return &LabelDoc{Label: d.Label, Contents: flattenDebug(d.Contents)}
	}
	return d
}

// writeDebug prints d; parent and index locate it among its siblings so a
// line can see the break-parent after it.
func writeDebug(b *strings.Builder, d Doc, parent Concat, index int) {
	switch d := d.(type) {
	case Text:
		b.WriteString("Text(" + strconv.Quote(string(d)) + ")")
	case Concat:
		var printed []string
		for i, p := range d {
			var sb strings.Builder
			writeDebug(&sb, p, d, i)
			if sb.Len() > 0 {
				printed = append(printed, sb.String())
			}
		}
		if len(printed) == 1 {
			b.WriteString(printed[0])
			return
		}
		b.WriteString("Concat{" + strings.Join(printed, ", ") + "}")
	case LineDoc:
		withBreakParent := false
		if parent != nil && index+1 < len(parent) {
			_, withBreakParent = parent[index+1].(BreakParentDoc)
		}
		switch {
		case d.Literal && withBreakParent:
			b.WriteString("LiteralLine")
		case d.Literal:
			b.WriteString("LiteralLineWithoutBreakParent")
		case d.Hard && withBreakParent:
			b.WriteString("HardLine")
		case d.Hard:
			b.WriteString("HardLineWithoutBreakParent")
		case d.Soft:
			b.WriteString("SoftLine")
		default:
			b.WriteString("Line")
		}
	case BreakParentDoc:
		if parent != nil && index > 0 {
			if l, ok := parent[index-1].(LineDoc); ok && l.Hard {
				return
			}
		}
		b.WriteString("BreakParent")
	case TrimDoc:
		b.WriteString("Trim")
	case CursorDoc:
		b.WriteString("Cursor")
	case LineSuffixBoundaryDoc:
		b.WriteString("LineSuffixBoundary")
	case *IndentDoc:
		b.WriteString("Indent(")
		writeDebug(b, d.Contents, nil, 0)
		b.WriteString(")")
	case *AlignDoc:
		switch d.Type {
		case AlignDedentToRoot:
			b.WriteString("DedentToRoot(")
		case AlignDedent:
			b.WriteString("Dedent(")
		case AlignMarkRoot:
			b.WriteString("MarkAsRoot(")
		case AlignPrefix:
			b.WriteString("AlignString(" + strconv.Quote(d.S) + ", ")
		default:
			b.WriteString("Align(" + strconv.Itoa(d.N) + ", ")
		}
		writeDebug(b, d.Contents, nil, 0)
		b.WriteString(")")
	case *IfBreakDoc:
		if d.GroupID != "" {
			b.WriteString("IfBreakFor(" + strconv.Quote(string(d.GroupID)) + ", ")
		} else {
			b.WriteString("IfBreak(")
		}
		writeDebug(b, d.BreakContents, nil, 0)
		b.WriteString(", ")
		writeDebug(b, d.FlatContents, nil, 0)
		b.WriteString(")")
	case *IndentIfBreakDoc:
		b.WriteString("IndentIfBreak(" + strconv.Quote(string(d.GroupID)) + ", ")
		writeDebug(b, d.Contents, nil, 0)
		b.WriteString(", " + strconv.FormatBool(d.Negate) + ")")
	case *GroupDoc:
		var opts string
		if d.Break {
			opts += ", ShouldBreak(true)"
		}
		if d.ID != "" {
			opts += ", WithID(" + strconv.Quote(string(d.ID)) + ")"
		}
		if len(d.ExpandedStates) > 0 {
			b.WriteString("ConditionalGroup([]Doc{")
			for i, s := range d.ExpandedStates {
				if i > 0 {
					b.WriteString(", ")
				}
				writeDebug(b, s, nil, 0)
			}
			b.WriteString("}" + opts + ")")
			return
		}
		b.WriteString("Group(")
		writeDebug(b, d.Contents, nil, 0)
		b.WriteString(opts + ")")
	case *FillDoc:
		b.WriteString("Fill(")
		for i, p := range d.Parts {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDebug(b, p, d.Parts, i)
		}
		b.WriteString(")")
	case *LineSuffixDoc:
		b.WriteString("LineSuffix(")
		writeDebug(b, d.Contents, nil, 0)
		b.WriteString(")")
	case *LabelDoc:
		b.WriteString("Label(" + strconv.Quote(d.Label) + ", ")
		writeDebug(b, d.Contents, nil, 0)
		b.WriteString(")")
	}
}
