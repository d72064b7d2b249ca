package doc

import "strings"

// WillBreak reports whether d contains an authored broken group, a hard
// line or a break-parent marker.
func WillBreak(d Doc) (bool, error) {
	return Find(d, func(d Doc) (bool, bool) {
		switch d := d.(type) {
		case *GroupDoc:
			if d.Break {
				return true, true
			}
		case LineDoc:
			if d.Hard {
				return true, true
			}
		case BreakParentDoc:
			return true, true
		}
		return false, false
	}, false)
}

// CanBreak reports whether d contains any line.
func CanBreak(d Doc) (bool, error) {
	return Find(d, func(d Doc) (bool, bool) {
		if _, ok := d.(LineDoc); ok {
			return true, true
		}
		return false, false
	}, false)
}

// RemoveLines flattens d: soft lines vanish, plain lines become spaces and
// if-break nodes keep their flat branch. Hard lines are left alone, so
// applying it twice equals applying it once.
func RemoveLines(d Doc) (Doc, error) {
	return Map(d, func(d Doc) Doc {
		switch d := d.(type) {
		case LineDoc:
			if d.Hard {
				return d
			}
			if d.Soft {
				return Text("")
			}
			return Text(" ")
		case *IfBreakDoc:
			if d.FlatContents == nil {
				return Text("")
			}
			return d.FlatContents
		}
		return d
	})
}

// StripTrailingHardline removes hard lines and trailing newlines at the very
// end of d.
func StripTrailingHardline(d Doc) (Doc, error) {
	switch d := d.(type) {
	case *IndentDoc:
		contents, err := StripTrailingHardline(d.Contents)
		return &IndentDoc{Contents: contents}, err
	case *IndentIfBreakDoc:
		contents, err := StripTrailingHardline(d.Contents)
		return &IndentIfBreakDoc{Contents: contents, GroupID: d.GroupID, Negate: d.Negate}, err
	case *GroupDoc:
		contents, err := StripTrailingHardline(d.Contents)
		return &GroupDoc{Contents: contents, Break: d.Break, ExpandedStates: d.ExpandedStates, ID: d.ID}, err
	case *LineSuffixDoc:
		contents, err := StripTrailingHardline(d.Contents)
		return &LineSuffixDoc{Contents: contents}, err
	case *LabelDoc:
		contents, err := StripTrailingHardline(d.Contents)
		return &LabelDoc{Label: d.Label, Contents: contents}, err
	case *IfBreakDoc:
		breakContents, err := stripOptional(d.BreakContents)
		if err != nil {
			return nil, err
		}
		flatContents, err := stripOptional(d.FlatContents)
		return &IfBreakDoc{BreakContents: breakContents, FlatContents: flatContents, GroupID: d.GroupID}, err
	case *FillDoc:
		parts, err := stripTrailingHardlineFromParts(d.Parts)
		return &FillDoc{Parts: parts}, err
	case Concat:
		parts, err := stripTrailingHardlineFromParts(d)
		return Concat(parts), err
	case Text:
		return Text(strings.TrimRight(string(d), "\r\n")), nil
	case *AlignDoc, CursorDoc, TrimDoc, LineSuffixBoundaryDoc, LineDoc, BreakParentDoc:
		return d, nil
	default:
		return nil, invalid(d)
	}
}

func stripOptional(d Doc) (Doc, error) {
	if d == nil {
		return nil, nil
	}
	return StripTrailingHardline(d)
}

func stripTrailingHardlineFromParts(parts []Doc) ([]Doc, error) {
	out := append([]Doc(nil), parts...)
	for len(out) >= 2 {
		_, isLine := out[len(out)-2].(LineDoc)
		_, isBreakParent := out[len(out)-1].(BreakParentDoc)
		if !isLine || !isBreakParent {
			break
		}
		out = out[:len(out)-2]
	}
	if len(out) > 0 {
		last, err := StripTrailingHardline(out[len(out)-1])
		if err != nil {
			return nil, err
		}
		out[len(out)-1] = last
	}
	return out, nil
}

// CleanDoc simplifies d without changing its output: adjacent strings
// merge, empty parts and empty wrappers drop, nested concatenations flatten
// and a group directly wrapping an identical group collapses.
func CleanDoc(d Doc) (Doc, error) {
	return Map(d, cleanNode)
}

func cleanNode(d Doc) Doc {
	switch d := d.(type) {
	case *FillDoc:
		for _, p := range d.Parts {
			if !isEmpty(p) {
				return d
			}
		}
		return Text("")
	case *GroupDoc:
		if isEmpty(d.Contents) && d.ID == "" && !d.Break && len(d.ExpandedStates) == 0 {
			return Text("")
		}
		if inner, ok := d.Contents.(*GroupDoc); ok && inner.ID == d.ID && inner.Break == d.Break &&
			len(inner.ExpandedStates) == 0 && len(d.ExpandedStates) == 0 {
			return inner
		}
	case *AlignDoc:
		if isEmpty(d.Contents) {
			return Text("")
		}
	case *IndentDoc:
		if isEmpty(d.Contents) {
			return Text("")
		}
	case *IndentIfBreakDoc:
		if isEmpty(d.Contents) {
			return Text("")
		}
	case *LineSuffixDoc:
		if isEmpty(d.Contents) {
			return Text("")
		}
	case *IfBreakDoc:
		if isEmpty(d.FlatContents) && isEmpty(d.BreakContents) {
			return Text("")
		}
	case Concat:
		var parts Concat
		for _, part := range d {
			if isEmpty(part) {
				continue
			}
			pieces := Concat{part}
			if nested, ok := part.(Concat); ok {
				pieces = nested
			}
			for _, piece := range pieces {
				if s, ok := piece.(Text); ok && len(parts) > 0 {
					if prev, ok := parts[len(parts)-1].(Text); ok {
						parts[len(parts)-1] = prev + s
						continue
					}
				}
				parts = append(parts, piece)
			}
		}
		switch len(parts) {
		case 0:
			return Text("")
		case 1:
			return parts[0]
		}
		return parts
	}
	return d
}

func isEmpty(d Doc) bool {
	if d == nil {
		return true
	}
	s, ok := d.(Text)
	return ok && s == ""
}

// ReplaceEndOfLine splits every string on "\n" and joins the pieces with
// replacement, which defaults to LiteralLine when nil.
func ReplaceEndOfLine(d Doc, replacement Doc) (Doc, error) {
	if replacement == nil {
		replacement = LiteralLine
	}
	return Map(d, func(d Doc) Doc {
		s, ok := d.(Text)
		if !ok || !strings.Contains(string(s), "\n") {
			return d
		}
		lines := strings.Split(string(s), "\n")
		docs := make([]Doc, len(lines))
		for i, l := range lines {
			docs[i] = Text(l)
		}
		return Join(replacement, docs)
	})
}

// InheritLabel applies fn to the contents of a labelled doc and keeps the
// label; other docs are passed to fn directly.
func InheritLabel(d Doc, fn func(Doc) Doc) Doc {
	if l, ok := d.(*LabelDoc); ok {
		return &LabelDoc{Label: l.Label, Contents: fn(l.Contents)}
	}
	return fn(d)
}
