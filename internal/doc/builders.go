package doc

// Markers and line variants shared by every tree.
var (
	Line                          Doc = LineDoc{}
	SoftLine                      Doc = LineDoc{Soft: true}
	HardLineWithoutBreakParent    Doc = LineDoc{Hard: true}
	LiteralLineWithoutBreakParent Doc = LineDoc{Hard: true, Literal: true}
	BreakParent                   Doc = BreakParentDoc{}
	LineSuffixBoundary            Doc = LineSuffixBoundaryDoc{}
	Trim                          Doc = TrimDoc{}
	Cursor                        Doc = CursorDoc{}

	// HardLine breaks and forces every enclosing group to break.
	HardLine Doc = Concat{HardLineWithoutBreakParent, BreakParent}
	// LiteralLine breaks without indentation and forces enclosing groups
	// to break.
	LiteralLine Doc = Concat{LiteralLineWithoutBreakParent, BreakParent}
)

// Indent wraps contents in one more level of indentation.
func Indent(contents Doc) *IndentDoc {
	return &IndentDoc{Contents: contents}
}

// Align adds n columns of alignment. A negative n dedents one level.
func Align(n int, contents Doc) *AlignDoc {
	if n < 0 {
		return &AlignDoc{Type: AlignDedent, Contents: contents}
	}
	return &AlignDoc{Type: AlignSpaces, N: n, Contents: contents}
}

// AlignString aligns with a literal prefix such as "// " or "\t".
func AlignString(prefix string, contents Doc) *AlignDoc {
	return &AlignDoc{Type: AlignPrefix, S: prefix, Contents: contents}
}

// Dedent removes the innermost indentation level.
func Dedent(contents Doc) *AlignDoc {
	return &AlignDoc{Type: AlignDedent, Contents: contents}
}

// DedentToRoot returns to the root indentation.
func DedentToRoot(contents Doc) *AlignDoc {
	return &AlignDoc{Type: AlignDedentToRoot, Contents: contents}
}

// MarkAsRoot records the current indentation as root for literal lines.
func MarkAsRoot(contents Doc) *AlignDoc {
	return &AlignDoc{Type: AlignMarkRoot, Contents: contents}
}

// GroupOption configures a group built by Group or ConditionalGroup.
type GroupOption func(*GroupDoc)

// ShouldBreak marks the group as broken regardless of width.
func ShouldBreak(v bool) GroupOption {
	return func(g *GroupDoc) { g.Break = v }
}

// WithID names the group for IfBreakFor and IndentIfBreak lookups.
func WithID(id GroupID) GroupOption {
	return func(g *GroupDoc) { g.ID = id }
}

// Group builds a group around contents.
func Group(contents Doc, opts ...GroupOption) *GroupDoc {
	g := &GroupDoc{Contents: contents}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ConditionalGroup tries each state in order and prints the first one that
// fits, falling back to the last state broken.
func ConditionalGroup(states []Doc, opts ...GroupOption) *GroupDoc {
	var first Doc = Text("")
	if len(states) > 0 {
		first = states[0]
	}
	g := Group(first, opts...)
	g.ExpandedStates = states
	return g
}

// Fill builds a fill from alternating content and separator parts.
func Fill(parts ...Doc) *FillDoc {
	return &FillDoc{Parts: parts}
}

// IfBreak picks between contents based on the enclosing group's mode.
func IfBreak(breakContents, flatContents Doc) *IfBreakDoc {
	return &IfBreakDoc{BreakContents: orEmpty(breakContents), FlatContents: orEmpty(flatContents)}
}

// IfBreakFor picks between contents based on the mode of the group named id.
func IfBreakFor(id GroupID, breakContents, flatContents Doc) *IfBreakDoc {
	d := IfBreak(breakContents, flatContents)
	d.GroupID = id
	return d
}

// IndentIfBreak indents contents when the group named id breaks.
func IndentIfBreak(id GroupID, contents Doc, negate bool) *IndentIfBreakDoc {
	return &IndentIfBreakDoc{Contents: contents, GroupID: id, Negate: negate}
}

// LineSuffix defers contents to the end of the current line.
func LineSuffix(contents Doc) *LineSuffixDoc {
	return &LineSuffixDoc{Contents: contents}
}

// Label attaches label to contents. An empty label returns contents as is.
func Label(label string, contents Doc) Doc {
	if label == "" {
		return contents
	}
	return &LabelDoc{Label: label, Contents: contents}
}

// Join interleaves docs with sep.
func Join(sep Doc, docs []Doc) Concat {
	parts := make(Concat, 0, max(0, 2*len(docs)-1))
	for i, d := range docs {
		if i > 0 {
			parts = append(parts, sep)
		}
		parts = append(parts, d)
	}
	return parts
}

// AddAlignment indents d by size columns as whole indentation levels of
// tabWidth plus the remainder as alignment, then re-anchors it to the root.
func AddAlignment(d Doc, size, tabWidth int) Doc {
	if size <= 0 || tabWidth <= 0 {
		return d
	}
	aligned := d
	for range size / tabWidth {
		aligned = Indent(aligned)
	}
	aligned = Align(size%tabWidth, aligned)
	return DedentToRoot(aligned)
}

func orEmpty(d Doc) Doc {
	if d == nil {
		return Text("")
	}
	return d
}
