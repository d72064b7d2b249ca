// Package doc defines the document model consumed by the layout printer.
//
// A document is a tree of layout commands: literal text, concatenation,
// indentation and alignment, groups that are printed either flat or broken,
// fills that wrap greedily, conditional content keyed on a group's resolved
// mode, deferred line suffixes and a handful of markers. Every node kind has
// its own Go type; [KindOf] is the exhaustive discriminator used by every
// pass before dispatching on a node.
//
// Trees are never mutated by this package or by the printer. Break
// propagation produces a side table ([Breaks]) keyed by group identity, so a
// sub-tree shared between several parents (as conditional groups do with
// their first state) is safe to reuse.
package doc

import (
	"fmt"
	"sync/atomic"
)

// Kind is the tag of a doc node.
type Kind uint8

const (
	// KindInvalid is returned by KindOf for values that are not docs.
	KindInvalid Kind = iota
	KindString
	KindArray
	KindCursor
	KindIndent
	KindAlign
	KindTrim
	KindGroup
	KindFill
	KindIfBreak
	KindIndentIfBreak
	KindLineSuffix
	KindLineSuffixBoundary
	KindLine
	KindLabel
	KindBreakParent
)

var kindNames = [...]string{
	KindInvalid:            "invalid",
	KindString:             "string",
	KindArray:              "array",
	KindCursor:             "cursor",
	KindIndent:             "indent",
	KindAlign:              "align",
	KindTrim:               "trim",
	KindGroup:              "group",
	KindFill:               "fill",
	KindIfBreak:            "if-break",
	KindIndentIfBreak:      "indent-if-break",
	KindLineSuffix:         "line-suffix",
	KindLineSuffixBoundary: "line-suffix-boundary",
	KindLine:               "line",
	KindLabel:              "label",
	KindBreakParent:        "break-parent",
}

// String returns the wire tag of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ObjectKinds lists the kinds that are serialized as objects with a "type"
// field, in tag order.
func ObjectKinds() []Kind {
	return []Kind{
		KindCursor, KindIndent, KindAlign, KindTrim, KindGroup, KindFill,
		KindIfBreak, KindIndentIfBreak, KindLineSuffix, KindLineSuffixBoundary,
		KindLine, KindLabel, KindBreakParent,
	}
}

// ParseKind maps a wire tag back to its kind.
func ParseKind(tag string) (Kind, bool) {
	for k := KindString; k <= KindBreakParent; k++ {
		if kindNames[k] == tag {
			return k, true
		}
	}
	return KindInvalid, false
}

// Doc is a node of the document tree.
type Doc interface {
	Kind() Kind
}

// KindOf classifies d. Only the node types declared in this package are
// recognized; nil and foreign implementations report false.
func KindOf(d Doc) (Kind, bool) {
	switch d.(type) {
	case Text:
		return KindString, true
	case Concat:
		return KindArray, true
	case CursorDoc:
		return KindCursor, true
	case *IndentDoc:
		return KindIndent, true
	case *AlignDoc:
		return KindAlign, true
	case TrimDoc:
		return KindTrim, true
	case *GroupDoc:
		return KindGroup, true
	case *FillDoc:
		return KindFill, true
	case *IfBreakDoc:
		return KindIfBreak, true
	case *IndentIfBreakDoc:
		return KindIndentIfBreak, true
	case *LineSuffixDoc:
		return KindLineSuffix, true
	case LineSuffixBoundaryDoc:
		return KindLineSuffixBoundary, true
	case LineDoc:
		return KindLine, true
	case *LabelDoc:
		return KindLabel, true
	case BreakParentDoc:
		return KindBreakParent, true
	default:
		return KindInvalid, false
	}
}

// GroupID names a group so that if-break and indent-if-break nodes elsewhere
// in the tree can query its resolved mode. The zero value means no id.
type GroupID string

var groupSeq atomic.Uint64

// NewGroupID returns an id that no other call in this process returns.
func NewGroupID(name string) GroupID {
	if name == "" {
		name = "group"
	}
	return GroupID(fmt.Sprintf("%s#%d", name, groupSeq.Add(1)))
}

// Text is literal output.
type Text string

// Concat prints its parts one after another.
type Concat []Doc

// IndentDoc increases the indentation of line breaks inside Contents by one
// level.
type IndentDoc struct {
	Contents Doc
}

// AlignType selects how an AlignDoc changes the indentation.
type AlignType uint8

const (
	// AlignSpaces adds N columns of alignment.
	AlignSpaces AlignType = iota
	// AlignPrefix appends the literal S to the indentation.
	AlignPrefix
	// AlignDedent drops the innermost indentation part.
	AlignDedent
	// AlignDedentToRoot returns to the indentation marked as root, or to
	// column zero when no root is marked.
	AlignDedentToRoot
	// AlignMarkRoot remembers the current indentation as the root used by
	// literal lines and AlignDedentToRoot.
	AlignMarkRoot
)

// AlignDoc adjusts the indentation of line breaks inside Contents.
type AlignDoc struct {
	Type     AlignType
	N        int
	S        string
	Contents Doc
}

// GroupDoc is printed flat when it fits in the remaining width and broken
// otherwise. With ExpandedStates it is a conditional group: the states are
// tried in order and Contents is the first of them.
type GroupDoc struct {
	Contents       Doc
	Break          bool
	ExpandedStates []Doc
	ID             GroupID
}

// FillDoc alternates content and separator parts, breaking a separator only
// when the content after it does not fit.
type FillDoc struct {
	Parts []Doc
}

// IfBreakDoc prints BreakContents when the group (the enclosing one, or the
// one named by GroupID) is broken and FlatContents otherwise.
type IfBreakDoc struct {
	BreakContents Doc
	FlatContents  Doc
	GroupID       GroupID
}

// IndentIfBreakDoc indents Contents when the group named by GroupID is
// broken. Negate inverts the condition.
type IndentIfBreakDoc struct {
	Contents Doc
	GroupID  GroupID
	Negate   bool
}

// LineDoc is a possible line break. A plain line prints as a space when
// flat, a soft line prints nothing when flat, a hard line always breaks and a
// literal line breaks without indentation.
type LineDoc struct {
	Soft    bool
	Hard    bool
	Literal bool
}

// LineSuffixDoc defers Contents until just before the next line break.
type LineSuffixDoc struct {
	Contents Doc
}

// LineSuffixBoundaryDoc forces pending line suffixes out with a hard line.
type LineSuffixBoundaryDoc struct{}

// BreakParentDoc forces every enclosing group to break.
type BreakParentDoc struct{}

// TrimDoc removes trailing spaces and tabs already printed on the line.
type TrimDoc struct{}

// LabelDoc attaches a label to Contents without affecting output.
type LabelDoc struct {
	Label    string
	Contents Doc
}

// CursorDoc marks a position reported back in the print result.
type CursorDoc struct{}

func (Text) Kind() Kind                  { return KindString }
func (Concat) Kind() Kind                { return KindArray }
func (*IndentDoc) Kind() Kind            { return KindIndent }
func (*AlignDoc) Kind() Kind             { return KindAlign }
func (*GroupDoc) Kind() Kind             { return KindGroup }
func (*FillDoc) Kind() Kind              { return KindFill }
func (*IfBreakDoc) Kind() Kind           { return KindIfBreak }
func (*IndentIfBreakDoc) Kind() Kind     { return KindIndentIfBreak }
func (LineDoc) Kind() Kind               { return KindLine }
func (*LineSuffixDoc) Kind() Kind        { return KindLineSuffix }
func (LineSuffixBoundaryDoc) Kind() Kind { return KindLineSuffixBoundary }
func (BreakParentDoc) Kind() Kind        { return KindBreakParent }
func (TrimDoc) Kind() Kind               { return KindTrim }
func (*LabelDoc) Kind() Kind             { return KindLabel }
func (CursorDoc) Kind() Kind             { return KindCursor }
