package doc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func debugString(t *testing.T, d Doc) string {
	t.Helper()
	s, err := Debug(d)
	if err != nil {
		t.Fatalf("Debug: %v", err)
	}
	return s
}

func TestWillBreakAndCanBreak(t *testing.T) {
	cases := []struct {
		name      string
		doc       Doc
		willBreak bool
		canBreak  bool
	}{
		{"text", Text("a"), false, false},
		{"soft line", Group(Concat{Text("a"), SoftLine}), false, true},
		{"hard line", Concat{Text("a"), HardLine}, true, true},
		{"broken group", Group(Text("a"), ShouldBreak(true)), true, false},
		{"break parent", Concat{BreakParent}, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			willBreak, err := WillBreak(tc.doc)
			if err != nil {
				t.Fatalf("WillBreak: %v", err)
			}
			canBreak, err := CanBreak(tc.doc)
			if err != nil {
				t.Fatalf("CanBreak: %v", err)
			}
			if willBreak != tc.willBreak || canBreak != tc.canBreak {
				t.Fatalf("WillBreak=%v CanBreak=%v, want %v %v", willBreak, canBreak, tc.willBreak, tc.canBreak)
			}
		})
	}
}

func TestRemoveLines(t *testing.T) {
	root := Group(Concat{Text("a"), Line, Text("b"), SoftLine, IfBreak(Text(","), Text("")), HardLine})
	once, err := RemoveLines(root)
	if err != nil {
		t.Fatalf("RemoveLines: %v", err)
	}
	want := `Group(Concat{Text("a"), Text(" "), Text("b"), HardLine})`
	if got := debugString(t, once); got != want {
		t.Fatalf("RemoveLines:\n got %s\nwant %s", got, want)
	}

	twice, err := RemoveLines(once)
	if err != nil {
		t.Fatalf("RemoveLines: %v", err)
	}
	if debugString(t, twice) != debugString(t, once) {
		t.Fatal("RemoveLines must be idempotent")
	}
}

func TestStripTrailingHardline(t *testing.T) {
	root := Concat{
		Text("a"),
		Indent(Concat{Text("b\n\n"), HardLineWithoutBreakParent, BreakParent}),
		HardLineWithoutBreakParent, BreakParent,
	}
	got, err := StripTrailingHardline(root)
	if err != nil {
		t.Fatalf("StripTrailingHardline: %v", err)
	}
	want := `Concat{Text("a"), Indent(Text("b"))}`
	if s := debugString(t, got); s != want {
		t.Fatalf("got %s\nwant %s", s, want)
	}
	if _, err := StripTrailingHardline(foreign{}); err == nil {
		t.Fatal("expected error for a foreign doc")
	}
}

func TestCleanDoc(t *testing.T) {
	root := Concat{
		Text("a"), Text(""), Concat{Text("b"), Text("c")},
		Group(Group(Line)),
		Indent(Text("")),
		IfBreak(Text(""), Text("")),
	}
	got, err := CleanDoc(root)
	if err != nil {
		t.Fatalf("CleanDoc: %v", err)
	}
	want := `Concat{Text("abc"), Group(Line)}`
	if s := debugString(t, got); s != want {
		t.Fatalf("got %s\nwant %s", s, want)
	}

	empty, err := CleanDoc(Fill(Text(""), Text("")))
	if err != nil {
		t.Fatalf("CleanDoc: %v", err)
	}
	if empty != Text("") {
		t.Fatalf("empty fill = %#v", empty)
	}
}

func TestReplaceEndOfLine(t *testing.T) {
	got, err := ReplaceEndOfLine(Text("a\nb"), nil)
	if err != nil {
		t.Fatalf("ReplaceEndOfLine: %v", err)
	}
	want := Concat{Text("a"), LiteralLine, Text("b")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestInheritLabel(t *testing.T) {
	wrap := func(d Doc) Doc { return Indent(d) }
	got := InheritLabel(Label("chain", Text("a")), wrap)
	l, ok := got.(*LabelDoc)
	if !ok || l.Label != "chain" {
		t.Fatalf("label lost: %#v", got)
	}
	if _, ok := l.Contents.(*IndentDoc); !ok {
		t.Fatalf("contents not transformed: %#v", l.Contents)
	}
	if _, ok := InheritLabel(Text("a"), wrap).(*IndentDoc); !ok {
		t.Fatal("unlabelled doc must be passed to fn")
	}
}

func TestDebug(t *testing.T) {
	id := GroupID("args")
	cases := []struct {
		doc  Doc
		want string
	}{
		{Group(Concat{Text("foo"), Line, Text("bar")}), `Group(Concat{Text("foo"), Line, Text("bar")})`},
		{Concat{Text("a"), HardLine}, `Concat{Text("a"), HardLine}`},
		{Concat{LiteralLine}, `LiteralLine`},
		{Concat{BreakParent}, `BreakParent`},
		{Group(Text("x"), ShouldBreak(true), WithID(id)), `Group(Text("x"), ShouldBreak(true), WithID("args"))`},
		{IfBreakFor(id, Text(","), nil), `IfBreakFor("args", Text(","), Text(""))`},
		{IndentIfBreak(id, Text("x"), true), `IndentIfBreak("args", Text("x"), true)`},
		{AlignString("// ", Text("x")), `AlignString("// ", Text("x"))`},
		{Align(2, Text("x")), `Align(2, Text("x"))`},
		{Fill(Text("a"), Line, Text("b")), `Fill(Text("a"), Line, Text("b"))`},
		{ConditionalGroup([]Doc{Text("a"), Text("b")}), `ConditionalGroup([]Doc{Text("a"), Text("b")})`},
		{Label("l", LineSuffix(Text(" //"))), `Label("l", LineSuffix(Text(" //")))`},
		{Concat{Trim, Cursor, LineSuffixBoundary}, `Concat{Trim, Cursor, LineSuffixBoundary}`},
	}
	for _, tc := range cases {
		if got := debugString(t, tc.doc); got != tc.want {
			t.Errorf("Debug:\n got %s\nwant %s", got, tc.want)
		}
	}
	if _, err := Debug(Concat{foreign{}}); err == nil {
		t.Fatal("expected error for a foreign doc")
	}
}
