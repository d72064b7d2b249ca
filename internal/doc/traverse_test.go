package doc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func kindNamesOf(t *testing.T, root Doc, conditional bool) (enter, exit []string) {
	t.Helper()
	err := Traverse(root, func(d Doc) bool {
		enter = append(enter, d.Kind().String())
		return true
	}, func(d Doc) {
		exit = append(exit, d.Kind().String())
	}, conditional)
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	return enter, exit
}

func TestTraverseOrder(t *testing.T) {
	root := Group(Concat{Text("a"), Indent(Line), IfBreak(Text("b"), Text("c"))})
	enter, exit := kindNamesOf(t, root, false)

	wantEnter := []string{"group", "array", "string", "indent", "line", "if-break", "string", "string"}
	if diff := cmp.Diff(wantEnter, enter); diff != "" {
		t.Fatalf("enter order (-want +got):\n%s", diff)
	}
	wantExit := []string{"string", "line", "indent", "string", "string", "if-break", "array", "group"}
	if diff := cmp.Diff(wantExit, exit); diff != "" {
		t.Fatalf("exit order (-want +got):\n%s", diff)
	}
}

func TestTraverseSkipsAbsentIfBreakBranches(t *testing.T) {
	root := Concat{&IfBreakDoc{BreakContents: Text(",")}, &IfBreakDoc{FlatContents: Text(";")}}
	enter, _ := kindNamesOf(t, root, false)
	want := []string{"array", "if-break", "string", "if-break", "string"}
	if diff := cmp.Diff(want, enter); diff != "" {
		t.Fatalf("enter order (-want +got):\n%s", diff)
	}

	mapped, err := Map(root, func(d Doc) Doc { return d })
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	first := mapped.(Concat)[0].(*IfBreakDoc)
	if first.FlatContents != nil || first.BreakContents != Text(",") {
		t.Fatalf("Map changed branches: %#v", first)
	}

	flat, err := RemoveLines(root)
	if err != nil {
		t.Fatalf("RemoveLines: %v", err)
	}
	if diff := cmp.Diff(Doc(Concat{Text(""), Text(";")}), flat); diff != "" {
		t.Fatalf("RemoveLines (-want +got):\n%s", diff)
	}
	if _, err := StripTrailingHardline(root); err != nil {
		t.Fatalf("StripTrailingHardline: %v", err)
	}
	if _, err := PropagateBreaks(Group(root)); err != nil {
		t.Fatalf("PropagateBreaks: %v", err)
	}
}

func TestTraverseSkipsChildren(t *testing.T) {
	root := Concat{Indent(Text("hidden")), Text("shown")}
	var texts []string
	err := Traverse(root, func(d Doc) bool {
		if s, ok := d.(Text); ok {
			texts = append(texts, string(s))
		}
		_, isIndent := d.(*IndentDoc)
		return !isIndent
	}, nil, false)
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}
	if diff := cmp.Diff([]string{"shown"}, texts); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestTraverseConditionalGroups(t *testing.T) {
	root := ConditionalGroup([]Doc{Text("a"), Text("b")})
	enter, _ := kindNamesOf(t, root, false)
	if len(enter) != 2 {
		t.Fatalf("contents only: got %v", enter)
	}
	enter, _ = kindNamesOf(t, root, true)
	if len(enter) != 3 {
		t.Fatalf("all states: got %v", enter)
	}
}

func TestMapKeepsSharing(t *testing.T) {
	shared := Group(Text("x"))
	root := Concat{shared, shared}
	calls := 0
	out, err := Map(root, func(d Doc) Doc {
		if _, ok := d.(*GroupDoc); ok {
			calls++
		}
		return d
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if calls != 1 {
		t.Fatalf("shared group mapped %d times, want 1", calls)
	}
	parts := out.(Concat)
	if parts[0] != parts[1] {
		t.Fatal("mapped copies of a shared node must stay shared")
	}
	if parts[0] == Doc(shared) {
		t.Fatal("Map must rebuild pointer nodes instead of reusing the input")
	}
}

func TestMapConditionalGroupContentsFollowFirstState(t *testing.T) {
	root := ConditionalGroup([]Doc{Text("a"), Text("b")})
	out, err := Map(root, func(d Doc) Doc {
		if s, ok := d.(Text); ok {
			return s + "!"
		}
		return d
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	g := out.(*GroupDoc)
	if g.Contents != Text("a!") || g.ExpandedStates[1] != Text("b!") {
		t.Fatalf("unexpected mapped group %#v", g)
	}
}

func TestFind(t *testing.T) {
	root := Concat{Text("a"), Label("member-chain", Text("b"))}
	label, err := Find(root, func(d Doc) (string, bool) {
		if l, ok := d.(*LabelDoc); ok {
			return l.Label, true
		}
		return "", false
	}, "none")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if label != "member-chain" {
		t.Fatalf("label = %q", label)
	}
}
