package doc

import "testing"

func TestPropagateBreaks(t *testing.T) {
	inner := Group(Concat{Text("a"), HardLine, Text("b")})
	outer := Group(Concat{Text("x"), Line, inner})
	sibling := Group(Concat{Text("y"), Line, Text("z")})
	root := Concat{outer, sibling}

	breaks, err := PropagateBreaks(root)
	if err != nil {
		t.Fatalf("PropagateBreaks: %v", err)
	}
	if !breaks.Broken(inner) || !breaks.Broken(outer) {
		t.Fatal("hard line must break the enclosing groups")
	}
	if breaks.Broken(sibling) {
		t.Fatal("unrelated group must stay unbroken")
	}
	if breaks.Len() != 2 {
		t.Fatalf("Len = %d, want 2", breaks.Len())
	}
	if inner.Break || outer.Break {
		t.Fatal("propagation must not modify the tree")
	}
	if !breaks.Propagated(inner) {
		t.Fatal("inner break should be reported as propagated")
	}
}

func TestPropagateBreaksOnBareHardLine(t *testing.T) {
	inner := Group(Concat{Text("a"), HardLineWithoutBreakParent, Text("b")})
	outer := Group(Concat{Text("x"), inner})
	soft := Group(Concat{Text("y"), SoftLine})
	breaks, err := PropagateBreaks(Concat{outer, soft})
	if err != nil {
		t.Fatalf("PropagateBreaks: %v", err)
	}
	if !breaks.Broken(inner) || !breaks.Broken(outer) {
		t.Fatal("a hard line without its marker must still break the enclosing groups")
	}
	if breaks.Broken(soft) {
		t.Fatal("a soft line must not break its group")
	}
}

func TestPropagateBreaksKeepsAuthoredBreaks(t *testing.T) {
	inner := Group(Text("a"), ShouldBreak(true))
	outer := Group(inner)
	breaks, err := PropagateBreaks(outer)
	if err != nil {
		t.Fatalf("PropagateBreaks: %v", err)
	}
	if breaks.Propagated(inner) || !breaks.Broken(inner) {
		t.Fatal("authored break is broken but not propagated")
	}
	if !breaks.Propagated(outer) {
		t.Fatal("authored break must propagate to the parent")
	}
}

func TestPropagateBreaksStopsAtConditionalGroups(t *testing.T) {
	cond := ConditionalGroup([]Doc{Concat{Text("a"), HardLine}, Text("b")})
	outer := Group(cond)
	breaks, err := PropagateBreaks(outer)
	if err != nil {
		t.Fatalf("PropagateBreaks: %v", err)
	}
	if breaks.Broken(cond) || breaks.Broken(outer) {
		t.Fatal("conditional groups are not broken by propagation")
	}
}

func TestPropagateBreaksSharedGroup(t *testing.T) {
	shared := Group(Concat{Text("a"), HardLine})
	first := Group(shared)
	second := Group(shared)
	breaks, err := PropagateBreaks(Concat{first, second})
	if err != nil {
		t.Fatalf("PropagateBreaks: %v", err)
	}
	if !breaks.Broken(first) || !breaks.Broken(second) {
		t.Fatal("every parent of a broken shared group must break")
	}
}
