package doc

// Breaks records which groups must print broken. Authored breaks stay on the
// GroupDoc; breaks implied by hard lines and break-parent markers live only
// here.
type Breaks struct {
	propagated map[*GroupDoc]struct{}
}

// Broken reports whether g is broken, either as authored or by propagation.
func (b Breaks) Broken(g *GroupDoc) bool {
	if g.Break {
		return true
	}
	_, ok := b.propagated[g]
	return ok
}

// Propagated reports whether g breaks only because of propagation.
func (b Breaks) Propagated(g *GroupDoc) bool {
	if g.Break {
		return false
	}
	_, ok := b.propagated[g]
	return ok
}

// Len returns the number of groups broken by propagation.
func (b Breaks) Len() int {
	return len(b.propagated)
}

// PropagateBreaks finds every group that transitively contains a
// break-parent marker or a hard line, with or without its marker. A broken group
// breaks its parent in turn. Conditional groups are never broken by
// propagation and therefore stop it.
func PropagateBreaks(root Doc) (Breaks, error) {
	b := Breaks{propagated: make(map[*GroupDoc]struct{})}
	visited := make(map[*GroupDoc]struct{})
	var stack []*GroupDoc

	breakParent := func() {
		if len(stack) == 0 {
			return
		}
		parent := stack[len(stack)-1]
		if len(parent.ExpandedStates) == 0 && !b.Broken(parent) {
			b.propagated[parent] = struct{}{}
		}
	}

	onEnter := func(d Doc) bool {
		g, ok := d.(*GroupDoc)
		if !ok {
			return true
		}
		stack = append(stack, g)
		if _, seen := visited[g]; seen {
			return false
		}
		visited[g] = struct{}{}
		return true
	}
	onExit := func(d Doc) {
		switch d := d.(type) {
		case BreakParentDoc:
			breakParent()
		case LineDoc:
			if d.Hard {
				breakParent()
			}
		case *GroupDoc:
			stack = stack[:len(stack)-1]
			if b.Broken(d) {
				breakParent()
			}
		}
	}

	if err := Traverse(root, onEnter, onExit, true); err != nil {
		return Breaks{}, err
	}
	return b, nil
}
