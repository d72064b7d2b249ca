package doc

// Traverse walks the tree depth first without recursion. onEnter runs before
// a node's children and may return false to skip them; onExit runs after
// them. Either callback may be nil. When traverseConditionalGroups is set,
// every expanded state of a conditional group is visited instead of only its
// contents.
func Traverse(root Doc, onEnter func(Doc) bool, onExit func(Doc), traverseConditionalGroups bool) error {
	type frame struct {
		d    Doc
		exit bool
	}
	stack := []frame{{d: root}}
	push := func(d Doc) { stack = append(stack, frame{d: d}) }

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.exit {
			onExit(f.d)
			continue
		}
		if _, ok := KindOf(f.d); !ok {
			return invalid(f.d)
		}
		if onExit != nil {
			stack = append(stack, frame{d: f.d, exit: true})
		}
		if onEnter != nil && !onEnter(f.d) {
			continue
		}

		switch d := f.d.(type) {
		case Concat:
			for i := len(d) - 1; i >= 0; i-- {
				push(d[i])
			}
		case *FillDoc:
			for i := len(d.Parts) - 1; i >= 0; i-- {
				push(d.Parts[i])
			}
		case *IfBreakDoc:
			// an absent branch prints nothing
			if d.FlatContents != nil {
				push(d.FlatContents)
			}
			if d.BreakContents != nil {
				push(d.BreakContents)
			}
		case *GroupDoc:
			if traverseConditionalGroups && len(d.ExpandedStates) > 0 {
				for i := len(d.ExpandedStates) - 1; i >= 0; i-- {
					push(d.ExpandedStates[i])
				}
			} else {
				push(d.Contents)
			}
		case *IndentDoc:
			push(d.Contents)
		case *AlignDoc:
			push(d.Contents)
		case *IndentIfBreakDoc:
			push(d.Contents)
		case *LabelDoc:
			push(d.Contents)
		case *LineSuffixDoc:
			push(d.Contents)
		}
	}
	return nil
}

// Map rebuilds the tree bottom up, calling fn on every node after its
// children have been mapped. Pointer nodes reachable through several parents
// are mapped once and the result is shared the same way.
func Map(root Doc, fn func(Doc) Doc) (Doc, error) {
	m := mapper{fn: fn, seen: make(map[Doc]Doc)}
	return m.rec(root)
}

type mapper struct {
	fn   func(Doc) Doc
	seen map[Doc]Doc
}

func (m *mapper) rec(d Doc) (Doc, error) {
	if !isShared(d) {
		return m.process(d)
	}
	if out, ok := m.seen[d]; ok {
		return out, nil
	}
	out, err := m.process(d)
	if err != nil {
		return nil, err
	}
	m.seen[d] = out
	return out, nil
}

// recOptional maps an if-break branch, leaving an absent one absent.
func (m *mapper) recOptional(d Doc) (Doc, error) {
	if d == nil {
		return nil, nil
	}
	return m.rec(d)
}

func (m *mapper) recAll(parts []Doc) ([]Doc, error) {
	out := make([]Doc, len(parts))
	for i, p := range parts {
		mapped, err := m.rec(p)
		if err != nil {
			return nil, err
		}
		out[i] = mapped
	}
	return out, nil
}

func (m *mapper) process(d Doc) (Doc, error) {
	switch d := d.(type) {
	case Text, CursorDoc, TrimDoc, LineSuffixBoundaryDoc, LineDoc, BreakParentDoc:
		return m.fn(d), nil
	case Concat:
		parts, err := m.recAll(d)
		if err != nil {
			return nil, err
		}
		return m.fn(Concat(parts)), nil
	case *FillDoc:
		parts, err := m.recAll(d.Parts)
		if err != nil {
			return nil, err
		}
		return m.fn(&FillDoc{Parts: parts}), nil
	case *IfBreakDoc:
		breakContents, err := m.recOptional(d.BreakContents)
		if err != nil {
			return nil, err
		}
		flatContents, err := m.recOptional(d.FlatContents)
		if err != nil {
			return nil, err
		}
		return m.fn(&IfBreakDoc{BreakContents: breakContents, FlatContents: flatContents, GroupID: d.GroupID}), nil
	case *GroupDoc:
		g := &GroupDoc{Break: d.Break, ID: d.ID}
		if len(d.ExpandedStates) > 0 {
			states, err := m.recAll(d.ExpandedStates)
			if err != nil {
				return nil, err
			}
			g.ExpandedStates = states
			g.Contents = states[0]
		} else {
			contents, err := m.rec(d.Contents)
			if err != nil {
				return nil, err
			}
			g.Contents = contents
		}
		return m.fn(g), nil
	case *IndentDoc:
		contents, err := m.rec(d.Contents)
		if err != nil {
			return nil, err
		}
		return m.fn(&IndentDoc{Contents: contents}), nil
	case *AlignDoc:
		contents, err := m.rec(d.Contents)
		if err != nil {
			return nil, err
		}
		return m.fn(&AlignDoc{Type: d.Type, N: d.N, S: d.S, Contents: contents}), nil
	case *IndentIfBreakDoc:
		contents, err := m.rec(d.Contents)
		if err != nil {
			return nil, err
		}
		return m.fn(&IndentIfBreakDoc{Contents: contents, GroupID: d.GroupID, Negate: d.Negate}), nil
	case *LabelDoc:
		contents, err := m.rec(d.Contents)
		if err != nil {
			return nil, err
		}
		return m.fn(&LabelDoc{Label: d.Label, Contents: contents}), nil
	case *LineSuffixDoc:
		contents, err := m.rec(d.Contents)
		if err != nil {
			return nil, err
		}
		return m.fn(&LineSuffixDoc{Contents: contents}), nil
	default:
		return nil, invalid(d)
	}
}

// isShared reports whether d has pointer identity and may be reachable
// through more than one parent.
func isShared(d Doc) bool {
	switch d.(type) {
	case *IndentDoc, *AlignDoc, *GroupDoc, *FillDoc, *IfBreakDoc, *IndentIfBreakDoc, *LineSuffixDoc, *LabelDoc:
		return true
	default:
		return false
	}
}

// Find returns the first value fn reports while walking the tree (conditional
// groups contribute only their contents), or def when fn never reports one.
func Find[T any](root Doc, fn func(Doc) (T, bool), def T) (T, error) {
	result := def
	done := false
	err := Traverse(root, func(d Doc) bool {
		if done {
			return false
		}
		if v, ok := fn(d); ok {
			result = v
			done = true
		}
		return true
	}, nil, false)
	if err != nil {
		return def, err
	}
	return result, nil
}
