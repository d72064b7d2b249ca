package doc

import (
	"errors"
	"fmt"
)

// Validate checks structural rules the printer relies on but the types do
// not enforce: every child is a doc, fill separators are lines, a
// conditional group starts with its contents and a tree holds at most two
// cursors. The printer does not call it; producers use it in tests and at
// input boundaries.
func Validate(root Doc) error {
	var errs []error
	cursors := 0
	err := Traverse(root, func(d Doc) bool {
		switch d := d.(type) {
		case *FillDoc:
			if err := validateFillParts(d.Parts); err != nil {
				errs = append(errs, err)
			}
		case *GroupDoc:
			if len(d.ExpandedStates) > 0 && !sameDoc(d.Contents, d.ExpandedStates[0]) {
				errs = append(errs, errors.New("conditional group contents must be its first expanded state"))
			}
		case CursorDoc:
			cursors++
		}
		return true
	}, nil, false)
	if err != nil {
		return err
	}
	if cursors > 2 {
		errs = append(errs, fmt.Errorf("found %d cursors, at most 2 are allowed", cursors))
	}
	return errors.Join(errs...)
}

func validateFillParts(parts []Doc) error {
	if len(parts) > 1 && len(parts)%2 == 0 && isEmpty(parts[len(parts)-1]) {
		return errors.New("fill ends with an empty separator")
	}
	for i := 1; i < len(parts); i += 2 {
		if !isSeparator(parts[i]) {
			kind, _ := KindOf(parts[i])
			return fmt.Errorf("fill part %d must be a line break, got %s", i, kind)
		}
	}
	return nil
}

func isSeparator(d Doc) bool {
	switch d := d.(type) {
	case LineDoc:
		return true
	case Concat:
		if len(d) == 0 {
			return false
		}
		for _, p := range d {
			switch p.(type) {
			case LineDoc, BreakParentDoc:
			default:
				return false
			}
		}
		return true
	}
	return false
}

// sameDoc compares pointer nodes by identity and everything else by value
// where the type allows it.
func sameDoc(a, b Doc) bool {
	if isShared(a) || isShared(b) {
		return a == b
	}
	switch a := a.(type) {
	case Text, LineDoc, CursorDoc, TrimDoc, BreakParentDoc, LineSuffixBoundaryDoc:
		return a == b
	case Concat:
		bc, ok := b.(Concat)
		if !ok || len(a) != len(bc) {
			return false
		}
		for i := range a {
			if !sameDoc(a[i], bc[i]) {
				return false
			}
		}
		return true
	}
	return false
}
