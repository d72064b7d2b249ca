package printer

import (
	"docprint/internal/doc"
	"docprint/internal/width"
)

// fits reports whether next, rendered flat, fits in rem columns. When next
// runs out before the line ends it keeps reading the commands still waiting
// in rest, top of the stack first, each in its own mode. The scan stops at
// the first line break that would be printed. With mustBeFlat a broken group
// is an immediate failure.
func (p *printer) fits(next command, rest []command, rem int, hasLineSuffix, mustBeFlat bool) (bool, error) {
	if p.unbounded {
		return true, nil
	}

	restIdx := len(rest)
	cmds := []command{next}
	var out []chunk

	for rem >= 0 {
		if len(cmds) == 0 {
			if restIdx == 0 {
				return true, nil
			}
			restIdx--
			cmds = append(cmds, rest[restIdx])
			continue
		}

		c := cmds[len(cmds)-1]
		cmds = cmds[:len(cmds)-1]

		switch d := c.doc.(type) {
		case doc.Text:
			out = append(out, chunk{text: string(d)})
			rem -= width.String(string(d))

		case doc.Concat:
			for i := len(d) - 1; i >= 0; i-- {
				cmds = append(cmds, command{mode: c.mode, doc: d[i]})
			}

		case *doc.FillDoc:
			for i := len(d.Parts) - 1; i >= 0; i-- {
				cmds = append(cmds, command{mode: c.mode, doc: d.Parts[i]})
			}

		case *doc.IndentDoc:
			cmds = append(cmds, command{mode: c.mode, doc: d.Contents})
		case *doc.AlignDoc:
			cmds = append(cmds, command{mode: c.mode, doc: d.Contents})
		case *doc.IndentIfBreakDoc:
			cmds = append(cmds, command{mode: c.mode, doc: d.Contents})
		case *doc.LabelDoc:
			cmds = append(cmds, command{mode: c.mode, doc: d.Contents})

		case doc.TrimDoc:
			var n int
			out, n = trimOutput(out)
			rem += n

		case *doc.GroupDoc:
			broken := p.breaks.Broken(d)
			if mustBeFlat && broken {
				return false, nil
			}
			m := c.mode
			if broken {
				m = modeBreak
			}
			contents := d.Contents
			if len(d.ExpandedStates) > 0 && m == modeBreak {
				contents = d.ExpandedStates[len(d.ExpandedStates)-1]
			}
			cmds = append(cmds, command{mode: m, doc: contents})

		case *doc.IfBreakDoc:
			m := c.mode
			if d.GroupID != "" {
				m = p.groupModes[d.GroupID]
				if m == modeUnset {
					m = modeFlat
				}
			}
			contents := d.FlatContents
			if m == modeBreak {
				contents = d.BreakContents
			}
			if contents != nil {
				cmds = append(cmds, command{mode: c.mode, doc: contents})
			}

		case doc.LineDoc:
			if c.mode == modeBreak || d.Hard {
				return true, nil
			}
			if !d.Soft {
				out = append(out, chunk{text: " "})
				rem--
			}

		case *doc.LineSuffixDoc:
			hasLineSuffix = true

		case doc.LineSuffixBoundaryDoc:
			if hasLineSuffix {
				return true, nil
			}

		case doc.CursorDoc, doc.BreakParentDoc:

		default:
			return false, &doc.InvalidDocError{Doc: c.doc}
		}
	}
	return false, nil
}
