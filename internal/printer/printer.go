// Package printer lays out a doc tree into text.
//
// The printer is an explicit stack machine over (indentation, mode, doc)
// commands. Groups decide between flat and broken mode by asking fits to
// simulate the flat rendering against the remaining width; fills make that
// decision pair by pair. A call owns all of its state, so concurrent calls
// need no coordination.
package printer

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"docprint/internal/doc"
	"docprint/internal/trace"
	"docprint/internal/width"
)

// ErrTooManyCursors is returned when a tree holds more than two cursors.
var ErrTooManyCursors = errors.New("there are too many cursors in the doc")

type mode uint8

const (
	modeUnset mode = iota
	modeBreak
	modeFlat
)

type command struct {
	ind  *indentation
	mode mode
	doc  doc.Doc
}

// chunk is a piece of output; cursor chunks carry no text and mark a
// cursor position.
type chunk struct {
	text   string
	cursor bool
}

// CursorNode is the text between two cursors and its byte offset in the
// formatted output.
type CursorNode struct {
	Start int
	Text  string
}

// Result is the printed text. CursorNode is set when the doc held two
// cursors.
type Result struct {
	Formatted  string
	CursorNode *CursorNode
}

type printer struct {
	opts      Options
	width     int
	unbounded bool
	newline   string
	breaks    doc.Breaks

	groupModes      map[doc.GroupID]mode
	cmds            []command
	lineSuffixes    []command
	out             []chunk
	pos             int
	shouldRemeasure bool
	cursors         int
}

// Print lays out d with opts.
func Print(d doc.Doc, opts Options) (Result, error) {
	return PrintContext(context.Background(), d, opts)
}

// PrintContext is Print with trace spans around break propagation and
// layout, reported to the tracer carried by ctx.
func PrintContext(ctx context.Context, d doc.Doc, opts Options) (Result, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	_, span := trace.Start(ctx, trace.ScopePass, "propagate-breaks")
	breaks, err := doc.PropagateBreaks(d)
	span.WithExtra("propagated", strconv.Itoa(breaks.Len())).End(errDetail(err))
	if err != nil {
		return Result{}, err
	}

	_, span = trace.Start(ctx, trace.ScopePass, "print")
	p := newPrinter(opts, breaks)
	err = p.run(d)
	if err != nil {
		span.End(errDetail(err))
		return Result{}, err
	}
	res := p.result()
	span.WithExtra("bytes", strconv.Itoa(len(res.Formatted))).End("")
	return res, nil
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func newPrinter(opts Options, breaks doc.Breaks) *printer {
	return &printer{
		opts:       opts,
		width:      opts.PrintWidth,
		unbounded:  opts.PrintWidth < 0,
		newline:    opts.EndOfLine.newline(),
		breaks:     breaks,
		groupModes: make(map[doc.GroupID]mode),
	}
}

func (p *printer) push(cmds ...command) {
	p.cmds = append(p.cmds, cmds...)
}

func (p *printer) emit(s string) {
	p.out = append(p.out, chunk{text: s})
}

func (p *printer) run(root doc.Doc) error {
	p.push(command{ind: rootIndent(), mode: modeBreak, doc: root})

	for len(p.cmds) > 0 {
		c := p.cmds[len(p.cmds)-1]
		p.cmds = p.cmds[:len(p.cmds)-1]

		if err := p.step(c); err != nil {
			return err
		}

		if len(p.cmds) == 0 && len(p.lineSuffixes) > 0 {
			p.flushLineSuffixes()
		}
	}
	return nil
}

func (p *printer) flushLineSuffixes() {
	for i := len(p.lineSuffixes) - 1; i >= 0; i-- {
		p.push(p.lineSuffixes[i])
	}
	p.lineSuffixes = p.lineSuffixes[:0]
}

func (p *printer) step(c command) error {
	switch d := c.doc.(type) {
	case doc.Text:
		s := string(d)
		if p.newline != "\n" {
			s = strings.ReplaceAll(s, "\n", p.newline)
		}
		p.emit(s)
		p.pos += width.String(s)

	case doc.Concat:
		for i := len(d) - 1; i >= 0; i-- {
			p.push(command{ind: c.ind, mode: c.mode, doc: d[i]})
		}

	case doc.CursorDoc:
		if p.cursors >= 2 {
			return ErrTooManyCursors
		}
		p.out = append(p.out, chunk{cursor: true})
		p.cursors++

	case *doc.IndentDoc:
		p.push(command{ind: p.makeIndent(c.ind), mode: c.mode, doc: d.Contents})

	case *doc.AlignDoc:
		p.push(command{ind: p.makeAlign(c.ind, d), mode: c.mode, doc: d.Contents})

	case doc.TrimDoc:
		var n int
		p.out, n = trimOutput(p.out)
		p.pos -= n

	case *doc.GroupDoc:
		if err := p.group(c, d); err != nil {
			return err
		}

	case *doc.FillDoc:
		if err := p.fill(c, d); err != nil {
			return err
		}

	case *doc.IfBreakDoc:
		switch p.resolveMode(c.mode, d.GroupID) {
		case modeBreak:
			if d.BreakContents != nil {
				p.push(command{ind: c.ind, mode: c.mode, doc: d.BreakContents})
			}
		case modeFlat:
			if d.FlatContents != nil {
				p.push(command{ind: c.ind, mode: c.mode, doc: d.FlatContents})
			}
		}

	case *doc.IndentIfBreakDoc:
		indented := doc.Indent(d.Contents)
		switch p.resolveMode(c.mode, d.GroupID) {
		case modeBreak:
			contents := doc.Doc(indented)
			if d.Negate {
				contents = d.Contents
			}
			p.push(command{ind: c.ind, mode: c.mode, doc: contents})
		case modeFlat:
			contents := d.Contents
			if d.Negate {
				contents = indented
			}
			p.push(command{ind: c.ind, mode: c.mode, doc: contents})
		}

	case *doc.LineSuffixDoc:
		p.lineSuffixes = append(p.lineSuffixes, command{ind: c.ind, mode: c.mode, doc: d.Contents})

	case doc.LineSuffixBoundaryDoc:
		if len(p.lineSuffixes) > 0 {
			p.push(command{ind: c.ind, mode: c.mode, doc: doc.HardLineWithoutBreakParent})
		}

	case doc.LineDoc:
		p.line(c, d)

	case *doc.LabelDoc:
		p.push(command{ind: c.ind, mode: c.mode, doc: d.Contents})

	case doc.BreakParentDoc:
		// consumed by break propagation

	default:
		return &doc.InvalidDocError{Doc: c.doc}
	}
	return nil
}

// resolveMode returns the mode an if-break consults: the named group's
// recorded mode, or the current mode when no id is given. A named group
// that has not been printed yet resolves to modeUnset.
func (p *printer) resolveMode(current mode, id doc.GroupID) mode {
	if id == "" {
		return current
	}
	return p.groupModes[id]
}

func (p *printer) group(c command, g *doc.GroupDoc) error {
	broken := p.breaks.Broken(g)

	if c.mode == modeFlat && !p.shouldRemeasure {
		m := modeFlat
		if broken {
			m = modeBreak
		}
		p.push(command{ind: c.ind, mode: m, doc: g.Contents})
	} else {
		p.shouldRemeasure = false

		next := command{ind: c.ind, mode: modeFlat, doc: g.Contents}
		rem := p.width - p.pos
		hasLineSuffix := len(p.lineSuffixes) > 0

		fitsFlat := false
		if !broken {
			ok, err := p.fits(next, p.cmds, rem, hasLineSuffix, false)
			if err != nil {
				return err
			}
			fitsFlat = ok
		}

		switch {
		case fitsFlat:
			p.push(next)
		case len(g.ExpandedStates) > 0:
			mostExpanded := g.ExpandedStates[len(g.ExpandedStates)-1]
			if broken {
				p.push(command{ind: c.ind, mode: modeBreak, doc: mostExpanded})
				break
			}
			chosen := false
			for _, state := range g.ExpandedStates[1:] {
				cmd := command{ind: c.ind, mode: modeFlat, doc: state}
				ok, err := p.fits(cmd, p.cmds, rem, hasLineSuffix, false)
				if err != nil {
					return err
				}
				if ok {
					p.push(cmd)
					chosen = true
					break
				}
			}
			if !chosen {
				p.push(command{ind: c.ind, mode: modeBreak, doc: mostExpanded})
			}
		default:
			p.push(command{ind: c.ind, mode: modeBreak, doc: g.Contents})
		}
	}

	if g.ID != "" {
		p.groupModes[g.ID] = p.cmds[len(p.cmds)-1].mode
	}
	return nil
}

// fill prints the first content and separator of d and pushes the rest of
// the parts back as a shorter fill. The input is never modified.
func (p *printer) fill(c command, d *doc.FillDoc) error {
	parts := d.Parts
	if len(parts) == 0 {
		return nil
	}
	rem := p.width - p.pos
	hasLineSuffix := len(p.lineSuffixes) > 0

	content := parts[0]
	contentFlat := command{ind: c.ind, mode: modeFlat, doc: content}
	contentBreak := command{ind: c.ind, mode: modeBreak, doc: content}
	contentFits, err := p.fits(contentFlat, nil, rem, hasLineSuffix, true)
	if err != nil {
		return err
	}

	if len(parts) == 1 {
		if contentFits {
			p.push(contentFlat)
		} else {
			p.push(contentBreak)
		}
		return nil
	}

	whitespace := parts[1]
	whitespaceFlat := command{ind: c.ind, mode: modeFlat, doc: whitespace}
	whitespaceBreak := command{ind: c.ind, mode: modeBreak, doc: whitespace}

	if len(parts) == 2 {
		if contentFits {
			p.push(whitespaceFlat, contentFlat)
		} else {
			p.push(whitespaceBreak, contentBreak)
		}
		return nil
	}

	remaining := command{ind: c.ind, mode: c.mode, doc: &doc.FillDoc{Parts: parts[2:]}}
	pair := command{ind: c.ind, mode: modeFlat, doc: doc.Concat{content, whitespace, parts[2]}}
	pairFits, err := p.fits(pair, nil, rem, hasLineSuffix, true)
	if err != nil {
		return err
	}

	switch {
	case pairFits:
		p.push(remaining, whitespaceFlat, contentFlat)
	case contentFits:
		p.push(remaining, whitespaceBreak, contentFlat)
	default:
		p.push(remaining, whitespaceBreak, contentBreak)
	}
	return nil
}

func (p *printer) line(c command, l doc.LineDoc) {
	if c.mode == modeFlat {
		if !l.Hard {
			if !l.Soft {
				p.emit(" ")
				p.pos++
			}
			return
		}
		// A hard line inside a flat group still breaks; whatever group
		// comes next has to measure again from the new column.
		p.shouldRemeasure = true
	}

	if len(p.lineSuffixes) > 0 {
		p.push(c)
		p.flushLineSuffixes()
		return
	}

	if l.Literal {
		if c.ind.root != nil {
			p.emit(p.newline)
			p.emit(c.ind.root.value)
			p.pos = c.ind.root.length
		} else {
			p.emit(p.newline)
			p.pos = 0
		}
		return
	}

	var n int
	p.out, n = trimOutput(p.out)
	p.pos -= n
	p.emit(p.newline + c.ind.value)
	p.pos = c.ind.length
}

// trimOutput drops trailing spaces and tabs from out, keeping any cursor
// chunks found among them at the end. It returns the number of characters
// removed.
func trimOutput(out []chunk) ([]chunk, int) {
	trimmed, cursors := 0, 0
	i := len(out) - 1
outer:
	for ; i >= 0; i-- {
		c := out[i]
		if c.cursor {
			cursors++
			continue
		}
		for j := len(c.text) - 1; j >= 0; j-- {
			if ch := c.text[j]; ch == ' ' || ch == '\t' {
				trimmed++
				continue
			}
			out[i].text = c.text[:j+1]
			break outer
		}
	}
	if trimmed > 0 || cursors > 0 {
		out = out[:i+1]
		for range cursors {
			out = append(out, chunk{cursor: true})
		}
	}
	return out, trimmed
}

func (p *printer) result() Result {
	first, second := -1, -1
	for i, c := range p.out {
		if !c.cursor {
			continue
		}
		if first < 0 {
			first = i
		} else {
			second = i
			break
		}
	}

	if first < 0 || second < 0 {
		return Result{Formatted: joinChunks(p.out)}
	}

	before := joinChunks(p.out[:first])
	around := joinChunks(p.out[first+1 : second])
	after := joinChunks(p.out[second+1:])
	return Result{
		Formatted:  before + around + after,
		CursorNode: &CursorNode{Start: len(before), Text: around},
	}
}

func joinChunks(chunks []chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.text)
	}
	return b.String()
}

