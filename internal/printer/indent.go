package printer

import (
	"strings"

	"docprint/internal/doc"
	"docprint/internal/width"
)

type indentPartType uint8

const (
	partIndent indentPartType = iota
	partStringAlign
	partNumberAlign
)

type indentPart struct {
	typ indentPartType
	n   int
	s   string
}

// indentation is immutable: every change builds a new value.
type indentation struct {
	value  string
	length int
	queue  []indentPart
	root   *indentation
}

func rootIndent() *indentation {
	return &indentation{}
}

func (p *printer) makeIndent(ind *indentation) *indentation {
	return p.generateIndent(ind, append(cloneQueue(ind.queue), indentPart{typ: partIndent}))
}

func (p *printer) makeAlign(ind *indentation, a *doc.AlignDoc) *indentation {
	switch a.Type {
	case doc.AlignDedentToRoot:
		if ind.root != nil {
			return ind.root
		}
		return rootIndent()
	case doc.AlignDedent:
		if len(ind.queue) == 0 {
			return p.generateIndent(ind, nil)
		}
		return p.generateIndent(ind, cloneQueue(ind.queue[:len(ind.queue)-1]))
	case doc.AlignMarkRoot:
		marked := *ind
		marked.root = ind
		return &marked
	case doc.AlignPrefix:
		if a.S == "" {
			return ind
		}
		return p.generateIndent(ind, append(cloneQueue(ind.queue), indentPart{typ: partStringAlign, s: a.S}))
	default:
		if a.N == 0 {
			return ind
		}
		return p.generateIndent(ind, append(cloneQueue(ind.queue), indentPart{typ: partNumberAlign, n: a.N}))
	}
}

// generateIndent renders queue into an indentation string. Numeric
// alignment that trails the queue is always spaces; numeric alignment
// followed by a real indent becomes tabs when tabs are in use.
func (p *printer) generateIndent(ind *indentation, queue []indentPart) *indentation {
	var (
		value      strings.Builder
		length     int
		lastTabs   int
		lastSpaces int
	)
	addTabs := func(count int) {
		value.WriteString(strings.Repeat("\t", count))
		length += p.opts.TabWidth * count
	}
	addSpaces := func(count int) {
		value.WriteString(strings.Repeat(" ", count))
		length += count
	}
	resetLast := func() {
		lastTabs = 0
		lastSpaces = 0
	}
	flushTabs := func() {
		if lastTabs > 0 {
			addTabs(lastTabs)
		}
		resetLast()
	}
	flushSpaces := func() {
		if lastSpaces > 0 {
			addSpaces(lastSpaces)
		}
		resetLast()
	}
	flush := func() {
		if p.opts.UseTabs {
			flushTabs()
		} else {
			flushSpaces()
		}
	}

	for _, part := range queue {
		switch part.typ {
		case partIndent:
			flush()
			if p.opts.UseTabs {
				addTabs(1)
			} else {
				addSpaces(p.opts.TabWidth)
			}
		case partStringAlign:
			flush()
			value.WriteString(part.s)
			length += width.String(part.s)
		case partNumberAlign:
			lastTabs++
			lastSpaces += part.n
		}
	}
	flushSpaces()

	return &indentation{
		value:  value.String(),
		length: length,
		queue:  queue,
		root:   ind.root,
	}
}

func cloneQueue(q []indentPart) []indentPart {
	return append([]indentPart(nil), q...)
}
