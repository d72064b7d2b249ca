package printer

import (
	"errors"
	"fmt"
	"strings"
)

// EndOfLine selects the newline sequence written for line breaks.
type EndOfLine string

const (
	EndOfLineLF   EndOfLine = "lf"
	EndOfLineCRLF EndOfLine = "crlf"
	EndOfLineCR   EndOfLine = "cr"
	// EndOfLineAuto prints "\n"; callers that know the original file's
	// convention resolve it before printing.
	EndOfLineAuto EndOfLine = "auto"
)

// ParseEndOfLine accepts lf, crlf, cr and auto in any case.
func ParseEndOfLine(s string) (EndOfLine, error) {
	switch eol := EndOfLine(strings.ToLower(strings.TrimSpace(s))); eol {
	case EndOfLineLF, EndOfLineCRLF, EndOfLineCR, EndOfLineAuto:
		return eol, nil
	case "":
		return EndOfLineLF, nil
	default:
		return "", fmt.Errorf("%w: end of line %q (expected lf|crlf|cr|auto)", ErrInvalidOptions, s)
	}
}

func (e EndOfLine) newline() string {
	switch e {
	case EndOfLineCRLF:
		return "\r\n"
	case EndOfLineCR:
		return "\r"
	default:
		return "\n"
	}
}

// ErrInvalidOptions is wrapped by option validation failures.
var ErrInvalidOptions = errors.New("invalid print options")

// Options controls layout.
type Options struct {
	// PrintWidth is the column limit groups try to stay within. Zero means
	// DefaultPrintWidth; a negative value disables width checks.
	PrintWidth int
	// TabWidth is the width of one indentation level.
	TabWidth int
	// UseTabs indents with tabs instead of spaces.
	UseTabs bool
	// EndOfLine selects the newline sequence.
	EndOfLine EndOfLine
}

const (
	DefaultPrintWidth = 80
	DefaultTabWidth   = 2
)

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		PrintWidth: DefaultPrintWidth,
		TabWidth:   DefaultTabWidth,
		EndOfLine:  EndOfLineLF,
	}
}

func (o Options) withDefaults() Options {
	if o.PrintWidth == 0 {
		o.PrintWidth = DefaultPrintWidth
	}
	if o.TabWidth == 0 {
		o.TabWidth = DefaultTabWidth
	}
	if o.EndOfLine == "" {
		o.EndOfLine = EndOfLineLF
	}
	return o
}

// Validate reports options that cannot be printed with.
func (o Options) Validate() error {
	if o.TabWidth < 0 {
		return fmt.Errorf("%w: tab width %d is negative", ErrInvalidOptions, o.TabWidth)
	}
	if _, err := ParseEndOfLine(string(o.EndOfLine)); err != nil {
		return err
	}
	return nil
}
